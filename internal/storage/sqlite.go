package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hubspoke/hubd/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore implements Store with a SQLite database file.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database under dataDir.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "hubd.db")

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ss := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := ss.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return ss, nil
}

func (ss *SQLiteStore) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	_, err = ss.db.Exec(string(schema))
	return err
}

// Close closes the database connection
func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}

// GetDatabasePath returns the database file path
func (ss *SQLiteStore) GetDatabasePath() string {
	return ss.path
}

// allocID advances the shared counter inside the caller's transaction.
func allocID(tx *sql.Tx) (int, error) {
	if _, err := tx.Exec("UPDATE id_counter SET value = value + 1 WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("advancing id counter: %w", err)
	}
	var id int
	if err := tx.QueryRow("SELECT value FROM id_counter WHERE id = 1").Scan(&id); err != nil {
		return 0, fmt.Errorf("reading id counter: %w", err)
	}
	return id, nil
}

// ListSubscriptions returns all subscriptions in insertion order.
func (ss *SQLiteStore) ListSubscriptions() ([]model.Subscription, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, name, subscription_id, region, resource_group, status, is_active, created_at
		FROM subscriptions ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]model.Subscription, 0)
	for rows.Next() {
		var s model.Subscription
		if err := rows.Scan(&s.ID, &s.Name, &s.SubscriptionID, &s.Region, &s.ResourceGroup,
			&s.Status, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (ss *SQLiteStore) GetSubscription(id int) (*model.Subscription, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var s model.Subscription
	err := ss.db.QueryRow(`
		SELECT id, name, subscription_id, region, resource_group, status, is_active, created_at
		FROM subscriptions WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.SubscriptionID, &s.Region, &s.ResourceGroup,
		&s.Status, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying subscription: %w", err)
	}
	return &s, nil
}

func (ss *SQLiteStore) CreateSubscription(sub *model.Subscription) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	sub.ApplyDefaults()
	sub.CreatedAt = time.Now()

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if sub.ID, err = allocID(tx); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO subscriptions (id, name, subscription_id, region, resource_group, status, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.ID, sub.Name, sub.SubscriptionID, sub.Region, sub.ResourceGroup,
		sub.Status, sub.IsActive, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}

	return tx.Commit()
}

// ListHubNetworks returns hubs, optionally narrowed to a subscription.
func (ss *SQLiteStore) ListHubNetworks(filter *HubNetworkFilter) ([]model.HubNetwork, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := `
		SELECT id, subscription_id, name, address_space, location, resource_group_name, status, created_at
		FROM hub_networks
	`
	var args []interface{}
	if filter != nil && filter.SubscriptionID != 0 {
		query += " WHERE subscription_id = ?"
		args = append(args, filter.SubscriptionID)
	}
	query += " ORDER BY id"

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hub networks: %w", err)
	}
	defer rows.Close()

	hubs := make([]model.HubNetwork, 0)
	for rows.Next() {
		var h model.HubNetwork
		if err := rows.Scan(&h.ID, &h.SubscriptionID, &h.Name, &h.AddressSpace, &h.Location,
			&h.ResourceGroupName, &h.Status, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning hub network: %w", err)
		}
		hubs = append(hubs, h)
	}
	return hubs, rows.Err()
}

func (ss *SQLiteStore) GetHubNetwork(id int) (*model.HubNetwork, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var h model.HubNetwork
	err := ss.db.QueryRow(`
		SELECT id, subscription_id, name, address_space, location, resource_group_name, status, created_at
		FROM hub_networks WHERE id = ?
	`, id).Scan(&h.ID, &h.SubscriptionID, &h.Name, &h.AddressSpace, &h.Location,
		&h.ResourceGroupName, &h.Status, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrHubNetworkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying hub network: %w", err)
	}
	return &h, nil
}

func (ss *SQLiteStore) CreateHubNetwork(hub *model.HubNetwork) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	hub.ApplyDefaults()
	hub.CreatedAt = time.Now()

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if hub.ID, err = allocID(tx); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO hub_networks (id, subscription_id, name, address_space, location, resource_group_name, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, hub.ID, hub.SubscriptionID, hub.Name, hub.AddressSpace, hub.Location,
		hub.ResourceGroupName, hub.Status, hub.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting hub network: %w", err)
	}

	return tx.Commit()
}

// ListSpokeNetworks returns spokes, optionally narrowed to a hub.
func (ss *SQLiteStore) ListSpokeNetworks(filter *SpokeNetworkFilter) ([]model.SpokeNetwork, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := `
		SELECT id, hub_network_id, name, address_space, environment, resource_group_name,
		       status, compliance_status, monthly_cost, data_transfer_tb, created_at, updated_at
		FROM spoke_networks
	`
	var args []interface{}
	if filter != nil && filter.HubNetworkID != 0 {
		query += " WHERE hub_network_id = ?"
		args = append(args, filter.HubNetworkID)
	}
	query += " ORDER BY id"

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying spoke networks: %w", err)
	}
	defer rows.Close()

	spokes := make([]model.SpokeNetwork, 0)
	for rows.Next() {
		var s model.SpokeNetwork
		if err := rows.Scan(&s.ID, &s.HubNetworkID, &s.Name, &s.AddressSpace, &s.Environment,
			&s.ResourceGroupName, &s.Status, &s.ComplianceStatus, &s.MonthlyCost,
			&s.DataTransferTB, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning spoke network: %w", err)
		}
		spokes = append(spokes, s)
	}
	return spokes, rows.Err()
}

func (ss *SQLiteStore) GetSpokeNetwork(id int) (*model.SpokeNetwork, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.getSpokeNetwork(id)
}

func (ss *SQLiteStore) getSpokeNetwork(id int) (*model.SpokeNetwork, error) {
	var s model.SpokeNetwork
	err := ss.db.QueryRow(`
		SELECT id, hub_network_id, name, address_space, environment, resource_group_name,
		       status, compliance_status, monthly_cost, data_transfer_tb, created_at, updated_at
		FROM spoke_networks WHERE id = ?
	`, id).Scan(&s.ID, &s.HubNetworkID, &s.Name, &s.AddressSpace, &s.Environment,
		&s.ResourceGroupName, &s.Status, &s.ComplianceStatus, &s.MonthlyCost,
		&s.DataTransferTB, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSpokeNetworkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying spoke network: %w", err)
	}
	return &s, nil
}

func (ss *SQLiteStore) CreateSpokeNetwork(spoke *model.SpokeNetwork) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	spoke.ApplyDefaults()
	now := time.Now()
	spoke.CreatedAt = now
	spoke.UpdatedAt = now

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if spoke.ID, err = allocID(tx); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO spoke_networks (id, hub_network_id, name, address_space, environment,
			resource_group_name, status, compliance_status, monthly_cost, data_transfer_tb,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, spoke.ID, spoke.HubNetworkID, spoke.Name, spoke.AddressSpace, spoke.Environment,
		spoke.ResourceGroupName, spoke.Status, spoke.ComplianceStatus, spoke.MonthlyCost,
		spoke.DataTransferTB, spoke.CreatedAt, spoke.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting spoke network: %w", err)
	}

	return tx.Commit()
}

func (ss *SQLiteStore) UpdateSpokeNetwork(id int, upd *model.SpokeNetworkUpdate) (*model.SpokeNetwork, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	spoke, err := ss.getSpokeNetwork(id)
	if err != nil {
		return nil, err
	}

	upd.Apply(spoke)
	if now := time.Now(); now.After(spoke.UpdatedAt) {
		spoke.UpdatedAt = now
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE spoke_networks
		SET name = ?, address_space = ?, environment = ?, resource_group_name = ?,
		    status = ?, compliance_status = ?, monthly_cost = ?, data_transfer_tb = ?, updated_at = ?
		WHERE id = ?
	`, spoke.Name, spoke.AddressSpace, spoke.Environment, spoke.ResourceGroupName,
		spoke.Status, spoke.ComplianceStatus, spoke.MonthlyCost, spoke.DataTransferTB,
		spoke.UpdatedAt, spoke.ID)
	if err != nil {
		return nil, fmt.Errorf("updating spoke network: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return spoke, nil
}

// ListSecurityPolicies returns policies matching the filter.
func (ss *SQLiteStore) ListSecurityPolicies(filter *PolicyFilter) ([]model.SecurityPolicy, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := `
		SELECT id, network_id, network_type, policy_type, name, description, rules,
		       is_active, last_modified, modified_by
		FROM security_policies
	`
	var conds []string
	var args []interface{}
	if filter != nil && filter.NetworkID != 0 {
		conds = append(conds, "network_id = ?")
		args = append(args, filter.NetworkID)
	}
	if filter != nil && filter.NetworkType != "" {
		conds = append(conds, "network_type = ?")
		args = append(args, filter.NetworkType)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id"

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying security policies: %w", err)
	}
	defer rows.Close()

	policies := make([]model.SecurityPolicy, 0)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *policy)
	}
	return policies, rows.Err()
}

func (ss *SQLiteStore) GetSecurityPolicy(id int) (*model.SecurityPolicy, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.getSecurityPolicy(id)
}

func (ss *SQLiteStore) getSecurityPolicy(id int) (*model.SecurityPolicy, error) {
	rows, err := ss.db.Query(`
		SELECT id, network_id, network_type, policy_type, name, description, rules,
		       is_active, last_modified, modified_by
		FROM security_policies WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying security policy: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrPolicyNotFound
	}
	return scanPolicy(rows)
}

func scanPolicy(rows *sql.Rows) (*model.SecurityPolicy, error) {
	var p model.SecurityPolicy
	var rules string
	if err := rows.Scan(&p.ID, &p.NetworkID, &p.NetworkType, &p.PolicyType, &p.Name,
		&p.Description, &rules, &p.IsActive, &p.LastModified, &p.ModifiedBy); err != nil {
		return nil, fmt.Errorf("scanning security policy: %w", err)
	}
	if err := json.Unmarshal([]byte(rules), &p.Rules); err != nil {
		return nil, fmt.Errorf("decoding policy rules: %w", err)
	}
	return &p, nil
}

func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (ss *SQLiteStore) CreateSecurityPolicy(policy *model.SecurityPolicy) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	policy.LastModified = time.Now()
	if policy.Rules == nil {
		policy.Rules = []model.PolicyRule{}
	}

	rules, err := encodeJSON(policy.Rules)
	if err != nil {
		return fmt.Errorf("encoding policy rules: %w", err)
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if policy.ID, err = allocID(tx); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO security_policies (id, network_id, network_type, policy_type, name,
			description, rules, is_active, last_modified, modified_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, policy.ID, policy.NetworkID, policy.NetworkType, policy.PolicyType, policy.Name,
		policy.Description, rules, policy.IsActive, policy.LastModified, policy.ModifiedBy)
	if err != nil {
		return fmt.Errorf("inserting security policy: %w", err)
	}

	return tx.Commit()
}

func (ss *SQLiteStore) UpdateSecurityPolicy(id int, upd *model.SecurityPolicyUpdate) (*model.SecurityPolicy, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	policy, err := ss.getSecurityPolicy(id)
	if err != nil {
		return nil, err
	}

	upd.Apply(policy)
	if now := time.Now(); now.After(policy.LastModified) {
		policy.LastModified = now
	}

	rules, err := encodeJSON(policy.Rules)
	if err != nil {
		return nil, fmt.Errorf("encoding policy rules: %w", err)
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE security_policies
		SET policy_type = ?, name = ?, description = ?, rules = ?, is_active = ?,
		    last_modified = ?, modified_by = ?
		WHERE id = ?
	`, policy.PolicyType, policy.Name, policy.Description, rules, policy.IsActive,
		policy.LastModified, policy.ModifiedBy, policy.ID)
	if err != nil {
		return nil, fmt.Errorf("updating security policy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return policy, nil
}

// ListActivities returns the newest activities first, at most limit of them.
func (ss *SQLiteStore) ListActivities(limit int) ([]model.Activity, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := "SELECT id, activity_type, resource_name, resource_type, status, user_name, description, created_at FROM activities ORDER BY id DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0)
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.ActivityType, &a.ResourceName, &a.ResourceType,
			&a.Status, &a.UserName, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (ss *SQLiteStore) CreateActivity(activity *model.Activity) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	activity.CreatedAt = time.Now()

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if activity.ID, err = allocID(tx); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO activities (id, activity_type, resource_name, resource_type, status, user_name, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, activity.ID, activity.ActivityType, activity.ResourceName, activity.ResourceType,
		activity.Status, activity.UserName, activity.Description, activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}

	return tx.Commit()
}

// ListNetworkMetrics returns metric samples matching the filter.
func (ss *SQLiteStore) ListNetworkMetrics(filter *MetricFilter) ([]model.NetworkMetric, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := `
		SELECT id, network_id, network_type, metric_type, value, unit, timestamp
		FROM network_metrics
	`
	var conds []string
	var args []interface{}
	if filter != nil && filter.NetworkID != 0 {
		conds = append(conds, "network_id = ?")
		args = append(args, filter.NetworkID)
	}
	if filter != nil && filter.MetricType != "" {
		conds = append(conds, "metric_type = ?")
		args = append(args, filter.MetricType)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id"

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying network metrics: %w", err)
	}
	defer rows.Close()

	metrics := make([]model.NetworkMetric, 0)
	for rows.Next() {
		var m model.NetworkMetric
		if err := rows.Scan(&m.ID, &m.NetworkID, &m.NetworkType, &m.MetricType,
			&m.Value, &m.Unit, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning network metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (ss *SQLiteStore) CreateNetworkMetric(metric *model.NetworkMetric) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if metric.Timestamp.IsZero() {
		metric.Timestamp = time.Now()
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if metric.ID, err = allocID(tx); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO network_metrics (id, network_id, network_type, metric_type, value, unit, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, metric.ID, metric.NetworkID, metric.NetworkType, metric.MetricType,
		metric.Value, metric.Unit, metric.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting network metric: %w", err)
	}

	return tx.Commit()
}

// ListComplianceReports returns reports, optionally narrowed to a network.
func (ss *SQLiteStore) ListComplianceReports(networkID int) ([]model.ComplianceReport, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	query := `
		SELECT id, network_id, report_type, status, score, findings, generated_at, generated_by
		FROM compliance_reports
	`
	var args []interface{}
	if networkID != 0 {
		query += " WHERE network_id = ?"
		args = append(args, networkID)
	}
	query += " ORDER BY id"

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying compliance reports: %w", err)
	}
	defer rows.Close()

	reports := make([]model.ComplianceReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (ss *SQLiteStore) GetComplianceReport(id int) (*model.ComplianceReport, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, network_id, report_type, status, score, findings, generated_at, generated_by
		FROM compliance_reports WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying compliance report: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrReportNotFound
	}
	return scanReport(rows)
}

func scanReport(rows *sql.Rows) (*model.ComplianceReport, error) {
	var r model.ComplianceReport
	var findings string
	if err := rows.Scan(&r.ID, &r.NetworkID, &r.ReportType, &r.Status, &r.Score,
		&findings, &r.GeneratedAt, &r.GeneratedBy); err != nil {
		return nil, fmt.Errorf("scanning compliance report: %w", err)
	}
	if err := json.Unmarshal([]byte(findings), &r.Findings); err != nil {
		return nil, fmt.Errorf("decoding report findings: %w", err)
	}
	return &r, nil
}

func (ss *SQLiteStore) CreateComplianceReport(report *model.ComplianceReport) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	report.GeneratedAt = time.Now()
	if report.Findings == nil {
		report.Findings = []model.Finding{}
	}

	findings, err := encodeJSON(report.Findings)
	if err != nil {
		return fmt.Errorf("encoding report findings: %w", err)
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if report.ID, err = allocID(tx); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO compliance_reports (id, network_id, report_type, status, score, findings, generated_at, generated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.NetworkID, report.ReportType, report.Status, report.Score,
		findings, report.GeneratedAt, report.GeneratedBy)
	if err != nil {
		return fmt.Errorf("inserting compliance report: %w", err)
	}

	return tx.Commit()
}
