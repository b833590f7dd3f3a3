package storage

import (
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/hubspoke/hubd/internal/model"
)

// MemoryStore implements Store with in-process maps. Nothing survives a
// restart. A single counter feeds ids for every entity type so ids are
// unique across tables, the same allocation scheme the SQLite backend uses.
type MemoryStore struct {
	mu sync.RWMutex

	nextID        int
	subscriptions map[int]*model.Subscription
	hubs          map[int]*model.HubNetwork
	spokes        map[int]*model.SpokeNetwork
	policies      map[int]*model.SecurityPolicy
	activities    map[int]*model.Activity
	metrics       map[int]*model.NetworkMetric
	reports       map[int]*model.ComplianceReport
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:        1,
		subscriptions: make(map[int]*model.Subscription),
		hubs:          make(map[int]*model.HubNetwork),
		spokes:        make(map[int]*model.SpokeNetwork),
		policies:      make(map[int]*model.SecurityPolicy),
		activities:    make(map[int]*model.Activity),
		metrics:       make(map[int]*model.NetworkMetric),
		reports:       make(map[int]*model.ComplianceReport),
	}
}

func (ms *MemoryStore) allocID() int {
	id := ms.nextID
	ms.nextID++
	return id
}

func sortedIDs[T any](m map[int]*T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ListSubscriptions returns all subscriptions in insertion order.
func (ms *MemoryStore) ListSubscriptions() ([]model.Subscription, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	subs := make([]model.Subscription, 0, len(ms.subscriptions))
	for _, id := range sortedIDs(ms.subscriptions) {
		subs = append(subs, *ms.subscriptions[id])
	}
	return subs, nil
}

func (ms *MemoryStore) GetSubscription(id int) (*model.Subscription, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	sub, ok := ms.subscriptions[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	clone := *sub
	return &clone, nil
}

func (ms *MemoryStore) CreateSubscription(sub *model.Subscription) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	sub.ID = ms.allocID()
	sub.ApplyDefaults()
	sub.CreatedAt = time.Now()

	clone := *sub
	ms.subscriptions[sub.ID] = &clone
	return nil
}

// ListHubNetworks returns hubs, optionally narrowed to a subscription.
func (ms *MemoryStore) ListHubNetworks(filter *HubNetworkFilter) ([]model.HubNetwork, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	hubs := make([]model.HubNetwork, 0, len(ms.hubs))
	for _, id := range sortedIDs(ms.hubs) {
		hub := ms.hubs[id]
		if filter != nil && filter.SubscriptionID != 0 && hub.SubscriptionID != filter.SubscriptionID {
			continue
		}
		hubs = append(hubs, *hub)
	}
	return hubs, nil
}

func (ms *MemoryStore) GetHubNetwork(id int) (*model.HubNetwork, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	hub, ok := ms.hubs[id]
	if !ok {
		return nil, ErrHubNetworkNotFound
	}
	clone := *hub
	return &clone, nil
}

func (ms *MemoryStore) CreateHubNetwork(hub *model.HubNetwork) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	hub.ID = ms.allocID()
	hub.ApplyDefaults()
	hub.CreatedAt = time.Now()

	clone := *hub
	ms.hubs[hub.ID] = &clone
	return nil
}

// ListSpokeNetworks returns spokes, optionally narrowed to a hub.
func (ms *MemoryStore) ListSpokeNetworks(filter *SpokeNetworkFilter) ([]model.SpokeNetwork, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	spokes := make([]model.SpokeNetwork, 0, len(ms.spokes))
	for _, id := range sortedIDs(ms.spokes) {
		spoke := ms.spokes[id]
		if filter != nil && filter.HubNetworkID != 0 && spoke.HubNetworkID != filter.HubNetworkID {
			continue
		}
		spokes = append(spokes, *spoke)
	}
	return spokes, nil
}

func (ms *MemoryStore) GetSpokeNetwork(id int) (*model.SpokeNetwork, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	spoke, ok := ms.spokes[id]
	if !ok {
		return nil, ErrSpokeNetworkNotFound
	}
	clone := *spoke
	return &clone, nil
}

func (ms *MemoryStore) CreateSpokeNetwork(spoke *model.SpokeNetwork) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	spoke.ID = ms.allocID()
	spoke.ApplyDefaults()
	now := time.Now()
	spoke.CreatedAt = now
	spoke.UpdatedAt = now

	clone := *spoke
	ms.spokes[spoke.ID] = &clone
	return nil
}

func (ms *MemoryStore) UpdateSpokeNetwork(id int, upd *model.SpokeNetworkUpdate) (*model.SpokeNetwork, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	spoke, ok := ms.spokes[id]
	if !ok {
		return nil, ErrSpokeNetworkNotFound
	}

	upd.Apply(spoke)
	if now := time.Now(); now.After(spoke.UpdatedAt) {
		spoke.UpdatedAt = now
	}

	clone := *spoke
	return &clone, nil
}

// ListSecurityPolicies returns policies matching the filter.
func (ms *MemoryStore) ListSecurityPolicies(filter *PolicyFilter) ([]model.SecurityPolicy, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	policies := make([]model.SecurityPolicy, 0, len(ms.policies))
	for _, id := range sortedIDs(ms.policies) {
		policy := ms.policies[id]
		if filter != nil {
			if filter.NetworkID != 0 && policy.NetworkID != filter.NetworkID {
				continue
			}
			if filter.NetworkType != "" && policy.NetworkType != filter.NetworkType {
				continue
			}
		}
		policies = append(policies, clonePolicy(policy))
	}
	return policies, nil
}

func (ms *MemoryStore) GetSecurityPolicy(id int) (*model.SecurityPolicy, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	policy, ok := ms.policies[id]
	if !ok {
		return nil, ErrPolicyNotFound
	}
	clone := clonePolicy(policy)
	return &clone, nil
}

func (ms *MemoryStore) CreateSecurityPolicy(policy *model.SecurityPolicy) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	policy.ID = ms.allocID()
	policy.LastModified = time.Now()

	clone := clonePolicy(policy)
	ms.policies[policy.ID] = &clone
	return nil
}

func (ms *MemoryStore) UpdateSecurityPolicy(id int, upd *model.SecurityPolicyUpdate) (*model.SecurityPolicy, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	policy, ok := ms.policies[id]
	if !ok {
		return nil, ErrPolicyNotFound
	}

	upd.Apply(policy)
	if now := time.Now(); now.After(policy.LastModified) {
		policy.LastModified = now
	}

	clone := clonePolicy(policy)
	return &clone, nil
}

// ListActivities returns the newest activities first, at most limit of them.
func (ms *MemoryStore) ListActivities(limit int) ([]model.Activity, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ids := sortedIDs(ms.activities)
	activities := make([]model.Activity, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		activities = append(activities, *ms.activities[ids[i]])
		if limit > 0 && len(activities) >= limit {
			break
		}
	}
	return activities, nil
}

func (ms *MemoryStore) CreateActivity(activity *model.Activity) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	activity.ID = ms.allocID()
	activity.CreatedAt = time.Now()

	clone := *activity
	ms.activities[activity.ID] = &clone
	return nil
}

// ListNetworkMetrics returns metric samples matching the filter.
func (ms *MemoryStore) ListNetworkMetrics(filter *MetricFilter) ([]model.NetworkMetric, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	metrics := make([]model.NetworkMetric, 0, len(ms.metrics))
	for _, id := range sortedIDs(ms.metrics) {
		metric := ms.metrics[id]
		if filter != nil {
			if filter.NetworkID != 0 && metric.NetworkID != filter.NetworkID {
				continue
			}
			if filter.MetricType != "" && metric.MetricType != filter.MetricType {
				continue
			}
		}
		metrics = append(metrics, *metric)
	}
	return metrics, nil
}

func (ms *MemoryStore) CreateNetworkMetric(metric *model.NetworkMetric) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	metric.ID = ms.allocID()
	if metric.Timestamp.IsZero() {
		metric.Timestamp = time.Now()
	}

	clone := *metric
	ms.metrics[metric.ID] = &clone
	return nil
}

// ListComplianceReports returns reports, optionally narrowed to a network.
func (ms *MemoryStore) ListComplianceReports(networkID int) ([]model.ComplianceReport, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	reports := make([]model.ComplianceReport, 0, len(ms.reports))
	for _, id := range sortedIDs(ms.reports) {
		report := ms.reports[id]
		if networkID != 0 && report.NetworkID != networkID {
			continue
		}
		reports = append(reports, cloneReport(report))
	}
	return reports, nil
}

func (ms *MemoryStore) GetComplianceReport(id int) (*model.ComplianceReport, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	report, ok := ms.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	clone := cloneReport(report)
	return &clone, nil
}

func (ms *MemoryStore) CreateComplianceReport(report *model.ComplianceReport) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	report.ID = ms.allocID()
	report.GeneratedAt = time.Now()

	clone := cloneReport(report)
	ms.reports[report.ID] = &clone
	return nil
}

func (ms *MemoryStore) Close() error {
	return nil
}

func clonePolicy(p *model.SecurityPolicy) model.SecurityPolicy {
	clone := *p
	if p.Rules != nil {
		clone.Rules = make([]model.PolicyRule, len(p.Rules))
		for i, rule := range p.Rules {
			rule.Extra = maps.Clone(rule.Extra)
			clone.Rules[i] = rule
		}
	}
	return clone
}

func cloneReport(r *model.ComplianceReport) model.ComplianceReport {
	clone := *r
	if r.Findings != nil {
		clone.Findings = make([]model.Finding, len(r.Findings))
		for i, finding := range r.Findings {
			finding.Extra = maps.Clone(finding.Extra)
			clone.Findings[i] = finding
		}
	}
	return clone
}
