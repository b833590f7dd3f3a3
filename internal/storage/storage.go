package storage

import (
	"errors"
	"fmt"

	"github.com/hubspoke/hubd/internal/config"
	"github.com/hubspoke/hubd/internal/model"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrHubNetworkNotFound   = errors.New("hub network not found")
	ErrSpokeNetworkNotFound = errors.New("spoke network not found")
	ErrPolicyNotFound       = errors.New("security policy not found")
	ErrReportNotFound       = errors.New("compliance report not found")
)

// HubNetworkFilter narrows hub listings. Zero values match everything.
type HubNetworkFilter struct {
	SubscriptionID int
}

// SpokeNetworkFilter narrows spoke listings. Zero values match everything.
type SpokeNetworkFilter struct {
	HubNetworkID int
}

// PolicyFilter narrows policy listings. Set fields combine with AND.
type PolicyFilter struct {
	NetworkID   int
	NetworkType string
}

// MetricFilter narrows metric listings. Set fields combine with AND.
type MetricFilter struct {
	NetworkID  int
	MetricType string
}

// Store is the persistence interface shared by both backends. Create calls
// assign the id and timestamps and fill column defaults; callers validate
// records before handing them over. Lists return records in insertion order
// except activities, which come newest first.
type Store interface {
	ListSubscriptions() ([]model.Subscription, error)
	GetSubscription(id int) (*model.Subscription, error)
	CreateSubscription(sub *model.Subscription) error

	ListHubNetworks(filter *HubNetworkFilter) ([]model.HubNetwork, error)
	GetHubNetwork(id int) (*model.HubNetwork, error)
	CreateHubNetwork(hub *model.HubNetwork) error

	ListSpokeNetworks(filter *SpokeNetworkFilter) ([]model.SpokeNetwork, error)
	GetSpokeNetwork(id int) (*model.SpokeNetwork, error)
	CreateSpokeNetwork(spoke *model.SpokeNetwork) error
	UpdateSpokeNetwork(id int, upd *model.SpokeNetworkUpdate) (*model.SpokeNetwork, error)

	ListSecurityPolicies(filter *PolicyFilter) ([]model.SecurityPolicy, error)
	GetSecurityPolicy(id int) (*model.SecurityPolicy, error)
	CreateSecurityPolicy(policy *model.SecurityPolicy) error
	UpdateSecurityPolicy(id int, upd *model.SecurityPolicyUpdate) (*model.SecurityPolicy, error)

	ListActivities(limit int) ([]model.Activity, error)
	CreateActivity(activity *model.Activity) error

	ListNetworkMetrics(filter *MetricFilter) ([]model.NetworkMetric, error)
	CreateNetworkMetric(metric *model.NetworkMetric) error

	ListComplianceReports(networkID int) ([]model.ComplianceReport, error)
	GetComplianceReport(id int) (*model.ComplianceReport, error)
	CreateComplianceReport(report *model.ComplianceReport) error

	Close() error
}

// New opens the backend selected by the configuration.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
