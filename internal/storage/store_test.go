package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/hubspoke/hubd/internal/config"
	"github.com/hubspoke/hubd/internal/model"
)

// setupStores returns both backend implementations so every test runs
// against memory and SQLite alike.
func setupStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestCreateAndGetSubscription(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			sub := &model.Subscription{
				Name:           "Production",
				SubscriptionID: "12345678-1234-1234-1234-123456789012",
				Region:         "East US",
				ResourceGroup:  "rg-prod",
				Status:         "active",
				IsActive:       true,
			}
			if err := store.CreateSubscription(sub); err != nil {
				t.Fatalf("CreateSubscription: %v", err)
			}
			if sub.ID == 0 {
				t.Fatal("expected assigned id")
			}
			if !sub.IsActive {
				t.Error("expected subscription to stay active")
			}
			if sub.CreatedAt.IsZero() {
				t.Error("expected CreatedAt to be set")
			}

			got, err := store.GetSubscription(sub.ID)
			if err != nil {
				t.Fatalf("GetSubscription: %v", err)
			}
			if got.Name != sub.Name || got.SubscriptionID != sub.SubscriptionID {
				t.Errorf("got %+v, want %+v", got, sub)
			}

			if _, err := store.GetSubscription(9999); !errors.Is(err, ErrSubscriptionNotFound) {
				t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
			}
		})
	}
}

func TestIDsUniqueAcrossEntityTypes(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			sub := &model.Subscription{Name: "s", SubscriptionID: "x", Region: "East US", ResourceGroup: "rg", Status: "active"}
			if err := store.CreateSubscription(sub); err != nil {
				t.Fatalf("CreateSubscription: %v", err)
			}
			hub := &model.HubNetwork{SubscriptionID: sub.ID, Name: "hub", AddressSpace: "10.0.0.0/16", Location: "East US", ResourceGroupName: "rg", Status: "active"}
			if err := store.CreateHubNetwork(hub); err != nil {
				t.Fatalf("CreateHubNetwork: %v", err)
			}
			spoke := &model.SpokeNetwork{HubNetworkID: hub.ID, Name: "spoke", AddressSpace: "10.1.0.0/16", Environment: "production", ResourceGroupName: "rg"}
			if err := store.CreateSpokeNetwork(spoke); err != nil {
				t.Fatalf("CreateSpokeNetwork: %v", err)
			}

			seen := map[int]bool{}
			for _, id := range []int{sub.ID, hub.ID, spoke.ID} {
				if id <= 0 {
					t.Errorf("non-positive id %d", id)
				}
				if seen[id] {
					t.Errorf("id %d assigned twice", id)
				}
				seen[id] = true
			}
			if hub.ID <= sub.ID || spoke.ID <= hub.ID {
				t.Errorf("ids not monotonic: %d, %d, %d", sub.ID, hub.ID, spoke.ID)
			}
		})
	}
}

func TestHubNetworkFilter(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			subA := &model.Subscription{Name: "a", SubscriptionID: "a", Region: "East US", ResourceGroup: "rg", Status: "active"}
			subB := &model.Subscription{Name: "b", SubscriptionID: "b", Region: "East US", ResourceGroup: "rg", Status: "active"}
			store.CreateSubscription(subA)
			store.CreateSubscription(subB)

			for _, owner := range []int{subA.ID, subA.ID, subB.ID} {
				hub := &model.HubNetwork{SubscriptionID: owner, Name: "hub", AddressSpace: "10.0.0.0/16", Location: "East US", ResourceGroupName: "rg", Status: "active"}
				if err := store.CreateHubNetwork(hub); err != nil {
					t.Fatalf("CreateHubNetwork: %v", err)
				}
			}

			all, err := store.ListHubNetworks(nil)
			if err != nil {
				t.Fatalf("ListHubNetworks: %v", err)
			}
			if len(all) != 3 {
				t.Errorf("got %d hubs, want 3", len(all))
			}

			filtered, err := store.ListHubNetworks(&HubNetworkFilter{SubscriptionID: subA.ID})
			if err != nil {
				t.Fatalf("ListHubNetworks filtered: %v", err)
			}
			if len(filtered) != 2 {
				t.Errorf("got %d hubs for subscription %d, want 2", len(filtered), subA.ID)
			}
		})
	}
}

func TestUpdateSpokeNetwork(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			spoke := &model.SpokeNetwork{
				HubNetworkID:      1,
				Name:              "spoke-dev",
				AddressSpace:      "10.1.0.0/16",
				Environment:       "development",
				ResourceGroupName: "rg-dev",
				MonthlyCost:       100,
				DataTransferTB:    0.5,
			}
			if err := store.CreateSpokeNetwork(spoke); err != nil {
				t.Fatalf("CreateSpokeNetwork: %v", err)
			}
			if spoke.Status != "active" || spoke.ComplianceStatus != "compliant" {
				t.Errorf("defaults not applied: %q/%q", spoke.Status, spoke.ComplianceStatus)
			}

			status := "inactive"
			cost := 123.456
			updated, err := store.UpdateSpokeNetwork(spoke.ID, &model.SpokeNetworkUpdate{
				Status:      &status,
				MonthlyCost: &cost,
			})
			if err != nil {
				t.Fatalf("UpdateSpokeNetwork: %v", err)
			}
			if updated.Status != "inactive" {
				t.Errorf("Status = %q, want inactive", updated.Status)
			}
			if updated.MonthlyCost != 123.46 {
				t.Errorf("MonthlyCost = %v, want 123.46 (rounded)", updated.MonthlyCost)
			}
			if updated.Name != "spoke-dev" {
				t.Errorf("Name = %q, untouched fields must survive", updated.Name)
			}
			if updated.UpdatedAt.Before(spoke.UpdatedAt.Truncate(time.Second)) {
				t.Error("UpdatedAt moved backwards")
			}

			if _, err := store.UpdateSpokeNetwork(9999, &model.SpokeNetworkUpdate{}); !errors.Is(err, ErrSpokeNetworkNotFound) {
				t.Errorf("expected ErrSpokeNetworkNotFound, got %v", err)
			}
		})
	}
}

func TestSecurityPolicyLifecycle(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			policy := &model.SecurityPolicy{
				NetworkID:   1,
				NetworkType: "hub",
				PolicyType:  "firewall",
				Name:        "Hub Firewall",
				Rules: []model.PolicyRule{
					{Text: "Allow HTTPS inbound"},
					{Extra: map[string]any{"port": "22", "action": "deny"}},
				},
				IsActive:   true,
				ModifiedBy: "admin@example.com",
			}
			if err := store.CreateSecurityPolicy(policy); err != nil {
				t.Fatalf("CreateSecurityPolicy: %v", err)
			}
			if !policy.IsActive {
				t.Error("expected policy to stay active")
			}

			got, err := store.GetSecurityPolicy(policy.ID)
			if err != nil {
				t.Fatalf("GetSecurityPolicy: %v", err)
			}
			if len(got.Rules) != 2 {
				t.Fatalf("got %d rules, want 2", len(got.Rules))
			}
			if got.Rules[0].Text != "Allow HTTPS inbound" {
				t.Errorf("rule 0 = %q, want text rule", got.Rules[0].Text)
			}
			if got.Rules[1].Extra["action"] != "deny" {
				t.Errorf("rule 1 extra = %v, want structured rule", got.Rules[1].Extra)
			}

			inactive := false
			updated, err := store.UpdateSecurityPolicy(policy.ID, &model.SecurityPolicyUpdate{IsActive: &inactive})
			if err != nil {
				t.Fatalf("UpdateSecurityPolicy: %v", err)
			}
			if updated.IsActive {
				t.Error("expected policy to be inactive after update")
			}

			hubOnly, err := store.ListSecurityPolicies(&PolicyFilter{NetworkType: "hub"})
			if err != nil {
				t.Fatalf("ListSecurityPolicies: %v", err)
			}
			if len(hubOnly) != 1 {
				t.Errorf("got %d hub policies, want 1", len(hubOnly))
			}
			spokeOnly, err := store.ListSecurityPolicies(&PolicyFilter{NetworkType: "spoke"})
			if err != nil {
				t.Fatalf("ListSecurityPolicies: %v", err)
			}
			if len(spokeOnly) != 0 {
				t.Errorf("got %d spoke policies, want 0", len(spokeOnly))
			}
		})
	}
}

func TestCreateKeepsExplicitInactive(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			sub := &model.Subscription{
				Name:           "Suspended",
				SubscriptionID: "sub-suspended",
				Region:         "East US",
				ResourceGroup:  "rg",
				Status:         "suspended",
				IsActive:       false,
			}
			if err := store.CreateSubscription(sub); err != nil {
				t.Fatalf("CreateSubscription: %v", err)
			}
			gotSub, err := store.GetSubscription(sub.ID)
			if err != nil {
				t.Fatalf("GetSubscription: %v", err)
			}
			if gotSub.IsActive {
				t.Error("subscription created inactive came back active")
			}

			policy := &model.SecurityPolicy{
				NetworkID:   1,
				NetworkType: "hub",
				PolicyType:  "firewall",
				Name:        "Draft Policy",
				IsActive:    false,
			}
			if err := store.CreateSecurityPolicy(policy); err != nil {
				t.Fatalf("CreateSecurityPolicy: %v", err)
			}
			gotPolicy, err := store.GetSecurityPolicy(policy.ID)
			if err != nil {
				t.Fatalf("GetSecurityPolicy: %v", err)
			}
			if gotPolicy.IsActive {
				t.Error("policy created inactive came back active")
			}
		})
	}
}

func TestMemoryStoreIsolatesRuleMaps(t *testing.T) {
	store := NewMemoryStore()

	policy := &model.SecurityPolicy{
		NetworkID:   1,
		NetworkType: "hub",
		PolicyType:  "nsg",
		Name:        "Structured",
		IsActive:    true,
		Rules: []model.PolicyRule{
			{Extra: map[string]any{"description": "deny ssh", "port": "22"}},
		},
	}
	if err := store.CreateSecurityPolicy(policy); err != nil {
		t.Fatalf("CreateSecurityPolicy: %v", err)
	}

	first, err := store.GetSecurityPolicy(policy.ID)
	if err != nil {
		t.Fatalf("GetSecurityPolicy: %v", err)
	}
	first.Rules[0].Extra["port"] = "3389"

	second, err := store.GetSecurityPolicy(policy.ID)
	if err != nil {
		t.Fatalf("GetSecurityPolicy: %v", err)
	}
	if second.Rules[0].Extra["port"] != "22" {
		t.Errorf("stored rule changed through a returned copy: %v", second.Rules[0].Extra)
	}

	report := &model.ComplianceReport{
		NetworkID:   1,
		ReportType:  "security_audit",
		Status:      "completed",
		Score:       90,
		Findings:    []model.Finding{{Extra: map[string]any{"category": "nsg", "status": "open", "description": "wide rule"}}},
		GeneratedBy: "auditor@example.com",
	}
	if err := store.CreateComplianceReport(report); err != nil {
		t.Fatalf("CreateComplianceReport: %v", err)
	}
	got, err := store.GetComplianceReport(report.ID)
	if err != nil {
		t.Fatalf("GetComplianceReport: %v", err)
	}
	got.Findings[0].Extra["status"] = "resolved"
	again, err := store.GetComplianceReport(report.ID)
	if err != nil {
		t.Fatalf("GetComplianceReport: %v", err)
	}
	if again.Findings[0].Extra["status"] != "open" {
		t.Errorf("stored finding changed through a returned copy: %v", again.Findings[0].Extra)
	}
}

func TestActivitiesNewestFirst(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			names := []string{"first", "second", "third"}
			for _, n := range names {
				activity := &model.Activity{
					ActivityType: "spoke_network_created",
					ResourceName: n,
					ResourceType: "spoke_network",
					Status:       "success",
					UserName:     "System",
				}
				if err := store.CreateActivity(activity); err != nil {
					t.Fatalf("CreateActivity: %v", err)
				}
			}

			activities, err := store.ListActivities(10)
			if err != nil {
				t.Fatalf("ListActivities: %v", err)
			}
			if len(activities) != 3 {
				t.Fatalf("got %d activities, want 3", len(activities))
			}
			if activities[0].ResourceName != "third" || activities[2].ResourceName != "first" {
				t.Errorf("activities not newest first: %s, %s, %s",
					activities[0].ResourceName, activities[1].ResourceName, activities[2].ResourceName)
			}

			limited, err := store.ListActivities(2)
			if err != nil {
				t.Fatalf("ListActivities limited: %v", err)
			}
			if len(limited) != 2 {
				t.Errorf("got %d activities with limit 2", len(limited))
			}
			if limited[0].ResourceName != "third" {
				t.Errorf("limited list starts with %q, want third", limited[0].ResourceName)
			}
		})
	}
}

func TestNetworkMetricsFilter(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			samples := []model.NetworkMetric{
				{NetworkID: 1, NetworkType: "hub", MetricType: "latency", Value: 9.1, Unit: "ms"},
				{NetworkID: 1, NetworkType: "hub", MetricType: "throughput", Value: 8.2, Unit: "Gbps"},
				{NetworkID: 2, NetworkType: "spoke", MetricType: "latency", Value: 11.4, Unit: "ms"},
			}
			for i := range samples {
				if err := store.CreateNetworkMetric(&samples[i]); err != nil {
					t.Fatalf("CreateNetworkMetric: %v", err)
				}
			}

			forOne, err := store.ListNetworkMetrics(&MetricFilter{NetworkID: 1})
			if err != nil {
				t.Fatalf("ListNetworkMetrics: %v", err)
			}
			if len(forOne) != 2 {
				t.Errorf("got %d metrics for network 1, want 2", len(forOne))
			}

			latency, err := store.ListNetworkMetrics(&MetricFilter{NetworkID: 1, MetricType: "latency"})
			if err != nil {
				t.Fatalf("ListNetworkMetrics typed: %v", err)
			}
			if len(latency) != 1 || latency[0].Value != 9.1 {
				t.Errorf("latency filter returned %v", latency)
			}
		})
	}
}

func TestComplianceReports(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			report := &model.ComplianceReport{
				NetworkID:   1,
				ReportType:  "security_audit",
				Status:      "completed",
				Score:       87.5,
				Findings:    []model.Finding{{Text: "NSG rules reviewed"}},
				GeneratedBy: "auditor@example.com",
			}
			if err := store.CreateComplianceReport(report); err != nil {
				t.Fatalf("CreateComplianceReport: %v", err)
			}
			if report.GeneratedAt.IsZero() {
				t.Error("expected GeneratedAt to be set")
			}

			got, err := store.GetComplianceReport(report.ID)
			if err != nil {
				t.Fatalf("GetComplianceReport: %v", err)
			}
			if got.Score != 87.5 {
				t.Errorf("Score = %v, want 87.5", got.Score)
			}
			if len(got.Findings) != 1 || got.Findings[0].Text != "NSG rules reviewed" {
				t.Errorf("Findings = %v", got.Findings)
			}

			forNetwork, err := store.ListComplianceReports(1)
			if err != nil {
				t.Fatalf("ListComplianceReports: %v", err)
			}
			if len(forNetwork) != 1 {
				t.Errorf("got %d reports for network 1, want 1", len(forNetwork))
			}
			other, err := store.ListComplianceReports(42)
			if err != nil {
				t.Fatalf("ListComplianceReports: %v", err)
			}
			if len(other) != 0 {
				t.Errorf("got %d reports for network 42, want 0", len(other))
			}

			if _, err := store.GetComplianceReport(9999); !errors.Is(err, ErrReportNotFound) {
				t.Errorf("expected ErrReportNotFound, got %v", err)
			}
		})
	}
}

func TestSeedDemo(t *testing.T) {
	for name, store := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := SeedDemo(store); err != nil {
				t.Fatalf("SeedDemo: %v", err)
			}

			subs, _ := store.ListSubscriptions()
			if len(subs) != 2 {
				t.Errorf("got %d subscriptions, want 2", len(subs))
			}
			hubs, _ := store.ListHubNetworks(nil)
			if len(hubs) != 1 {
				t.Fatalf("got %d hubs, want 1", len(hubs))
			}
			spokes, _ := store.ListSpokeNetworks(nil)
			if len(spokes) != 4 {
				t.Errorf("got %d spokes, want 4", len(spokes))
			}
			policies, _ := store.ListSecurityPolicies(nil)
			if len(policies) != 4 {
				t.Errorf("got %d policies, want 4", len(policies))
			}
			activities, _ := store.ListActivities(0)
			if len(activities) != 5 {
				t.Errorf("got %d activities, want 5", len(activities))
			}

			// Spokes all hang off the single demo hub
			for _, spoke := range spokes {
				if spoke.HubNetworkID != hubs[0].ID {
					t.Errorf("spoke %s references hub %d, want %d", spoke.Name, spoke.HubNetworkID, hubs[0].ID)
				}
			}
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	memStore, err := New(&config.Config{StorageBackend: "memory", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	if _, ok := memStore.(*MemoryStore); !ok {
		t.Errorf("got %T, want *MemoryStore", memStore)
	}

	sqlStore, err := New(&config.Config{StorageBackend: "sqlite", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New sqlite: %v", err)
	}
	defer sqlStore.Close()
	if _, ok := sqlStore.(*SQLiteStore); !ok {
		t.Errorf("got %T, want *SQLiteStore", sqlStore)
	}

	if _, err := New(&config.Config{StorageBackend: "bogus", DataDir: t.TempDir()}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
