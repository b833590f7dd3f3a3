package derive

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/hubspoke/hubd/internal/model"
)

// stubRand returns a fixed value so derived numbers are deterministic.
type stubRand struct {
	v float64
}

func (s stubRand) Float64() float64 { return s.v }

func testEstate() ([]model.HubNetwork, []model.SpokeNetwork, []model.SecurityPolicy) {
	hubs := []model.HubNetwork{
		{ID: 1, Name: "hub-vnet", Status: "active"},
	}
	spokes := []model.SpokeNetwork{
		{ID: 2, HubNetworkID: 1, Name: "spoke-a", Status: "active", ComplianceStatus: "compliant", MonthlyCost: 100, DataTransferTB: 1},
		{ID: 3, HubNetworkID: 1, Name: "spoke-b", Status: "active", ComplianceStatus: "compliant", MonthlyCost: 200, DataTransferTB: 0.5},
	}
	policies := []model.SecurityPolicy{
		{ID: 4, NetworkID: 1, NetworkType: "hub", Name: "fw", IsActive: true},
		{ID: 5, NetworkID: 2, NetworkType: "spoke", Name: "nsg", IsActive: false},
	}
	return hubs, spokes, policies
}

func TestDashboard(t *testing.T) {
	hubs, spokes, policies := testEstate()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	m := Dashboard(hubs, spokes, policies, stubRand{0.5}, now)

	if m.TotalSpokes != 2 {
		t.Errorf("TotalSpokes = %d, want 2", m.TotalSpokes)
	}
	// 50% active policies, 100% compliant spokes: 50*0.6 + 100*0.4
	if m.SecurityCompliance != 70.0 {
		t.Errorf("SecurityCompliance = %v, want 70.0", m.SecurityCompliance)
	}
	// hub: 730*0.025 + 2*0.01*730 = 32.85, spokes: 100+90 + 200+45 = 435
	if m.MonthlyCost != 467.85 {
		t.Errorf("MonthlyCost = %v, want 467.85", m.MonthlyCost)
	}
	// 1.5 TB from spokes plus 0.5 TB overhead for the active hub
	if m.DataTransfer != 2.0 {
		t.Errorf("DataTransfer = %v, want 2.0", m.DataTransfer)
	}
	if m.ActiveConnections != 3 {
		t.Errorf("ActiveConnections = %d, want 3", m.ActiveConnections)
	}
	if m.NetworkLatency != 16.0 {
		t.Errorf("NetworkLatency = %v, want 16.0", m.NetworkLatency)
	}
	if m.ResourceHealth != "Warning" {
		t.Errorf("ResourceHealth = %q, want Warning", m.ResourceHealth)
	}
	if !m.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v, want %v", m.LastUpdated, now)
	}
}

func TestDashboardEmptyEstate(t *testing.T) {
	m := Dashboard(nil, nil, nil, stubRand{0}, time.Now())

	if m.SecurityCompliance != 100.0 {
		t.Errorf("SecurityCompliance = %v, want 100.0", m.SecurityCompliance)
	}
	if m.MonthlyCost != 0 {
		t.Errorf("MonthlyCost = %v, want 0", m.MonthlyCost)
	}
	if m.ResourceHealth != "Degraded" {
		t.Errorf("ResourceHealth = %q, want Degraded for an estate with no active connections", m.ResourceHealth)
	}
}

func TestDashboardHealthThresholds(t *testing.T) {
	tests := []struct {
		name     string
		policies []model.SecurityPolicy
		want     string
	}{
		{"all active", []model.SecurityPolicy{{IsActive: true}}, "Healthy"},
		{"half active", []model.SecurityPolicy{{IsActive: true}, {IsActive: false}}, "Warning"},
		{"none active", []model.SecurityPolicy{{IsActive: false}, {IsActive: false}, {IsActive: false}}, "Critical"},
	}

	hubs := []model.HubNetwork{{ID: 1, Status: "active"}}
	spokes := []model.SpokeNetwork{{ID: 2, HubNetworkID: 1, Status: "active", ComplianceStatus: "compliant"}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Dashboard(hubs, spokes, tt.policies, stubRand{0}, time.Now())
			if m.ResourceHealth != tt.want {
				t.Errorf("ResourceHealth = %q, want %q", m.ResourceHealth, tt.want)
			}
		})
	}
}

func TestLive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 2 active spokes + 1 active hub, 1 of 2 policies active
	m := Live(2, 1, 1, 2, stubRand{0.5}, now)

	if m.Latency != 8.6 {
		t.Errorf("Latency = %v, want 8.6", m.Latency)
	}
	if m.Throughput < 9.8 || m.Throughput > 9.9 {
		t.Errorf("Throughput = %v, want about 9.85", m.Throughput)
	}
	if m.Availability != 99.98 {
		t.Errorf("Availability = %v, want 99.98", m.Availability)
	}
	if m.PacketsPerSecond != 100000 {
		t.Errorf("PacketsPerSecond = %d, want 100000", m.PacketsPerSecond)
	}
	if m.ErrorsPerHour != 3 {
		t.Errorf("ErrorsPerHour = %d, want 3", m.ErrorsPerHour)
	}
	if m.ConnectionCount != 3 {
		t.Errorf("ConnectionCount = %d, want 3", m.ConnectionCount)
	}
	if !m.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", m.Timestamp, now)
	}
}

func TestLiveNoPolicies(t *testing.T) {
	// No policies means nothing to be out of compliance with
	m := Live(1, 1, 0, 0, stubRand{0}, time.Now())
	if m.ErrorsPerHour != 0 {
		t.Errorf("ErrorsPerHour = %d, want 0 with no policies", m.ErrorsPerHour)
	}
}

func TestLiveBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		spokes := rapid.IntRange(0, 500).Draw(t, "spokes")
		hubs := rapid.IntRange(0, 100).Draw(t, "hubs")
		total := rapid.IntRange(0, 200).Draw(t, "totalPolicies")
		active := rapid.IntRange(0, total).Draw(t, "activePolicies")
		v := rapid.Float64Range(0, 1).Draw(t, "rand")

		m := Live(spokes, hubs, active, total, stubRand{v}, time.Now())

		if m.Availability < 99 || m.Availability > 100 {
			t.Fatalf("Availability %v outside [99, 100]", m.Availability)
		}
		if m.CPUUtilization < 0 || m.CPUUtilization > 100 {
			t.Fatalf("CPUUtilization %v outside [0, 100]", m.CPUUtilization)
		}
		if m.MemoryUtilization < 0 || m.MemoryUtilization > 100 {
			t.Fatalf("MemoryUtilization %v outside [0, 100]", m.MemoryUtilization)
		}
		if m.BandwidthUtilization < 0 || m.BandwidthUtilization > 100 {
			t.Fatalf("BandwidthUtilization %v outside [0, 100]", m.BandwidthUtilization)
		}
		if m.PacketsPerSecond < 0 {
			t.Fatalf("PacketsPerSecond %d is negative", m.PacketsPerSecond)
		}
		if m.ErrorsPerHour < 0 {
			t.Fatalf("ErrorsPerHour %d is negative", m.ErrorsPerHour)
		}
	})
}

func quietLive() LiveMetrics {
	return LiveMetrics{
		Latency:              10,
		BandwidthUtilization: 20,
		CPUUtilization:       30,
	}
}

func TestAssessHealthyEstate(t *testing.T) {
	a := Assess(nil, nil, quietLive(), time.Now())

	if a.Score != 100 {
		t.Errorf("Score = %d, want 100", a.Score)
	}
	if a.OverallHealth != "Healthy" {
		t.Errorf("OverallHealth = %q, want Healthy", a.OverallHealth)
	}
	if a.Issues == nil || len(a.Issues) != 0 {
		t.Errorf("Issues = %v, want empty non-nil slice", a.Issues)
	}
}

func TestAssessDegradedOnHighSeverity(t *testing.T) {
	// One inactive non-compliant spoke trips two High severity rules
	spokes := []model.SpokeNetwork{
		{ID: 1, Status: "inactive", ComplianceStatus: "non-compliant"},
	}

	a := Assess(spokes, nil, quietLive(), time.Now())

	if len(a.Issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(a.Issues))
	}
	if a.Score != 76 {
		t.Errorf("Score = %d, want 76", a.Score)
	}
	if a.OverallHealth != "Degraded" {
		t.Errorf("OverallHealth = %q, want Degraded", a.OverallHealth)
	}
	if a.Issues[0].Severity != "High" || a.Issues[0].Category != "Security" {
		t.Errorf("first issue = %s/%s, want High/Security", a.Issues[0].Severity, a.Issues[0].Category)
	}
	if a.Issues[1].Severity != "High" || a.Issues[1].Category != "Compliance" {
		t.Errorf("second issue = %s/%s, want High/Compliance", a.Issues[1].Severity, a.Issues[1].Category)
	}
}

func TestAssessCriticalEstate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	spokes := []model.SpokeNetwork{
		{ID: 1, Status: "inactive", ComplianceStatus: "non-compliant", MonthlyCost: 1500, DataTransferTB: 12},
	}
	policies := []model.SecurityPolicy{
		{ID: 2, LastModified: now.Add(-45 * 24 * time.Hour)},
	}
	live := LiveMetrics{
		Latency:              25,
		BandwidthUtilization: 85,
		CPUUtilization:       90,
	}

	a := Assess(spokes, policies, live, now)

	// All eight rules fire
	if len(a.Issues) != 8 {
		t.Fatalf("got %d issues, want 8", len(a.Issues))
	}
	if a.Score != 4 {
		t.Errorf("Score = %d, want 4", a.Score)
	}
	if a.OverallHealth != "Critical" {
		t.Errorf("OverallHealth = %q, want Critical", a.OverallHealth)
	}
}

func TestAssessScoreBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(t, "spokes")
		spokes := make([]model.SpokeNetwork, n)
		for i := range spokes {
			spokes[i] = model.SpokeNetwork{
				ID:               i + 1,
				Status:           rapid.SampledFrom([]string{"active", "inactive"}).Draw(t, "status"),
				ComplianceStatus: rapid.SampledFrom([]string{"compliant", "non-compliant", "pending"}).Draw(t, "compliance"),
				MonthlyCost:      rapid.Float64Range(0, 5000).Draw(t, "cost"),
				DataTransferTB:   rapid.Float64Range(0, 50).Draw(t, "transfer"),
			}
		}
		live := LiveMetrics{
			Latency:              rapid.Float64Range(0, 50).Draw(t, "latency"),
			BandwidthUtilization: rapid.Float64Range(0, 100).Draw(t, "bandwidth"),
			CPUUtilization:       rapid.Float64Range(0, 100).Draw(t, "cpu"),
		}

		a := Assess(spokes, nil, live, time.Now())

		if a.Score < 0 || a.Score > 100 {
			t.Fatalf("Score %d outside [0, 100]", a.Score)
		}
		switch a.OverallHealth {
		case "Healthy", "Degraded", "Warning", "Critical":
		default:
			t.Fatalf("unexpected OverallHealth %q", a.OverallHealth)
		}
	})
}

func TestGenerateTemplate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tpl := GenerateTemplate(SpokeParams{Name: "spoke-dev", AddressSpace: "10.1.0.0/16", Environment: "development"}, now)

	if tpl.Schema != "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#" {
		t.Errorf("unexpected schema %q", tpl.Schema)
	}
	if tpl.ContentVersion != "1.0.0.0" {
		t.Errorf("ContentVersion = %q, want 1.0.0.0", tpl.ContentVersion)
	}
	if tpl.Metadata.Description != "ARM Template for spoke-dev spoke network" {
		t.Errorf("unexpected metadata description %q", tpl.Metadata.Description)
	}

	// Deployment order: the NSG first, then the VNet that references it,
	// then the peering that references the VNet.
	wantTypes := []string{
		"Microsoft.Network/networkSecurityGroups",
		"Microsoft.Network/virtualNetworks",
		"Microsoft.Network/virtualNetworks/virtualNetworkPeerings",
	}
	if len(tpl.Resources) != len(wantTypes) {
		t.Fatalf("got %d resources, want %d", len(tpl.Resources), len(wantTypes))
	}
	for i, want := range wantTypes {
		if tpl.Resources[i].Type != want {
			t.Errorf("resource %d type = %q, want %q", i, tpl.Resources[i].Type, want)
		}
		if tpl.Resources[i].APIVersion != "2023-04-01" {
			t.Errorf("resource %d apiVersion = %q, want 2023-04-01", i, tpl.Resources[i].APIVersion)
		}
	}
	if len(tpl.Resources[1].DependsOn) != 1 || !strings.Contains(tpl.Resources[1].DependsOn[0], "networkSecurityGroups") {
		t.Errorf("VNet dependsOn = %v, want NSG reference", tpl.Resources[1].DependsOn)
	}
	if len(tpl.Resources[2].DependsOn) != 1 || !strings.Contains(tpl.Resources[2].DependsOn[0], "virtualNetworks") {
		t.Errorf("peering dependsOn = %v, want VNet reference", tpl.Resources[2].DependsOn)
	}

	env, ok := tpl.Parameters["environment"]
	if !ok {
		t.Fatal("missing environment parameter")
	}
	if env.DefaultValue != "development" {
		t.Errorf("environment default = %q, want development", env.DefaultValue)
	}
	wantAllowed := []string{"development", "staging", "production", "security"}
	if len(env.AllowedValues) != len(wantAllowed) {
		t.Fatalf("environment allowedValues = %v, want %v", env.AllowedValues, wantAllowed)
	}
	for i, v := range wantAllowed {
		if env.AllowedValues[i] != v {
			t.Errorf("allowedValues[%d] = %q, want %q", i, env.AllowedValues[i], v)
		}
	}

	for _, key := range []string{"spokeNetworkId", "spokeNetworkName", "addressSpace"} {
		if _, ok := tpl.Outputs[key]; !ok {
			t.Errorf("missing output %q", key)
		}
	}
}

func TestValidateTemplateGeneratedPasses(t *testing.T) {
	tpl := GenerateTemplate(SpokeParams{Name: "spoke-x", AddressSpace: "10.2.0.0/16", Environment: "production"}, time.Now())

	raw, err := json.Marshal(tpl)
	if err != nil {
		t.Fatalf("marshal template: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal template: %v", err)
	}

	result := ValidateTemplate(doc)
	if !result.IsValid {
		t.Fatalf("generated template invalid: %v", result.Errors)
	}
	if result.EstimatedCost != 0 {
		t.Errorf("EstimatedCost = %v, want 0 for VNet, NSG and peering", result.EstimatedCost)
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name         string
		template     map[string]any
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
		wantCost     float64
	}{
		{
			name:      "missing everything",
			template:  map[string]any{},
			wantValid: false,
			wantErrors: []string{
				"Missing required $schema property",
				"Template must include a contentVersion property",
				"Missing or invalid resources array",
			},
		},
		{
			name: "empty resources",
			template: map[string]any{
				"$schema":        "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
				"contentVersion": "1.0.0.0",
				"resources":      []any{},
			},
			wantValid:    true,
			wantWarnings: []string{"Template contains no resources"},
		},
		{
			name: "resource missing properties",
			template: map[string]any{
				"$schema":        "x",
				"contentVersion": "1.0.0.0",
				"resources": []any{
					map[string]any{"type": "Microsoft.Network/virtualNetworks"},
				},
			},
			wantValid: false,
			wantErrors: []string{
				"Resource 0: Missing apiVersion property",
				"Resource 0: Missing name property",
			},
		},
		{
			name: "billable resources",
			template: map[string]any{
				"$schema":        "x",
				"contentVersion": "1.0.0.0",
				"resources": []any{
					map[string]any{"type": "Microsoft.Network/virtualNetworkGateways", "apiVersion": "2023-04-01", "name": "gw"},
					map[string]any{"type": "Microsoft.Network/publicIPAddresses", "apiVersion": "2023-04-01", "name": "pip"},
				},
			},
			wantValid:    true,
			wantWarnings: []string{"VPN Gateway will incur monthly charges"},
			wantCost:     146.21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateTemplate(tt.template)

			if result.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors: %v)", result.IsValid, tt.wantValid, result.Errors)
			}
			for _, want := range tt.wantErrors {
				if !containsString(result.Errors, want) {
					t.Errorf("errors %v missing %q", result.Errors, want)
				}
			}
			for _, want := range tt.wantWarnings {
				if !containsString(result.Warnings, want) {
					t.Errorf("warnings %v missing %q", result.Warnings, want)
				}
			}
			if result.EstimatedCost != tt.wantCost {
				t.Errorf("EstimatedCost = %v, want %v", result.EstimatedCost, tt.wantCost)
			}
		})
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestEstimateCost(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	resources := []ResourceSpec{
		{Name: "vnet", Type: "VirtualNetwork"},
		{Name: "pip", Type: "PublicIPAddress"},
	}

	estimate := EstimateCost(resources, now)

	if estimate.TotalMonthlyCost != 3.65 {
		t.Errorf("TotalMonthlyCost = %v, want 3.65", estimate.TotalMonthlyCost)
	}
	if len(estimate.Breakdown) != 2 {
		t.Fatalf("got %d breakdown lines, want 2", len(estimate.Breakdown))
	}
	if estimate.Breakdown[0].MonthlyCost != 0 {
		t.Errorf("VirtualNetwork cost = %v, want 0", estimate.Breakdown[0].MonthlyCost)
	}
	if estimate.Breakdown[1].MonthlyCost != 3.65 {
		t.Errorf("PublicIPAddress cost = %v, want 3.65", estimate.Breakdown[1].MonthlyCost)
	}
	if estimate.Currency != "USD" || estimate.Region != "East US" {
		t.Errorf("got %s/%s, want USD/East US", estimate.Currency, estimate.Region)
	}
}

func TestEstimateCostUnknownType(t *testing.T) {
	estimate := EstimateCost([]ResourceSpec{{Name: "mystery", Type: "QuantumRouter"}}, time.Now())
	if estimate.TotalMonthlyCost != 0 {
		t.Errorf("TotalMonthlyCost = %v, want 0 for unknown type", estimate.TotalMonthlyCost)
	}
}

func TestEstimateCostGatewayTable(t *testing.T) {
	tests := []struct {
		resType string
		want    float64
	}{
		{"VirtualNetworkGateway", 142.56},
		{"LoadBalancer", 18.25},
		{"NetworkSecurityGroup", 0},
	}
	for _, tt := range tests {
		t.Run(tt.resType, func(t *testing.T) {
			estimate := EstimateCost([]ResourceSpec{{Name: "r", Type: tt.resType}}, time.Now())
			if estimate.TotalMonthlyCost != tt.want {
				t.Errorf("cost = %v, want %v", estimate.TotalMonthlyCost, tt.want)
			}
		})
	}
}
