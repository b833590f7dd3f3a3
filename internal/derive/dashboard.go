package derive

import (
	"time"

	"github.com/hubspoke/hubd/internal/model"
)

// DashboardMetrics is the aggregate view shown on the dashboard landing page.
type DashboardMetrics struct {
	TotalSpokes        int       `json:"totalSpokes"`
	SecurityCompliance float64   `json:"securityCompliance"`
	MonthlyCost        float64   `json:"monthlyCost"`
	DataTransfer       float64   `json:"dataTransfer"`
	ActiveConnections  int       `json:"activeConnections"`
	NetworkLatency     float64   `json:"networkLatency"`
	ResourceHealth     string    `json:"resourceHealth"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

const (
	hubBaseHourlyRate   = 0.025 // per hub VNet, 24/7
	peeringHourlyRate   = 0.01  // per spoke peering
	hoursPerMonth       = 730
	egressRatePerGB     = 0.09
	hubTransferOverhead = 0.5 // TB per active hub
)

// Dashboard computes the aggregate metrics from a snapshot of the estate.
func Dashboard(hubs []model.HubNetwork, spokes []model.SpokeNetwork, policies []model.SecurityPolicy, rng Rand, now time.Time) DashboardMetrics {
	totalSpokes := len(spokes)

	activePolicies := 0
	for _, p := range policies {
		if p.IsActive {
			activePolicies++
		}
	}
	policyCompliance := 100.0
	if len(policies) > 0 {
		policyCompliance = float64(activePolicies) / float64(len(policies)) * 100
	}

	compliantSpokes := 0
	for _, s := range spokes {
		if s.ComplianceStatus == "compliant" {
			compliantSpokes++
		}
	}
	spokeComplianceRate := 100.0
	if totalSpokes > 0 {
		spokeComplianceRate = float64(compliantSpokes) / float64(totalSpokes) * 100
	}

	securityCompliance := policyCompliance*0.6 + spokeComplianceRate*0.4

	// Hub cost is the base VNet charge plus one peering charge per spoke
	hubCost := 0.0
	for _, hub := range hubs {
		peered := 0
		for _, s := range spokes {
			if s.HubNetworkID == hub.ID {
				peered++
			}
		}
		hubCost += hoursPerMonth*hubBaseHourlyRate + float64(peered)*peeringHourlyRate*hoursPerMonth
	}

	// Spoke cost is the stored compute cost plus egress, charged per GB
	spokeCost := 0.0
	for _, s := range spokes {
		spokeCost += s.MonthlyCost + s.DataTransferTB*1000*egressRatePerGB
	}

	dataTransfer := 0.0
	for _, s := range spokes {
		dataTransfer += s.DataTransferTB
	}
	activeHubs := 0
	for _, h := range hubs {
		if h.Status == "active" {
			activeHubs++
		}
	}
	dataTransfer += float64(activeHubs) * hubTransferOverhead

	activeSpokes := 0
	for _, s := range spokes {
		if s.Status == "active" {
			activeSpokes++
		}
	}
	activeConnections := activeSpokes + activeHubs

	// Typical Azure intra-region latency band
	networkLatency := 12 + rng.Float64()*8

	resourceHealth := "Healthy"
	if securityCompliance < 80 {
		resourceHealth = "Warning"
	}
	if securityCompliance < 60 {
		resourceHealth = "Critical"
	}
	if activeConnections == 0 {
		resourceHealth = "Degraded"
	}

	return DashboardMetrics{
		TotalSpokes:        totalSpokes,
		SecurityCompliance: round1(securityCompliance),
		MonthlyCost:        round2(hubCost + spokeCost),
		DataTransfer:       round2(dataTransfer),
		ActiveConnections:  activeConnections,
		NetworkLatency:     round1(networkLatency),
		ResourceHealth:     resourceHealth,
		LastUpdated:        now,
	}
}
