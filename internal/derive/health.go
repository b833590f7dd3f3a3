package derive

import (
	"fmt"
	"time"

	"github.com/hubspoke/hubd/internal/model"
)

// HealthIssue is one finding of the health assessment.
type HealthIssue struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// HealthAssessment is the result of a full rule scan over the estate.
type HealthAssessment struct {
	OverallHealth string        `json:"overallHealth"`
	Issues        []HealthIssue `json:"issues"`
	Score         int           `json:"score"`
}

const (
	healthPenaltyPerIssue = 12
	policyReviewWindow    = 30 * 24 * time.Hour
)

// Assess runs the health rules against a snapshot plus a live metrics
// sample. Rules are independent; each contributes at most one issue.
func Assess(spokes []model.SpokeNetwork, policies []model.SecurityPolicy, live LiveMetrics, now time.Time) HealthAssessment {
	var issues []HealthIssue

	inactiveSpokes := 0
	for _, s := range spokes {
		if s.Status != "active" {
			inactiveSpokes++
		}
	}
	if inactiveSpokes > 0 {
		issues = append(issues, HealthIssue{
			Severity:       "High",
			Category:       "Security",
			Description:    fmt.Sprintf("%d spoke network(s) are inactive and may pose security risks", inactiveSpokes),
			Recommendation: "Immediately review inactive spoke networks. Disable unused networks or implement proper monitoring and access controls.",
		})
	}

	nonCompliantSpokes := 0
	for _, s := range spokes {
		if s.ComplianceStatus != "compliant" {
			nonCompliantSpokes++
		}
	}
	if nonCompliantSpokes > 0 {
		issues = append(issues, HealthIssue{
			Severity:       "High",
			Category:       "Compliance",
			Description:    fmt.Sprintf("%d spoke network(s) are not meeting compliance requirements (ISO 27001, PCI-DSS, SOC 2)", nonCompliantSpokes),
			Recommendation: "Update Network Security Groups (NSGs), implement Azure Policy compliance rules, and ensure all spoke networks have proper encryption and access controls.",
		})
	}

	if live.Latency > 20 {
		issues = append(issues, HealthIssue{
			Severity:       "Medium",
			Category:       "Performance",
			Description:    fmt.Sprintf("Network latency is %.1fms, exceeding optimal threshold of 20ms", live.Latency),
			Recommendation: "Deploy Azure Front Door or CDN services, optimize ExpressRoute connections, and consider placing resources closer to users in additional Azure regions.",
		})
	}

	if live.BandwidthUtilization > 80 {
		issues = append(issues, HealthIssue{
			Severity:       "Medium",
			Category:       "Performance",
			Description:    fmt.Sprintf("Network bandwidth utilization is at %.1f%%, approaching capacity limits", live.BandwidthUtilization),
			Recommendation: "Scale up ExpressRoute circuits, implement traffic shaping policies, or consider load balancing across multiple connections.",
		})
	}

	totalCost := 0.0
	for _, s := range spokes {
		totalCost += s.MonthlyCost
	}
	if totalCost > 1000 {
		issues = append(issues, HealthIssue{
			Severity:       "Medium",
			Category:       "Cost",
			Description:    fmt.Sprintf("Monthly Azure costs are $%.2f, exceeding budget threshold of $1,000", totalCost),
			Recommendation: "Implement Azure Cost Management policies, use Reserved Instances for predictable workloads, and configure auto-scaling to optimize resource usage.",
		})
	}

	outdatedPolicies := 0
	for _, p := range policies {
		if p.LastModified.Before(now.Add(-policyReviewWindow)) {
			outdatedPolicies++
		}
	}
	if outdatedPolicies > 0 {
		issues = append(issues, HealthIssue{
			Severity:       "Low",
			Category:       "Security",
			Description:    fmt.Sprintf("%d security policies haven't been reviewed in the last 30 days", outdatedPolicies),
			Recommendation: "Establish a regular security policy review cycle. Update NSG rules, firewall policies, and access controls to reflect current threat landscape.",
		})
	}

	if live.CPUUtilization > 85 {
		issues = append(issues, HealthIssue{
			Severity:       "Medium",
			Category:       "Performance",
			Description:    fmt.Sprintf("CPU utilization is at %.1f%%, indicating potential resource constraints", live.CPUUtilization),
			Recommendation: "Scale up virtual machines, implement auto-scaling rules, or migrate to higher-tier service plans to ensure optimal performance.",
		})
	}

	totalDataTransfer := 0.0
	for _, s := range spokes {
		totalDataTransfer += s.DataTransferTB
	}
	if totalDataTransfer > 10 {
		issues = append(issues, HealthIssue{
			Severity:       "Low",
			Category:       "Cost",
			Description:    fmt.Sprintf("Data transfer volume is %.2f TB this month, which may incur significant egress costs", totalDataTransfer),
			Recommendation: "Implement Azure CDN for static content, optimize data transfer patterns, and consider data archiving strategies for infrequently accessed data.",
		})
	}

	score := 100 - len(issues)*healthPenaltyPerIssue
	if score < 0 {
		score = 0
	}

	overallHealth := "Healthy"
	switch {
	case score < 50:
		overallHealth = "Critical"
	case score < 70:
		overallHealth = "Warning"
	default:
		for _, issue := range issues {
			if issue.Severity == "High" {
				overallHealth = "Degraded"
				break
			}
		}
	}

	if issues == nil {
		issues = []HealthIssue{}
	}
	return HealthAssessment{
		OverallHealth: overallHealth,
		Issues:        issues,
		Score:         score,
	}
}
