package storage

import (
	"fmt"

	"github.com/hubspoke/hubd/internal/model"
)

// SeedDemo loads the demo estate: two subscriptions, one hub with four
// spokes, four security policies and a handful of activities. Intended for
// fresh stores; it does not check for existing records.
func SeedDemo(store Store) error {
	prodSub := &model.Subscription{
		Name:           "Production Subscription",
		SubscriptionID: "12345678-1234-5678-9012-123456789012",
		IsActive:       true,
	}
	if err := store.CreateSubscription(prodSub); err != nil {
		return fmt.Errorf("seeding subscription: %w", err)
	}

	devSub := &model.Subscription{
		Name:           "Development Subscription",
		SubscriptionID: "87654321-4321-8765-2109-876543210987",
		IsActive:       true,
	}
	if err := store.CreateSubscription(devSub); err != nil {
		return fmt.Errorf("seeding subscription: %w", err)
	}

	hub := &model.HubNetwork{
		SubscriptionID:    prodSub.ID,
		Name:              "hub-vnet-east",
		AddressSpace:      "10.0.0.0/16",
		Location:          "East US",
		ResourceGroupName: "rg-network-hub",
		Status:            "active",
	}
	if err := store.CreateHubNetwork(hub); err != nil {
		return fmt.Errorf("seeding hub network: %w", err)
	}

	spokes := []*model.SpokeNetwork{
		{
			HubNetworkID:      hub.ID,
			Name:              "spoke-production-east",
			AddressSpace:      "10.1.0.0/24",
			Environment:       "production",
			ResourceGroupName: "rg-spoke-production",
			MonthlyCost:       2847.50,
			DataTransferTB:    0.845,
		},
		{
			HubNetworkID:      hub.ID,
			Name:              "spoke-development-east",
			AddressSpace:      "10.2.0.0/24",
			Environment:       "development",
			ResourceGroupName: "rg-spoke-development",
			MonthlyCost:       1245.75,
			DataTransferTB:    0.234,
		},
		{
			HubNetworkID:      hub.ID,
			Name:              "spoke-staging-east",
			AddressSpace:      "10.3.0.0/24",
			Environment:       "staging",
			ResourceGroupName: "rg-spoke-staging",
			MonthlyCost:       875.25,
			DataTransferTB:    0.156,
		},
		{
			HubNetworkID:      hub.ID,
			Name:              "spoke-security-east",
			AddressSpace:      "10.4.0.0/24",
			Environment:       "security",
			ResourceGroupName: "rg-spoke-security",
			MonthlyCost:       3245.80,
			DataTransferTB:    1.245,
		},
	}
	for _, spoke := range spokes {
		if err := store.CreateSpokeNetwork(spoke); err != nil {
			return fmt.Errorf("seeding spoke network: %w", err)
		}
	}

	policies := []*model.SecurityPolicy{
		{
			NetworkID:   hub.ID,
			NetworkType: "hub",
			Name:        "Hub-Firewall-Policy",
			Description: "Main firewall policy for hub network with Azure Firewall rules",
			PolicyType:  "firewall",
			Rules: ruleList(
				"Allow HTTPS inbound from Internet to VNet on port 443",
				"Allow SSH from management subnet on port 22",
				"Deny RDP from Internet on port 3389",
				"Allow HTTP internal traffic on port 80",
			),
			IsActive:   true,
			ModifiedBy: "system@azure.com",
		},
		{
			NetworkID:   spokes[0].ID,
			NetworkType: "spoke",
			Name:        "Production-NSG-Policy",
			Description: "Network Security Group rules for production spoke network",
			PolicyType:  "nsg",
			Rules: ruleList(
				"Allow VNet traffic inbound",
				"Allow Azure Load Balancer inbound",
				"Deny all other inbound traffic",
				"Custom database access from app tier",
			),
			IsActive:   true,
			ModifiedBy: "admin@company.com",
		},
		{
			NetworkID:   spokes[1].ID,
			NetworkType: "spoke",
			Name:        "Development-Security-Policy",
			Description: "Relaxed security policy for development environment",
			PolicyType:  "nsg",
			Rules: ruleList(
				"Allow development team SSH access",
				"Allow HTTP/HTTPS for testing",
				"Block production database access",
			),
			IsActive:   true,
			ModifiedBy: "dev-team@company.com",
		},
		{
			NetworkID:   hub.ID,
			NetworkType: "hub",
			Name:        "DDoS-Protection-Policy",
			Description: "DDoS protection and mitigation policy",
			PolicyType:  "ddos",
			Rules: ruleList(
				"Enable DDoS Protection Standard",
				"Configure attack mitigation thresholds",
				"Set up alerting and monitoring",
			),
			IsActive:   true,
			ModifiedBy: "security@company.com",
		},
	}
	for _, policy := range policies {
		if err := store.CreateSecurityPolicy(policy); err != nil {
			return fmt.Errorf("seeding security policy: %w", err)
		}
	}

	activities := []*model.Activity{
		{
			ActivityType: "spoke_provisioned",
			ResourceName: "spoke-production-east",
			ResourceType: "spoke_network",
			Status:       "completed",
			UserName:     "john.doe@company.com",
			Description:  "Production spoke network provisioned with high availability configuration",
		},
		{
			ActivityType: "security_policy_updated",
			ResourceName: "Hub-Firewall-Policy",
			ResourceType: "security_policy",
			Status:       "applied",
			UserName:     "sarah.smith@company.com",
			Description:  "Updated Azure Firewall policy with new application rules for web traffic",
		},
		{
			ActivityType: "compliance_check",
			ResourceName: "Production-NSG-Policy",
			ResourceType: "security_policy",
			Status:       "passed",
			UserName:     "System",
			Description:  "Automated compliance check passed for production NSG policy",
		},
		{
			ActivityType: "threat_detected",
			ResourceName: "Hub-Firewall-Policy",
			ResourceType: "security_policy",
			Status:       "mitigated",
			UserName:     "System",
			Description:  "Suspicious traffic detected and blocked by firewall policy",
		},
		{
			ActivityType: "policy_violation",
			ResourceName: "spoke-development-east",
			ResourceType: "spoke_network",
			Status:       "attention_required",
			UserName:     "System",
			Description:  "RDP access detected from internet - policy violation in development spoke",
		},
	}
	for _, activity := range activities {
		if err := store.CreateActivity(activity); err != nil {
			return fmt.Errorf("seeding activity: %w", err)
		}
	}

	return nil
}

func ruleList(texts ...string) []model.PolicyRule {
	rules := make([]model.PolicyRule, len(texts))
	for i, text := range texts {
		rules[i] = model.PolicyRule{Text: text}
	}
	return rules
}
