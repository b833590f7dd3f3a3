package derive

import (
	"fmt"
	"time"
)

const templateSchema = "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#"

// SpokeParams are the caller-supplied values baked into a generated template.
type SpokeParams struct {
	Name         string `json:"name"`
	AddressSpace string `json:"addressSpace"`
	Environment  string `json:"environment"`
}

// Template is an ARM deployment template. Resource order matters to Azure:
// the NSG comes first, the VNet depends on it, the peering depends on the VNet.
type Template struct {
	Schema         string                       `json:"$schema"`
	ContentVersion string                       `json:"contentVersion"`
	Metadata       TemplateMetadata             `json:"metadata"`
	Parameters     map[string]TemplateParameter `json:"parameters"`
	Variables      map[string]string            `json:"variables"`
	Resources      []TemplateResource           `json:"resources"`
	Outputs        map[string]TemplateOutput    `json:"outputs"`
}

type TemplateMetadata struct {
	Description string    `json:"description"`
	Author      string    `json:"author"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type TemplateParameter struct {
	Type          string            `json:"type"`
	DefaultValue  string            `json:"defaultValue"`
	AllowedValues []string          `json:"allowedValues,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type TemplateResource struct {
	Type       string            `json:"type"`
	APIVersion string            `json:"apiVersion"`
	Name       string            `json:"name"`
	Location   string            `json:"location,omitempty"`
	DependsOn  []string          `json:"dependsOn,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Properties map[string]any    `json:"properties"`
}

type TemplateOutput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// GenerateTemplate builds the deployment template for a spoke network:
// an NSG with baseline ingress rules, the VNet with one subnet guarded by
// that NSG, and a peering back to the hub.
func GenerateTemplate(spoke SpokeParams, now time.Time) Template {
	commonTags := map[string]string{
		"Environment": "[parameters('environment')]",
		"Project":     "Hub-Spoke-Network",
	}

	return Template{
		Schema:         templateSchema,
		ContentVersion: "1.0.0.0",
		Metadata: TemplateMetadata{
			Description: fmt.Sprintf("ARM Template for %s spoke network", spoke.Name),
			Author:      "Azure Hub-Spoke Management Platform",
			GeneratedAt: now,
		},
		Parameters: map[string]TemplateParameter{
			"spokeNetworkName": {
				Type:         "string",
				DefaultValue: spoke.Name,
				Metadata:     map[string]string{"description": "Name of the spoke virtual network"},
			},
			"addressSpace": {
				Type:         "string",
				DefaultValue: spoke.AddressSpace,
				Metadata:     map[string]string{"description": "Address space for the spoke network"},
			},
			"environment": {
				Type:          "string",
				DefaultValue:  spoke.Environment,
				AllowedValues: []string{"development", "staging", "production", "security"},
				Metadata:      map[string]string{"description": "Environment type for resource tagging"},
			},
			"location": {
				Type:         "string",
				DefaultValue: "[resourceGroup().location]",
				Metadata:     map[string]string{"description": "Location for all resources"},
			},
		},
		Variables: map[string]string{
			"hubNetworkId":     "/subscriptions/[subscription-id]/resourceGroups/hub-rg/providers/Microsoft.Network/virtualNetworks/hub-vnet",
			"spokeNetworkName": "[parameters('spokeNetworkName')]",
			"subnetName":       "[concat(parameters('spokeNetworkName'), '-subnet')]",
			"nsgName":          "[concat(parameters('spokeNetworkName'), '-nsg')]",
			"peeringName":      "[concat(parameters('spokeNetworkName'), '-to-hub')]",
		},
		Resources: []TemplateResource{
			{
				Type:       "Microsoft.Network/networkSecurityGroups",
				APIVersion: "2023-04-01",
				Name:       "[variables('nsgName')]",
				Location:   "[parameters('location')]",
				Tags:       commonTags,
				Properties: map[string]any{
					"securityRules": []map[string]any{
						{
							"name": "AllowHTTPS",
							"properties": map[string]any{
								"protocol":                 "Tcp",
								"sourcePortRange":          "*",
								"destinationPortRange":     "443",
								"sourceAddressPrefix":      "*",
								"destinationAddressPrefix": "*",
								"access":                   "Allow",
								"priority":                 1000,
								"direction":                "Inbound",
							},
						},
						{
							"name": "AllowSSH",
							"properties": map[string]any{
								"protocol":                 "Tcp",
								"sourcePortRange":          "*",
								"destinationPortRange":     "22",
								"sourceAddressPrefix":      "10.0.0.0/8",
								"destinationAddressPrefix": "*",
								"access":                   "Allow",
								"priority":                 1100,
								"direction":                "Inbound",
							},
						},
					},
				},
			},
			{
				Type:       "Microsoft.Network/virtualNetworks",
				APIVersion: "2023-04-01",
				Name:       "[variables('spokeNetworkName')]",
				Location:   "[parameters('location')]",
				DependsOn: []string{
					"[resourceId('Microsoft.Network/networkSecurityGroups', variables('nsgName'))]",
				},
				Tags: commonTags,
				Properties: map[string]any{
					"addressSpace": map[string]any{
						"addressPrefixes": []string{"[parameters('addressSpace')]"},
					},
					"subnets": []map[string]any{
						{
							"name": "[variables('subnetName')]",
							"properties": map[string]any{
								"addressPrefix": "[parameters('addressSpace')]",
								"networkSecurityGroup": map[string]any{
									"id": "[resourceId('Microsoft.Network/networkSecurityGroups', variables('nsgName'))]",
								},
							},
						},
					},
				},
			},
			{
				Type:       "Microsoft.Network/virtualNetworks/virtualNetworkPeerings",
				APIVersion: "2023-04-01",
				Name:       "[concat(variables('spokeNetworkName'), '/', variables('peeringName'))]",
				DependsOn: []string{
					"[resourceId('Microsoft.Network/virtualNetworks', variables('spokeNetworkName'))]",
				},
				Properties: map[string]any{
					"allowVirtualNetworkAccess": true,
					"allowForwardedTraffic":     true,
					"allowGatewayTransit":       false,
					"useRemoteGateways":         false,
					"remoteVirtualNetwork": map[string]any{
						"id": "[variables('hubNetworkId')]",
					},
				},
			},
		},
		Outputs: map[string]TemplateOutput{
			"spokeNetworkId": {
				Type:  "string",
				Value: "[resourceId('Microsoft.Network/virtualNetworks', variables('spokeNetworkName'))]",
			},
			"spokeNetworkName": {
				Type:  "string",
				Value: "[variables('spokeNetworkName')]",
			},
			"addressSpace": {
				Type:  "string",
				Value: "[parameters('addressSpace')]",
			},
		},
	}
}

// ValidationResult reports structural problems and the estimated monthly
// cost of the billable resources a template declares.
type ValidationResult struct {
	IsValid       bool     `json:"isValid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	EstimatedCost float64  `json:"estimatedCost"`
}

// ValidateTemplate checks a raw template document for the properties Azure
// requires and totals the recurring cost of the resources it declares.
func ValidateTemplate(template map[string]any) ValidationResult {
	errors := []string{}
	warnings := []string{}
	estimatedCost := 0.0

	if _, ok := template["$schema"]; !ok {
		errors = append(errors, "Missing required $schema property")
	}
	if _, ok := template["contentVersion"]; !ok {
		errors = append(errors, "Template must include a contentVersion property")
	}

	resources, ok := template["resources"].([]any)
	if !ok {
		errors = append(errors, "Missing or invalid resources array")
	} else if len(resources) == 0 {
		warnings = append(warnings, "Template contains no resources")
	}

	for i, raw := range resources {
		resource, ok := raw.(map[string]any)
		if !ok {
			errors = append(errors, fmt.Sprintf("Resource %d: Missing type property", i))
			continue
		}
		if !hasString(resource, "type") {
			errors = append(errors, fmt.Sprintf("Resource %d: Missing type property", i))
		}
		if !hasString(resource, "apiVersion") {
			errors = append(errors, fmt.Sprintf("Resource %d: Missing apiVersion property", i))
		}
		if !hasString(resource, "name") {
			errors = append(errors, fmt.Sprintf("Resource %d: Missing name property", i))
		}

		switch resource["type"] {
		case "Microsoft.Network/virtualNetworks", "Microsoft.Network/networkSecurityGroups":
			// free
		case "Microsoft.Network/virtualNetworkGateways":
			estimatedCost += 142.56
			warnings = append(warnings, "VPN Gateway will incur monthly charges")
		case "Microsoft.Network/publicIPAddresses":
			estimatedCost += 3.65
		}
	}

	return ValidationResult{
		IsValid:       len(errors) == 0,
		Errors:        errors,
		Warnings:      warnings,
		EstimatedCost: round2(estimatedCost),
	}
}

func hasString(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && s != ""
}
