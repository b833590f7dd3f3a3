package derive

import (
	"time"
)

// ResourceSpec names one Azure resource in a cost estimation request.
type ResourceSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CostLine is the per-resource entry of an estimate's breakdown.
type CostLine struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	MonthlyCost float64 `json:"monthlyCost"`
}

// CostEstimate is the response of a cost estimation request.
type CostEstimate struct {
	TotalMonthlyCost float64    `json:"totalMonthlyCost"`
	Breakdown        []CostLine `json:"breakdown"`
	Currency         string     `json:"currency"`
	Region           string     `json:"region"`
	EstimatedAt      time.Time  `json:"estimatedAt"`
}

// Flat monthly prices, East US region. Unknown types estimate as free.
var monthlyPrices = map[string]float64{
	"VirtualNetwork":        0,
	"NetworkSecurityGroup":  0,
	"VirtualNetworkGateway": 142.56,
	"PublicIPAddress":       3.65,
	"LoadBalancer":          18.25,
}

// EstimateCost prices a list of resources against the flat rate table.
func EstimateCost(resources []ResourceSpec, now time.Time) CostEstimate {
	total := 0.0
	breakdown := make([]CostLine, 0, len(resources))

	for _, r := range resources {
		cost := monthlyPrices[r.Type]
		total += cost
		breakdown = append(breakdown, CostLine{
			Name:        r.Name,
			Type:        r.Type,
			MonthlyCost: cost,
		})
	}

	return CostEstimate{
		TotalMonthlyCost: round2(total),
		Breakdown:        breakdown,
		Currency:         "USD",
		Region:           "East US",
		EstimatedAt:      now,
	}
}
