package model

import (
	"math"
	"time"
)

// HubNetwork is a hub virtual network owned by a subscription.
type HubNetwork struct {
	ID                int       `json:"id"`
	SubscriptionID    int       `json:"subscriptionId"`
	Name              string    `json:"name"`
	AddressSpace      string    `json:"addressSpace"`
	Location          string    `json:"location"`
	ResourceGroupName string    `json:"resourceGroupName"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (h *HubNetwork) ApplyDefaults() {
	if h.Status == "" {
		h.Status = "active"
	}
}

func (h *HubNetwork) Validate() error {
	var errs ValidationErrors
	if h.SubscriptionID <= 0 {
		errs.add("subscriptionId", "is required")
	}
	errs.required("name", h.Name)
	errs.required("addressSpace", h.AddressSpace)
	errs.required("location", h.Location)
	errs.required("resourceGroupName", h.ResourceGroupName)
	return errs.orNil()
}

// SpokeNetwork is a spoke virtual network peered to a hub. The hub
// reference is a soft link, it is never enforced against the hub table.
type SpokeNetwork struct {
	ID                int       `json:"id"`
	HubNetworkID      int       `json:"hubNetworkId"`
	Name              string    `json:"name"`
	AddressSpace      string    `json:"addressSpace"`
	Environment       string    `json:"environment"`
	ResourceGroupName string    `json:"resourceGroupName"`
	Status            string    `json:"status"`
	ComplianceStatus  string    `json:"complianceStatus"`
	MonthlyCost       float64   `json:"monthlyCost"`
	DataTransferTB    float64   `json:"dataTransferTB"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (s *SpokeNetwork) ApplyDefaults() {
	if s.Status == "" {
		s.Status = "active"
	}
	if s.ComplianceStatus == "" {
		s.ComplianceStatus = "compliant"
	}
	s.MonthlyCost = Round2(s.MonthlyCost)
	s.DataTransferTB = Round3(s.DataTransferTB)
}

func (s *SpokeNetwork) Validate() error {
	var errs ValidationErrors
	if s.HubNetworkID <= 0 {
		errs.add("hubNetworkId", "is required")
	}
	errs.required("name", s.Name)
	errs.required("addressSpace", s.AddressSpace)
	errs.required("environment", s.Environment)
	errs.required("resourceGroupName", s.ResourceGroupName)
	if s.MonthlyCost < 0 {
		errs.add("monthlyCost", "must not be negative")
	}
	if s.DataTransferTB < 0 {
		errs.add("dataTransferTB", "must not be negative")
	}
	return errs.orNil()
}

// SpokeNetworkUpdate carries a partial update. Nil fields are left as-is.
type SpokeNetworkUpdate struct {
	Name              *string  `json:"name"`
	AddressSpace      *string  `json:"addressSpace"`
	Environment       *string  `json:"environment"`
	ResourceGroupName *string  `json:"resourceGroupName"`
	Status            *string  `json:"status"`
	ComplianceStatus  *string  `json:"complianceStatus"`
	MonthlyCost       *float64 `json:"monthlyCost"`
	DataTransferTB    *float64 `json:"dataTransferTB"`
}

func (u *SpokeNetworkUpdate) Validate() error {
	var errs ValidationErrors
	if u.MonthlyCost != nil && *u.MonthlyCost < 0 {
		errs.add("monthlyCost", "must not be negative")
	}
	if u.DataTransferTB != nil && *u.DataTransferTB < 0 {
		errs.add("dataTransferTB", "must not be negative")
	}
	return errs.orNil()
}

// Apply copies the set fields onto the spoke and rounds money columns
// to their stored scale.
func (u *SpokeNetworkUpdate) Apply(s *SpokeNetwork) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.AddressSpace != nil {
		s.AddressSpace = *u.AddressSpace
	}
	if u.Environment != nil {
		s.Environment = *u.Environment
	}
	if u.ResourceGroupName != nil {
		s.ResourceGroupName = *u.ResourceGroupName
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.ComplianceStatus != nil {
		s.ComplianceStatus = *u.ComplianceStatus
	}
	if u.MonthlyCost != nil {
		s.MonthlyCost = Round2(*u.MonthlyCost)
	}
	if u.DataTransferTB != nil {
		s.DataTransferTB = Round3(*u.DataTransferTB)
	}
}

// Round2 rounds to two decimal places, the scale of money columns.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to three decimal places, the scale of data volume columns.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
