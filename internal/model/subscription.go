package model

import (
	"encoding/json"
	"time"
)

// Subscription represents an Azure subscription tracked by the dashboard.
type Subscription struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	SubscriptionID string    `json:"subscriptionId"`
	Region         string    `json:"region"`
	ResourceGroup  string    `json:"resourceGroup"`
	Status         string    `json:"status"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UnmarshalJSON defaults isActive to true when the key is absent. An
// explicit false is kept.
func (s *Subscription) UnmarshalJSON(b []byte) error {
	type subscription Subscription
	aux := struct {
		IsActive *bool `json:"isActive"`
		*subscription
	}{subscription: (*subscription)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}

// ApplyDefaults fills the columns that carry defaults when left empty.
func (s *Subscription) ApplyDefaults() {
	if s.Region == "" {
		s.Region = "East US"
	}
	if s.ResourceGroup == "" {
		s.ResourceGroup = "default-rg"
	}
	if s.Status == "" {
		s.Status = "active"
	}
}

// Validate checks the fields a caller must supply.
func (s *Subscription) Validate() error {
	var errs ValidationErrors
	errs.required("name", s.Name)
	errs.required("subscriptionId", s.SubscriptionID)
	return errs.orNil()
}
