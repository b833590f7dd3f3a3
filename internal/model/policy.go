package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SecurityPolicy is a firewall, NSG, ddos or routing policy attached to a
// hub or spoke network. NetworkType says which table NetworkID points at.
type SecurityPolicy struct {
	ID           int          `json:"id"`
	NetworkID    int          `json:"networkId"`
	NetworkType  string       `json:"networkType"`
	PolicyType   string       `json:"policyType"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Rules        []PolicyRule `json:"rules"`
	IsActive     bool         `json:"isActive"`
	LastModified time.Time    `json:"lastModified"`
	ModifiedBy   string       `json:"modifiedBy"`
}

// UnmarshalJSON defaults isActive to true when the key is absent. An
// explicit false is kept.
func (p *SecurityPolicy) UnmarshalJSON(b []byte) error {
	type securityPolicy SecurityPolicy
	aux := struct {
		IsActive *bool `json:"isActive"`
		*securityPolicy
	}{securityPolicy: (*securityPolicy)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}

func (p *SecurityPolicy) Validate() error {
	var errs ValidationErrors
	if p.NetworkID <= 0 {
		errs.add("networkId", "is required")
	}
	errs.required("networkType", p.NetworkType)
	if p.NetworkType != "" && p.NetworkType != "hub" && p.NetworkType != "spoke" {
		errs.add("networkType", "must be hub or spoke")
	}
	errs.required("policyType", p.PolicyType)
	errs.required("name", p.Name)
	for i, rule := range p.Rules {
		if rule.Extra == nil {
			continue
		}
		if s, ok := rule.Extra["description"].(string); !ok || s == "" {
			errs.add(fmt.Sprintf("rules[%d]", i), "object rules must carry a description")
		}
	}
	return errs.orNil()
}

// SecurityPolicyUpdate carries a partial update. Nil fields are left as-is.
type SecurityPolicyUpdate struct {
	PolicyType  *string       `json:"policyType"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Rules       *[]PolicyRule `json:"rules"`
	IsActive    *bool         `json:"isActive"`
	ModifiedBy  *string       `json:"modifiedBy"`
}

func (u *SecurityPolicyUpdate) Apply(p *SecurityPolicy) {
	if u.PolicyType != nil {
		p.PolicyType = *u.PolicyType
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Rules != nil {
		p.Rules = *u.Rules
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.ModifiedBy != nil {
		p.ModifiedBy = *u.ModifiedBy
	}
}

// PolicyRule is one entry of a policy's rule list. Clients send rules either
// as bare strings or as structured objects; both round-trip unchanged.
type PolicyRule struct {
	Text  string
	Extra map[string]any
}

func (r *PolicyRule) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.Text = s
		r.Extra = nil
		return nil
	}
	r.Text = ""
	return json.Unmarshal(b, &r.Extra)
}

func (r PolicyRule) MarshalJSON() ([]byte, error) {
	if r.Extra != nil {
		return json.Marshal(r.Extra)
	}
	return json.Marshal(r.Text)
}
