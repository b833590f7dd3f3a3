package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ComplianceReport is a stored audit result for a network.
type ComplianceReport struct {
	ID          int       `json:"id"`
	NetworkID   int       `json:"networkId"`
	ReportType  string    `json:"reportType"`
	Status      string    `json:"status"`
	Score       float64   `json:"score"`
	Findings    []Finding `json:"findings"`
	GeneratedAt time.Time `json:"generatedAt"`
	GeneratedBy string    `json:"generatedBy"`
}

func (r *ComplianceReport) Validate() error {
	var errs ValidationErrors
	if r.NetworkID <= 0 {
		errs.add("networkId", "is required")
	}
	errs.required("reportType", r.ReportType)
	errs.required("status", r.Status)
	errs.required("generatedBy", r.GeneratedBy)
	if r.Score < 0 || r.Score > 100 {
		errs.add("score", "must be between 0 and 100")
	}
	for i, finding := range r.Findings {
		if finding.Extra == nil {
			continue
		}
		for _, key := range []string{"category", "status", "description"} {
			if s, ok := finding.Extra[key].(string); !ok || s == "" {
				errs.add(fmt.Sprintf("findings[%d]", i), "object findings must carry "+key)
			}
		}
	}
	return errs.orNil()
}

// Finding is one entry of a report's findings list, either a bare string
// or a structured object.
type Finding struct {
	Text  string
	Extra map[string]any
}

func (f *Finding) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.Text = s
		f.Extra = nil
		return nil
	}
	f.Text = ""
	return json.Unmarshal(b, &f.Extra)
}

func (f Finding) MarshalJSON() ([]byte, error) {
	if f.Extra != nil {
		return json.Marshal(f.Extra)
	}
	return json.Marshal(f.Text)
}
