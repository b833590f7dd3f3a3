package model

import (
	"time"
)

// NetworkMetric is one recorded sample for a hub or spoke network.
type NetworkMetric struct {
	ID          int       `json:"id"`
	NetworkID   int       `json:"networkId"`
	NetworkType string    `json:"networkType"`
	MetricType  string    `json:"metricType"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Timestamp   time.Time `json:"timestamp"`
}

func (m *NetworkMetric) Validate() error {
	var errs ValidationErrors
	if m.NetworkID <= 0 {
		errs.add("networkId", "is required")
	}
	errs.required("networkType", m.NetworkType)
	errs.required("metricType", m.MetricType)
	errs.required("unit", m.Unit)
	return errs.orNil()
}
