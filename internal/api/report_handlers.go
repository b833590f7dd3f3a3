package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hubspoke/hubd/internal/model"
	"github.com/hubspoke/hubd/internal/storage"
)

func (h *Handler) listNetworkMetrics(w http.ResponseWriter, r *http.Request) {
	networkID, err := pathID(r, "networkId")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid network ID")
		return
	}

	filter := &storage.MetricFilter{
		NetworkID:  networkID,
		MetricType: r.URL.Query().Get("metricType"),
	}
	metrics, err := h.store.ListNetworkMetrics(filter)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, metrics)
}

func (h *Handler) listComplianceReports(w http.ResponseWriter, r *http.Request) {
	networkID := 0
	if v := r.URL.Query().Get("networkId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid network ID")
			return
		}
		networkID = id
	}

	reports, err := h.store.ListComplianceReports(networkID)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) createComplianceReport(w http.ResponseWriter, r *http.Request) {
	var report model.ComplianceReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := report.Validate(); err != nil {
		h.invalidData(w, err)
		return
	}

	if err := h.store.CreateComplianceReport(&report); err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, report)
}

// downloadComplianceReport serves the report as a JSON attachment.
func (h *Handler) downloadComplianceReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid report ID")
		return
	}

	report, err := h.store.GetComplianceReport(id)
	if err != nil {
		if errors.Is(err, storage.ErrReportNotFound) {
			h.writeError(w, http.StatusNotFound, "Compliance report not found")
			return
		}
		h.internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("compliance-report-%d.json", report.ID)))
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reportId":    report.ID,
		"networkId":   report.NetworkID,
		"reportType":  report.ReportType,
		"status":      report.Status,
		"score":       report.Score,
		"findings":    report.Findings,
		"generatedAt": report.GeneratedAt,
		"generatedBy": report.GeneratedBy,
	})
}
