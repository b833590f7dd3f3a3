package api

import (
	"encoding/json"
	"net/http"

	"github.com/hubspoke/hubd/internal/derive"
	"github.com/hubspoke/hubd/internal/model"
)

// estate is the snapshot the derived views are computed from.
type estate struct {
	hubs     []model.HubNetwork
	spokes   []model.SpokeNetwork
	policies []model.SecurityPolicy
}

func (h *Handler) loadEstate() (*estate, error) {
	hubs, err := h.store.ListHubNetworks(nil)
	if err != nil {
		return nil, err
	}
	spokes, err := h.store.ListSpokeNetworks(nil)
	if err != nil {
		return nil, err
	}
	policies, err := h.store.ListSecurityPolicies(nil)
	if err != nil {
		return nil, err
	}
	return &estate{hubs: hubs, spokes: spokes, policies: policies}, nil
}

func (e *estate) activeCounts() (activeSpokes, activeHubs, activePolicies int) {
	for _, s := range e.spokes {
		if s.Status == "active" {
			activeSpokes++
		}
	}
	for _, hub := range e.hubs {
		if hub.Status == "active" {
			activeHubs++
		}
	}
	for _, p := range e.policies {
		if p.IsActive {
			activePolicies++
		}
	}
	return
}

func (h *Handler) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	est, err := h.loadEstate()
	if err != nil {
		h.internalError(w, err)
		return
	}
	metrics := derive.Dashboard(est.hubs, est.spokes, est.policies, h.rng, h.now())
	h.writeJSON(w, http.StatusOK, metrics)
}

func (h *Handler) liveNetworkMetrics(w http.ResponseWriter, r *http.Request) {
	est, err := h.loadEstate()
	if err != nil {
		h.internalError(w, err)
		return
	}
	activeSpokes, activeHubs, activePolicies := est.activeCounts()
	live := derive.Live(activeSpokes, activeHubs, activePolicies, len(est.policies), h.rng, h.now())
	h.writeJSON(w, http.StatusOK, live)
}

func (h *Handler) networkHealth(w http.ResponseWriter, r *http.Request) {
	est, err := h.loadEstate()
	if err != nil {
		h.internalError(w, err)
		return
	}
	activeSpokes, activeHubs, activePolicies := est.activeCounts()
	live := derive.Live(activeSpokes, activeHubs, activePolicies, len(est.policies), h.rng, h.now())
	assessment := derive.Assess(est.spokes, est.policies, live, h.now())
	h.writeJSON(w, http.StatusOK, assessment)
}

// topologyConnection is one peering edge of the topology view.
type topologyConnection struct {
	From      int     `json:"from"`
	To        int     `json:"to"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Bandwidth string  `json:"bandwidth"`
	Latency   float64 `json:"latency"`
}

func (h *Handler) networkTopology(w http.ResponseWriter, r *http.Request) {
	est, err := h.loadEstate()
	if err != nil {
		h.internalError(w, err)
		return
	}

	connections := make([]topologyConnection, 0, len(est.spokes))
	for _, spoke := range est.spokes {
		connections = append(connections, topologyConnection{
			From:      spoke.HubNetworkID,
			To:        spoke.ID,
			Type:      "peering",
			Status:    "active",
			Bandwidth: "1 Gbps",
			Latency:   h.rng.Float64()*20 + 5,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"hubs":        est.hubs,
		"spokes":      est.spokes,
		"connections": connections,
	})
}

func (h *Handler) generateTemplate(w http.ResponseWriter, r *http.Request) {
	var params derive.SpokeParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs model.ValidationErrors
	if params.Name == "" {
		errs = append(errs, model.FieldError{Field: "name", Message: "is required"})
	}
	if params.AddressSpace == "" {
		errs = append(errs, model.FieldError{Field: "addressSpace", Message: "is required"})
	}
	if params.Environment == "" {
		errs = append(errs, model.FieldError{Field: "environment", Message: "is required"})
	}
	if len(errs) > 0 {
		h.invalidData(w, errs)
		return
	}

	template := derive.GenerateTemplate(params, h.now())
	h.writeJSON(w, http.StatusOK, template)
}

func (h *Handler) validateTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Template map[string]any `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Template == nil {
		h.invalidData(w, model.ValidationErrors{{Field: "template", Message: "is required"}})
		return
	}

	result := derive.ValidateTemplate(body.Template)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) estimateCost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Resources []derive.ResourceSpec `json:"resources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Resources == nil {
		h.invalidData(w, model.ValidationErrors{{Field: "resources", Message: "is required"}})
		return
	}

	estimate := derive.EstimateCost(body.Resources, h.now())
	h.writeJSON(w, http.StatusOK, estimate)
}
