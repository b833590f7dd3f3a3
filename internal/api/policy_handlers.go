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

func (h *Handler) listSecurityPolicies(w http.ResponseWriter, r *http.Request) {
	filter := &storage.PolicyFilter{
		NetworkType: r.URL.Query().Get("networkType"),
	}
	if v := r.URL.Query().Get("networkId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid network ID")
			return
		}
		filter.NetworkID = id
	}

	policies, err := h.store.ListSecurityPolicies(filter)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, policies)
}

func (h *Handler) createSecurityPolicy(w http.ResponseWriter, r *http.Request) {
	var policy model.SecurityPolicy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := policy.Validate(); err != nil {
		h.invalidData(w, err)
		return
	}

	if err := h.store.CreateSecurityPolicy(&policy); err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, policy)
}

func (h *Handler) updateSecurityPolicy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	var upd model.SecurityPolicyUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	policy, err := h.store.UpdateSecurityPolicy(id, &upd)
	if err != nil {
		if errors.Is(err, storage.ErrPolicyNotFound) {
			h.writeError(w, http.StatusNotFound, "Security policy not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, policy)
}

// enforceSecurityPolicy activates the policy and records the enforcement
// in the activity feed.
func (h *Handler) enforceSecurityPolicy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	active := true
	policy, err := h.store.UpdateSecurityPolicy(id, &model.SecurityPolicyUpdate{IsActive: &active})
	if err != nil {
		if errors.Is(err, storage.ErrPolicyNotFound) {
			h.writeError(w, http.StatusNotFound, "Security policy not found")
			return
		}
		h.internalError(w, err)
		return
	}

	h.recordActivity("policy_enforced", policy.Name, "security_policy", "success",
		fmt.Sprintf("Security policy %s enforced across %s network", policy.Name, policy.NetworkType))

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Policy enforced successfully",
		"policy":  policy,
	})
}
