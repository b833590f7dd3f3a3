package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hubspoke/hubd/internal/model"
	"github.com/hubspoke/hubd/internal/storage"
)

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListSubscriptions()
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	sub, err := h.store.GetSubscription(id)
	if err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			h.writeError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var sub model.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub.ApplyDefaults()
	if err := sub.Validate(); err != nil {
		h.invalidData(w, err)
		return
	}

	if err := h.store.CreateSubscription(&sub); err != nil {
		h.internalError(w, err)
		return
	}

	h.recordActivity("subscription_created", sub.Name, "subscription", "success",
		fmt.Sprintf("Azure subscription %s connected", sub.Name))

	h.writeJSON(w, http.StatusCreated, sub)
}

// updateSubscription acknowledges the request without changing the record.
// Subscription attributes come from Azure and are not editable here.
func (h *Handler) updateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	sub, err := h.store.GetSubscription(id)
	if err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			h.writeError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

// deleteSubscription records the removal as an activity. The record itself is
// retained so historical dashboards and reports keep resolving.
func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid subscription ID")
		return
	}

	sub, err := h.store.GetSubscription(id)
	if err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			h.writeError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.internalError(w, err)
		return
	}

	h.recordActivity("subscription_deleted", sub.Name, "subscription", "warning",
		fmt.Sprintf("Azure subscription %s removed", sub.Name))

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Subscription removed successfully"})
}
