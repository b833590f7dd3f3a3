package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hubspoke/hubd/internal/model"
)

const defaultActivityLimit = 50

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	activities, err := h.store.ListActivities(limit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, activities)
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	var activity model.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := activity.Validate(); err != nil {
		h.invalidData(w, err)
		return
	}

	if err := h.store.CreateActivity(&activity); err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, activity)
}
