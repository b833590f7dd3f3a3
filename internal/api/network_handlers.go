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

func (h *Handler) listHubNetworks(w http.ResponseWriter, r *http.Request) {
	filter := &storage.HubNetworkFilter{}
	if v := r.URL.Query().Get("subscriptionId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid subscription ID")
			return
		}
		filter.SubscriptionID = id
	}

	hubs, err := h.store.ListHubNetworks(filter)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hubs)
}

func (h *Handler) getHubNetwork(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid hub network ID")
		return
	}

	hub, err := h.store.GetHubNetwork(id)
	if err != nil {
		if errors.Is(err, storage.ErrHubNetworkNotFound) {
			h.writeError(w, http.StatusNotFound, "Hub network not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hub)
}

func (h *Handler) createHubNetwork(w http.ResponseWriter, r *http.Request) {
	var hub model.HubNetwork
	if err := json.NewDecoder(r.Body).Decode(&hub); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hub.ApplyDefaults()
	if err := hub.Validate(); err != nil {
		h.invalidData(w, err)
		return
	}

	if err := h.store.CreateHubNetwork(&hub); err != nil {
		h.internalError(w, err)
		return
	}

	h.recordActivity("hub_network_created", hub.Name, "hub_network", "success",
		fmt.Sprintf("Hub network %s deployed in %s", hub.Name, hub.Location))

	h.writeJSON(w, http.StatusCreated, hub)
}

func (h *Handler) listSpokeNetworks(w http.ResponseWriter, r *http.Request) {
	filter := &storage.SpokeNetworkFilter{}
	if v := r.URL.Query().Get("hubNetworkId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid hub network ID")
			return
		}
		filter.HubNetworkID = id
	}

	spokes, err := h.store.ListSpokeNetworks(filter)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, spokes)
}

func (h *Handler) getSpokeNetwork(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid spoke network ID")
		return
	}

	spoke, err := h.store.GetSpokeNetwork(id)
	if err != nil {
		if errors.Is(err, storage.ErrSpokeNetworkNotFound) {
			h.writeError(w, http.StatusNotFound, "Spoke network not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, spoke)
}

func (h *Handler) createSpokeNetwork(w http.ResponseWriter, r *http.Request) {
	var spoke model.SpokeNetwork
	if err := json.NewDecoder(r.Body).Decode(&spoke); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	spoke.ApplyDefaults()
	if err := spoke.Validate(); err != nil {
		h.invalidData(w, err)
		return
	}

	if err := h.store.CreateSpokeNetwork(&spoke); err != nil {
		h.internalError(w, err)
		return
	}

	h.recordActivity("spoke_network_created", spoke.Name, "spoke_network", "success",
		fmt.Sprintf("Spoke network %s provisioned for %s environment", spoke.Name, spoke.Environment))

	h.writeJSON(w, http.StatusCreated, spoke)
}

func (h *Handler) updateSpokeNetwork(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid spoke network ID")
		return
	}

	var upd model.SpokeNetworkUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := upd.Validate(); err != nil {
		h.invalidData(w, err)
		return
	}

	spoke, err := h.store.UpdateSpokeNetwork(id, &upd)
	if err != nil {
		if errors.Is(err, storage.ErrSpokeNetworkNotFound) {
			h.writeError(w, http.StatusNotFound, "Spoke network not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, spoke)
}
