package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hubspoke/hubd/internal/derive"
	"github.com/hubspoke/hubd/internal/log"
	"github.com/hubspoke/hubd/internal/model"
	"github.com/hubspoke/hubd/internal/storage"
)

// Handler handles HTTP requests
type Handler struct {
	store storage.Store
	rng   derive.Rand
	now   func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(s storage.Store) *Handler {
	return &Handler{
		store: s,
		rng:   newLockedRand(time.Now().UnixNano()),
		now:   time.Now,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Subscriptions
	mux.HandleFunc("GET /api/subscriptions", h.listSubscriptions)
	mux.HandleFunc("POST /api/subscriptions", h.createSubscription)
	mux.HandleFunc("GET /api/subscriptions/{id}", h.getSubscription)
	mux.HandleFunc("PATCH /api/subscriptions/{id}", h.updateSubscription)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", h.deleteSubscription)

	// Hub networks
	mux.HandleFunc("GET /api/hub-networks", h.listHubNetworks)
	mux.HandleFunc("POST /api/hub-networks", h.createHubNetwork)
	mux.HandleFunc("GET /api/hub-networks/{id}", h.getHubNetwork)

	// Spoke networks
	mux.HandleFunc("GET /api/spoke-networks", h.listSpokeNetworks)
	mux.HandleFunc("POST /api/spoke-networks", h.createSpokeNetwork)
	mux.HandleFunc("GET /api/spoke-networks/{id}", h.getSpokeNetwork)
	mux.HandleFunc("PATCH /api/spoke-networks/{id}", h.updateSpokeNetwork)

	// Security policies
	mux.HandleFunc("GET /api/security-policies", h.listSecurityPolicies)
	mux.HandleFunc("POST /api/security-policies", h.createSecurityPolicy)
	mux.HandleFunc("PATCH /api/security-policies/{id}", h.updateSecurityPolicy)
	mux.HandleFunc("POST /api/security-policies/{id}/enforce", h.enforceSecurityPolicy)

	// Activities
	mux.HandleFunc("GET /api/activities", h.listActivities)
	mux.HandleFunc("POST /api/activities", h.createActivity)

	// Derived views
	mux.HandleFunc("GET /api/dashboard/metrics", h.dashboardMetrics)
	mux.HandleFunc("GET /api/live/network-metrics", h.liveNetworkMetrics)
	mux.HandleFunc("GET /api/network/health", h.networkHealth)
	mux.HandleFunc("GET /api/network/topology", h.networkTopology)

	// ARM templates and cost estimation
	mux.HandleFunc("POST /api/arm/generate", h.generateTemplate)
	mux.HandleFunc("POST /api/arm/validate", h.validateTemplate)
	mux.HandleFunc("POST /api/cost-estimation", h.estimateCost)

	// Recorded metrics and compliance reports
	mux.HandleFunc("GET /api/network-metrics/{networkId}", h.listNetworkMetrics)
	mux.HandleFunc("GET /api/compliance-reports", h.listComplianceReports)
	mux.HandleFunc("POST /api/compliance-reports", h.createComplianceReport)
	mux.HandleFunc("GET /api/compliance-reports/{id}/download", h.downloadComplianceReport)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}

// invalidData writes a 400 carrying the field errors of a failed validation.
func (h *Handler) invalidData(w http.ResponseWriter, err error) {
	var errs model.ValidationErrors
	if !errors.As(err, &errs) {
		errs = model.ValidationErrors{{Field: "", Message: err.Error()}}
	}
	h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": "Invalid data",
		"errors":  errs,
	})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("Internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// pathID parses an integer path segment, 0 and an error when malformed.
func pathID(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.PathValue(name))
}

// recordActivity appends an audit entry; failures are logged, not surfaced,
// so a broken audit trail never fails the mutation it describes.
func (h *Handler) recordActivity(activityType, resourceName, resourceType, status, description string) {
	activity := &model.Activity{
		ActivityType: activityType,
		ResourceName: resourceName,
		ResourceType: resourceType,
		Status:       status,
		UserName:     "System",
		Description:  description,
	}
	if err := h.store.CreateActivity(activity); err != nil {
		log.Warn("Failed to record activity", "activityType", activityType, "error", err)
	}
}

// lockedRand makes a rand.Rand safe for concurrent handlers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (lr *lockedRand) Float64() float64 {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.rng.Float64()
}
