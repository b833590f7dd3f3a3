// Package worker runs the background metric recorder. It periodically
// samples the live metrics simulator and persists one reading per active
// network so the history endpoints have data to serve.
package worker

import (
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hubspoke/hubd/internal/derive"
	"github.com/hubspoke/hubd/internal/log"
	"github.com/hubspoke/hubd/internal/model"
	"github.com/hubspoke/hubd/internal/storage"
)

// Recorder samples network metrics on a cron schedule.
type Recorder struct {
	store storage.Store
	cron  *cron.Cron
	rng   derive.Rand
	now   func() time.Time
}

// NewRecorder creates a metric recorder backed by the given store.
func NewRecorder(store storage.Store) *Recorder {
	return &Recorder{
		store: store,
		cron:  cron.New(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// Start schedules recording runs. The schedule accepts standard cron
// expressions as well as @every forms like "@every 5m".
func (r *Recorder) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.RecordOnce); err != nil {
		return err
	}
	r.cron.Start()
	log.Info("Metric recorder started", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (r *Recorder) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info("Metric recorder stopped")
}

// RecordOnce takes a single sample of every active network.
func (r *Recorder) RecordOnce() {
	hubs, err := r.store.ListHubNetworks(nil)
	if err != nil {
		log.Error("Metric recording failed to list hub networks", "error", err)
		return
	}
	spokes, err := r.store.ListSpokeNetworks(nil)
	if err != nil {
		log.Error("Metric recording failed to list spoke networks", "error", err)
		return
	}
	policies, err := r.store.ListSecurityPolicies(nil)
	if err != nil {
		log.Error("Metric recording failed to list security policies", "error", err)
		return
	}

	activeSpokes, activeHubs, activePolicies := 0, 0, 0
	for _, spoke := range spokes {
		if spoke.Status == "active" {
			activeSpokes++
		}
	}
	for _, hub := range hubs {
		if hub.Status == "active" {
			activeHubs++
		}
	}
	for _, policy := range policies {
		if policy.IsActive {
			activePolicies++
		}
	}

	live := derive.Live(activeSpokes, activeHubs, activePolicies, len(policies), r.rng, r.now())

	recorded := 0
	for _, hub := range hubs {
		if hub.Status != "active" {
			continue
		}
		recorded += r.record(hub.ID, "hub", live)
	}
	for _, spoke := range spokes {
		if spoke.Status != "active" {
			continue
		}
		recorded += r.record(spoke.ID, "spoke", live)
	}

	log.Debug("Metric recording run completed", "samples", recorded)
}

// record persists the latency, throughput and availability readings for
// one network. Returns the number of samples written.
func (r *Recorder) record(networkID int, networkType string, live derive.LiveMetrics) int {
	samples := []model.NetworkMetric{
		{NetworkID: networkID, NetworkType: networkType, MetricType: "latency", Value: live.Latency, Unit: "ms"},
		{NetworkID: networkID, NetworkType: networkType, MetricType: "throughput", Value: live.Throughput, Unit: "Gbps"},
		{NetworkID: networkID, NetworkType: networkType, MetricType: "availability", Value: live.Availability, Unit: "percent"},
	}

	written := 0
	for i := range samples {
		if err := r.store.CreateNetworkMetric(&samples[i]); err != nil {
			log.Error("Failed to record network metric", "network_id", networkID, "metric_type", samples[i].MetricType, "error", err)
			continue
		}
		written++
	}
	return written
}
