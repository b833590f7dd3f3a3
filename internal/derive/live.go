package derive

import (
	"math"
	"time"
)

// LiveMetrics is a simulated point-in-time reading of the network. Values
// scale with estate size so bigger estates look busier.
type LiveMetrics struct {
	Latency              float64   `json:"latency"`
	Throughput           float64   `json:"throughput"`
	Availability         float64   `json:"availability"`
	PacketsPerSecond     int       `json:"packetsPerSecond"`
	ErrorsPerHour        int       `json:"errorsPerHour"`
	CPUUtilization       float64   `json:"cpuUtilization"`
	MemoryUtilization    float64   `json:"memoryUtilization"`
	BandwidthUtilization float64   `json:"bandwidthUtilization"`
	ConnectionCount      int       `json:"connectionCount"`
	Timestamp            time.Time `json:"timestamp"`
}

// Live simulates a metrics sample for the given estate shape. Nothing is
// stored; each call produces a fresh reading.
func Live(activeSpokes, activeHubs, activePolicies, totalPolicies int, rng Rand, now time.Time) LiveMetrics {
	load := float64(activeSpokes+activeHubs) / 10

	baseLatency := 8 + load*2
	baseThroughput := math.Max(1.0, 10.0-load*0.5)
	baseAvailability := math.Max(99.0, 99.98-load*0.01)

	basePackets := float64(activeSpokes*25000 + activeHubs*50000)

	// With no policies at all there is nothing to be out of compliance with
	policyRatio := 1.0
	if totalPolicies > 0 {
		policyRatio = float64(activePolicies) / float64(totalPolicies)
	}
	errorRate := math.Max(0, 5-policyRatio*5)

	cpu := 20 + load*15 + rng.Float64()*10
	mem := 35 + load*10 + rng.Float64()*15
	bandwidth := load*20 + rng.Float64()*25

	return LiveMetrics{
		Latency:              round1(baseLatency + (rng.Float64()-0.5)*2),
		Throughput:           round1(baseThroughput + (rng.Float64()-0.5)*0.4),
		Availability:         round2(clamp(baseAvailability+(rng.Float64()-0.5)*0.02, 99, 100)),
		PacketsPerSecond:     int(math.Max(0, math.Round(basePackets+(rng.Float64()-0.5)*10000))),
		ErrorsPerHour:        int(math.Floor(errorRate + rng.Float64()*2)),
		CPUUtilization:       round1(clamp(cpu, 0, 100)),
		MemoryUtilization:    round1(clamp(mem, 0, 100)),
		BandwidthUtilization: round1(clamp(bandwidth, 0, 100)),
		ConnectionCount:      activeSpokes + activeHubs,
		Timestamp:            now,
	}
}
