// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package metrics exposes a single semisort run's statistics as
// Prometheus metrics, following the Describe/Collect pattern of
// goarista/cmd/ocprometheus's collector: descriptors are fixed, and
// Collect emits one const metric per descriptor from whatever the most
// recent snapshot happened to be, rather than maintaining live counters
// that every phase would need a reference to.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is the per-run statistics a semisort call records.
type Snapshot struct {
	PhaseDurations   map[string]time.Duration
	HeavyKeyCount    int
	LightBucketCount int
	ProbeRetries     int
	PackedRecords    int
}

// Recorder is the hook Config.Metrics implements; semisort.Sort calls
// Record once per call if one is configured.
type Recorder interface {
	Record(Snapshot)
}

var (
	phaseDurationDesc = prometheus.NewDesc(
		"semisort_phase_duration_seconds", "Duration of one semisort pipeline phase.",
		[]string{"phase"}, nil)
	heavyKeyCountDesc = prometheus.NewDesc(
		"semisort_heavy_key_count", "Number of keys classified heavy in the most recent run.",
		nil, nil)
	lightBucketCountDesc = prometheus.NewDesc(
		"semisort_light_bucket_count", "Number of light buckets in the most recent run.",
		nil, nil)
	probeRetriesDesc = prometheus.NewDesc(
		"semisort_probe_retries_total", "Failed slot-claim CAS attempts across all scatter insertions in the most recent run.",
		nil, nil)
	packedRecordsDesc = prometheus.NewDesc(
		"semisort_packed_records", "Records written by the final pack phase in the most recent run.",
		nil, nil)
)

// Collector implements prometheus.Collector over the most recently
// recorded Snapshot. Its zero value is ready to use.
type Collector struct {
	mu       sync.Mutex
	snapshot Snapshot
}

// NewCollector returns a ready-to-register Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record stores s as the snapshot future Collect calls report.
func (c *Collector) Record(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = s
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- phaseDurationDesc
	ch <- heavyKeyCountDesc
	ch <- lightBucketCountDesc
	ch <- probeRetriesDesc
	ch <- packedRecordsDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	s := c.snapshot
	c.mu.Unlock()

	for phase, d := range s.PhaseDurations {
		ch <- prometheus.MustNewConstMetric(phaseDurationDesc, prometheus.GaugeValue, d.Seconds(), phase)
	}
	ch <- prometheus.MustNewConstMetric(heavyKeyCountDesc, prometheus.GaugeValue, float64(s.HeavyKeyCount))
	ch <- prometheus.MustNewConstMetric(lightBucketCountDesc, prometheus.GaugeValue, float64(s.LightBucketCount))
	ch <- prometheus.MustNewConstMetric(probeRetriesDesc, prometheus.GaugeValue, float64(s.ProbeRetries))
	ch <- prometheus.MustNewConstMetric(packedRecordsDesc, prometheus.GaugeValue, float64(s.PackedRecords))
}
