package db

import (
	"sync/atomic"
	"time"
)

// Metrics accumulates per-engine execution counters. All counters are
// updated atomically so the executor and readers never contend on a lock.
type Metrics struct {
	statements atomic.Uint64
	fetches    atomic.Uint64
	executes   atomic.Uint64
	errors     atomic.Uint64
	durationNs atomic.Uint64
}

// NewMetrics creates a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of the engine counters.
type MetricsSnapshot struct {
	Statements uint64        `json:"statements"`
	Fetches    uint64        `json:"fetches"`
	Executes   uint64        `json:"executes"`
	Errors     uint64        `json:"errors"`
	Duration   time.Duration `json:"duration_ns"`
}

func (metrics *Metrics) recordFetch(elapsed time.Duration) {
	metrics.statements.Add(1)
	metrics.fetches.Add(1)
	metrics.durationNs.Add(uint64(elapsed.Nanoseconds()))
}

func (metrics *Metrics) recordExecute(elapsed time.Duration) {
	metrics.statements.Add(1)
	metrics.executes.Add(1)
	metrics.durationNs.Add(uint64(elapsed.Nanoseconds()))
}

func (metrics *Metrics) recordError(elapsed time.Duration) {
	metrics.statements.Add(1)
	metrics.errors.Add(1)
	metrics.durationNs.Add(uint64(elapsed.Nanoseconds()))
}

// Snapshot returns a consistent-enough copy of the counters for reporting.
func (metrics *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Statements: metrics.statements.Load(),
		Fetches:    metrics.fetches.Load(),
		Executes:   metrics.executes.Load(),
		Errors:     metrics.errors.Load(),
		Duration:   time.Duration(metrics.durationNs.Load()),
	}
}
