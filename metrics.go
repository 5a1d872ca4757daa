package strand

import "sync/atomic"

// Metrics holds lightweight runtime counters, populated only when a
// Runtime is constructed with WithMetrics(true).
type Metrics struct {
	FibersSpawned    atomic.Int64
	FibersTerminated atomic.Int64
	ReactorWakeups   atomic.Int64
}
