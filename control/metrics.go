// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for buffer accounting.
// Exposes counters in a thread-safe map refreshed from a subsystem.

package control

import (
	"strings"
	"sync"
	"time"

	"github.com/momentics/hioload-rtskb/pool"
)

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Collect refreshes subsystem and per-pool counters from s. Keys of pools
// released since the last collection are dropped.
func (mr *MetricsRegistry) Collect(s *pool.Subsystem) {
	st := s.Stats()
	pools := s.PoolStats()

	mr.mu.Lock()
	defer mr.mu.Unlock()
	for k := range mr.metrics {
		if strings.HasPrefix(k, "pool.") {
			delete(mr.metrics, k)
		}
	}
	mr.metrics["subsystem.pools"] = st.Pools
	mr.metrics["subsystem.pools_max"] = st.PoolsMax
	mr.metrics["subsystem.buffers"] = st.Buffers
	mr.metrics["subsystem.buffers_max"] = st.BuffersMax
	mr.metrics["subsystem.buffer_size"] = st.BufferSize
	for _, ps := range pools {
		prefix := "pool." + ps.Name + "."
		mr.metrics[prefix+"free"] = ps.Free
		mr.metrics[prefix+"total"] = ps.Total
		mr.metrics[prefix+"in_use"] = ps.InUse
		mr.metrics[prefix+"allocs"] = ps.Allocs
		mr.metrics[prefix+"frees"] = ps.Frees
		mr.metrics[prefix+"fails"] = ps.Fails
	}
	mr.updated = time.Now()
}

// Updated reports when the registry last changed.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
