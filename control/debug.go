// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Runtime debug handler and probe reflector for internal inspection.

package control

import (
	"sync"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/pool"
)

var _ api.Debug = (*DebugProbes)(nil)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// RegisterSubsystemProbes exposes s's counters, per-pool accounting and
// arena occupancy.
func RegisterSubsystemProbes(dp api.Debug, s *pool.Subsystem) {
	dp.RegisterProbe("subsystem.stats", func() any { return s.Stats() })
	dp.RegisterProbe("subsystem.pools", func() any { return s.PoolStats() })
	dp.RegisterProbe("subsystem.arena", func() any {
		a := s.Arena()
		return map[string]int{"cap": a.Cap(), "live": a.Live()}
	})
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any)
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}
