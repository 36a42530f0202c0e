// Package api
// Author: momentics
//
// Live introspection contract for buffer subsystems.

package api

// Debug is a registry of named probes sampled on demand. Probes run on the
// caller's goroutine and must not be invoked from a real-time context.
type Debug interface {
	// DumpState evaluates every probe.
	DumpState() map[string]any

	// RegisterProbe adds or replaces a probe.
	RegisterProbe(name string, fn func() any)
}
