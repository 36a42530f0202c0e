// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, resizing, runtime metrics and debug introspection for the
// buffer subsystem. Everything here runs on the control path; none of it is
// safe to call from a real-time context.
//
// Provides:
//   - TOML configuration loading, validation and a reloadable store
//   - Resizer: a FIFO worker for pool extend/shrink/release requests
//   - Metrics collected from subsystem and pool accounting
//   - Debug probes, including platform memory geometry
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
