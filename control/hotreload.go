// control/hotreload.go
// Re-reads the configuration file and propagates changes to listeners.
// Only fields that can change at runtime take effect; the rest are
// reported and left for the next start.

package control

import "github.com/apex/log"

// Reload loads path and installs it. Fields fixed at subsystem start are
// kept from the active snapshot and logged when the file disagrees.
func (cs *ConfigStore) Reload(path string, logger log.Interface) error {
	next, err := LoadConfig(path)
	if err != nil {
		return err
	}
	cur := cs.Snapshot()
	fixed := cur.PoolConfig()
	if next.PoolConfig() != fixed {
		logger.WithFields(log.Fields{
			"path":            path,
			"global_buffers":  next.GlobalBuffers,
			"max_buffer_size": next.MaxBufferSize,
			"max_pools":       next.MaxPools,
			"max_buffers":     next.MaxBuffers,
			"huge_pages":      next.HugePages,
		}).Warn("config reload: subsystem limits need a restart")
		next.GlobalBuffers = cur.GlobalBuffers
		next.MaxBufferSize = cur.MaxBufferSize
		next.MaxPools = cur.MaxPools
		next.MaxBuffers = cur.MaxBuffers
		next.HugePages = cur.HugePages
	}
	return cs.SetConfig(next)
}

// dispatchReload invokes all listeners synchronously, in order.
func dispatchReload(listeners []func(old, cur Config), old, cur Config) {
	for _, fn := range listeners {
		fn(old, cur)
	}
}
