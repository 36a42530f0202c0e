// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Subsystem configuration: TOML file loading, validation and a thread-safe
// store with reload propagation.

package control

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/internal/normalize"
	"github.com/momentics/hioload-rtskb/pool"
)

// Config is the operator-facing configuration surface.
type Config struct {
	GlobalBuffers int    `toml:"global_buffers"`
	DeviceBuffers int    `toml:"device_buffers"`
	SocketBuffers int    `toml:"socket_buffers"`
	MaxBufferSize int    `toml:"max_buffer_size"`
	MaxPools      int    `toml:"max_pools"`
	MaxBuffers    int    `toml:"max_buffers"`
	HugePages     bool   `toml:"huge_pages"`
	TxLevels      int    `toml:"tx_levels"`
	LogLevel      string `toml:"log_level"`
}

// DefaultConfig returns the stock module parameters.
func DefaultConfig() Config {
	pc := pool.DefaultConfig()
	return Config{
		GlobalBuffers: pc.GlobalBuffers,
		DeviceBuffers: 16,
		SocketBuffers: 16,
		MaxBufferSize: pc.BufferSize,
		MaxPools:      pc.MaxPools,
		MaxBuffers:    pc.MaxBuffers,
		TxLevels:      normalize.MaxLevels,
		LogLevel:      "info",
	}
}

// PoolConfig converts to the subsystem's own configuration.
func (c Config) PoolConfig() pool.Config {
	return pool.Config{
		GlobalBuffers: c.GlobalBuffers,
		BufferSize:    c.MaxBufferSize,
		MaxPools:      c.MaxPools,
		MaxBuffers:    c.MaxBuffers,
		HugePages:     c.HugePages,
	}
}

// Level parses LogLevel.
func (c Config) Level() (log.Level, error) {
	return log.ParseLevel(c.LogLevel)
}

// Validate checks the fields the subsystem does not see itself.
func (c Config) Validate() error {
	var errs []error
	if err := c.PoolConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.DeviceBuffers < 0 || c.SocketBuffers < 0 {
		errs = append(errs, fmt.Errorf("device_buffers %d and socket_buffers %d must not be negative", c.DeviceBuffers, c.SocketBuffers))
	}
	if c.TxLevels < 1 || c.TxLevels > normalize.MaxLevels {
		errs = append(errs, fmt.Errorf("tx_levels %d out of range [1, %d]", c.TxLevels, normalize.MaxLevels))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return api.NewError(api.ErrCodeInvalidArgument, "invalid config").
		WithCause(errors.Join(append([]error{api.ErrInvalidArgument}, errs...)...))
}

// DecodeConfig reads TOML from r over the defaults. Unknown keys are rejected.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, api.NewError(api.ErrCodeInvalidArgument, "unknown config keys").
				WithCause(api.ErrInvalidArgument).
				WithContext("detail", strict.String())
		}
		e := api.NewError(api.ErrCodeInvalidArgument, "malformed config").
			WithCause(errors.Join(api.ErrInvalidArgument, err))
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			e.WithContext("row", row).WithContext("column", col)
		}
		return Config{}, e
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and validates the TOML file at path.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// ConfigStore holds the active configuration and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(old, cur Config)
}

// NewConfigStore initializes a store with cfg as the active snapshot.
func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{config: cfg}
}

// Snapshot returns the active configuration.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// SetConfig validates and installs cfg, then runs every listener in
// registration order. Listeners run on the caller's goroutine, outside the
// store lock.
func (cs *ConfigStore) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	old := cs.config
	cs.config = cfg
	listeners := append([]func(old, cur Config){}, cs.listeners...)
	cs.mu.Unlock()
	dispatchReload(listeners, old, cfg)
	return nil
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func(old, cur Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
