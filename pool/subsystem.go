// File: pool/subsystem.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Subsystem is the explicit context owning the arena, the global pool and
// the process-level counters. Collaborators receive it instead of reaching
// for package globals.

package pool

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/internal/mem"
	"github.com/momentics/hioload-rtskb/internal/normalize"
)

// GlobalPoolName names the pool created by Start.
const GlobalPoolName = "global"

// Config is fixed for the lifetime of a subsystem.
type Config struct {
	GlobalBuffers int  // buffers preallocated into the global pool
	BufferSize    int  // storage bytes per buffer
	MaxPools      int  // upper bound on live pools, global included
	MaxBuffers    int  // arena capacity: upper bound on live buffers
	HugePages     bool // back regions with hugepages where supported
}

// DefaultConfig mirrors the classic module defaults: an empty global pool
// and Ethernet-sized buffers with room for alignment and driver slack.
func DefaultConfig() Config {
	return Config{
		GlobalBuffers: 0,
		BufferSize:    1514 + 2 + 20,
		MaxPools:      64,
		MaxBuffers:    4096,
	}
}

// Validate rejects configurations the subsystem cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("buffer size %d must be positive", c.BufferSize))
	}
	if c.MaxPools < 1 {
		errs = append(errs, fmt.Errorf("max pools %d must be at least 1", c.MaxPools))
	}
	if c.MaxBuffers < 0 || c.MaxBuffers >= int(NilHandle) {
		errs = append(errs, fmt.Errorf("max buffers %d out of range", c.MaxBuffers))
	}
	if c.GlobalBuffers < 0 || c.GlobalBuffers > c.MaxBuffers {
		errs = append(errs, fmt.Errorf("global buffers %d out of range [0, %d]", c.GlobalBuffers, c.MaxBuffers))
	}
	if len(errs) == 0 {
		return nil
	}
	return api.NewError(api.ErrCodeInvalidArgument, "invalid pool config").
		WithCause(errors.Join(append([]error{api.ErrInvalidArgument}, errs...)...))
}

// Options carries optional collaborators.
type Options struct {
	Logger log.Interface
}

// Option mutates Options.
type Option func(*Options)

// WithLogger routes control-path logging to l.
func WithLogger(l log.Interface) Option {
	return func(o *Options) { o.Logger = l }
}

// Subsystem owns every pool and buffer created through it.
type Subsystem struct {
	cfg    Config
	stride int
	arena  *Arena
	log    log.Interface

	mu        sync.Mutex // control path only; never taken by Alloc/Free
	pools     map[*BufferPool]struct{}
	poolsMax  int
	amount    int
	amountMax int
	global    *BufferPool
	stopped   bool
}

// Start creates a subsystem and its global pool. A global pool smaller
// than requested is logged, not treated as an error.
func Start(cfg Config, opts ...Option) (*Subsystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := Options{Logger: log.Log}
	for _, fn := range opts {
		fn(&o)
	}
	s := &Subsystem{
		cfg:    cfg,
		stride: (cfg.BufferSize + DataBufAlign - 1) &^ (DataBufAlign - 1),
		arena:  newArena(cfg.MaxBuffers),
		log:    o.Logger,
		pools:  make(map[*BufferPool]struct{}),
	}
	g, _, err := s.NewPool(GlobalPoolName, cfg.GlobalBuffers)
	if err != nil {
		return nil, err
	}
	s.global = g
	s.log.WithFields(log.Fields{
		"buffer_size": cfg.BufferSize,
		"max_pools":   cfg.MaxPools,
		"max_buffers": cfg.MaxBuffers,
		"global":      g.Total(),
	}).Info("buffer subsystem started")
	return s, nil
}

// Stop releases the global pool and retires the subsystem. Every other
// pool must have been released first.
func (s *Subsystem) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return api.ErrSubsystemStopped
	}
	var live []string
	for p := range s.pools {
		if p != s.global {
			live = append(live, p.name)
		}
	}
	if len(live) > 0 {
		sort.Strings(live)
		return fmt.Errorf("stop: %w: %s", api.ErrPoolsOutstanding, strings.Join(live, ", "))
	}
	if !s.global.released.Load() {
		if err := s.releaseLocked(s.global); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
	}
	s.stopped = true
	s.log.WithFields(log.Fields{
		"pools_max":   s.poolsMax,
		"buffers_max": s.amountMax,
	}).Info("buffer subsystem stopped")
	return nil
}

// NewPool creates a pool and preallocates up to capacity buffers into it.
// The second result is the number actually created; callers compare it
// against capacity.
func (s *Subsystem) NewPool(name string, capacity int) (*BufferPool, int, error) {
	if capacity < 0 {
		return nil, 0, api.ErrInvalidArgument
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, 0, api.ErrSubsystemStopped
	}
	if len(s.pools) >= s.cfg.MaxPools {
		s.mu.Unlock()
		return nil, 0, api.NewError(api.ErrCodeLimit, "new pool").
			WithCause(api.ErrPoolLimit).
			WithContext("pool", name).
			WithContext("max_pools", s.cfg.MaxPools)
	}
	p := &BufferPool{name: name, sys: s}
	p.free.Init(s.arena)
	s.pools[p] = struct{}{}
	if len(s.pools) > s.poolsMax {
		s.poolsMax = len(s.pools)
	}
	s.mu.Unlock()

	created := 0
	if capacity > 0 {
		created = s.populate(p, capacity)
	}
	s.log.WithFields(log.Fields{
		"pool":      name,
		"requested": capacity,
		"created":   created,
	}).Debug("pool created")
	return p, created, nil
}

// Global returns the default pool created by Start.
func (s *Subsystem) Global() *BufferPool { return s.global }

// Alloc allocates from p, or from the global pool when p is nil.
func (s *Subsystem) Alloc(size int, p *BufferPool) (*Buffer, error) {
	if p == nil {
		p = s.global
	}
	return p.Alloc(size)
}

// NewQueue returns an empty stage queue for buffers of this subsystem.
func (s *Subsystem) NewQueue() *Queue { return NewQueue(s.arena) }

// NewPriorityQueue returns a transmit scheduler with the given level
// count; an out-of-range count is clamped and logged.
func (s *Subsystem) NewPriorityQueue(levels int) *PriorityQueue {
	pq := &PriorityQueue{}
	if pq.Init(s.arena, levels) {
		s.log.WithFields(log.Fields{
			"requested": levels,
			"levels":    pq.Levels(),
		}).Warn("priority levels clamped")
	}
	return pq
}

// Arena exposes the handle table shared by all pools of the subsystem.
func (s *Subsystem) Arena() *Arena { return s.arena }

// Config returns the configuration the subsystem was started with.
func (s *Subsystem) Config() Config { return s.cfg }

// Stats returns the process-level counters.
func (s *Subsystem) Stats() api.SubsystemStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return api.SubsystemStats{
		Pools:      len(s.pools),
		PoolsMax:   s.poolsMax,
		Buffers:    s.amount,
		BuffersMax: s.amountMax,
		MaxPools:   s.cfg.MaxPools,
		MaxBuffers: s.cfg.MaxBuffers,
		BufferSize: s.cfg.BufferSize,
	}
}

// PoolStats returns per-pool accounting sorted by pool name.
func (s *Subsystem) PoolStats() []api.BufferPoolStats {
	s.mu.Lock()
	pools := make([]*BufferPool, 0, len(s.pools))
	for p := range s.pools {
		pools = append(pools, p)
	}
	s.mu.Unlock()

	out := make([]api.BufferPoolStats, 0, len(pools))
	for _, p := range pools {
		out = append(out, p.Stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// populate carves up to n buffers out of one new storage region. A pool
// released while the caller waited for s.mu is left alone.
func (s *Subsystem) populate(p *BufferPool, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.released.Load() {
		return 0
	}

	n, _ = normalize.Count(n, s.arena.Available())
	if n == 0 {
		s.log.WithField("pool", p.name).Warn("arena full, pool not extended")
		return 0
	}
	r, err := mem.Alloc(n*s.stride, s.cfg.HugePages)
	if err != nil {
		s.log.WithError(err).WithField("pool", p.name).Error("buffer storage allocation failed")
		return 0
	}
	reg := &region{mem: r}
	bufs := make([]Buffer, n)
	created := 0
	for i := range bufs {
		b := &bufs[i]
		off := i * s.stride
		b.storage = r.Data[off : off+s.cfg.BufferSize : off+s.cfg.BufferSize]
		b.region = reg
		b.pool = p
		b.reset()
		if !s.arena.insert(b) {
			break
		}
		reg.live++
		p.free.EnqueueTail(b)
		created++
	}
	if created == 0 {
		_ = r.Free()
		return 0
	}
	p.total.Add(int64(created))
	s.amount += created
	if s.amount > s.amountMax {
		s.amountMax = s.amount
	}
	s.log.WithFields(log.Fields{
		"pool":    p.name,
		"created": created,
		"storage": r.Kind().String(),
	}).Debug("pool extended")
	return created
}

// destroyLocked tears down a free buffer already removed from its queue.
func (s *Subsystem) destroyLocked(b *Buffer) {
	s.arena.remove(b)
	reg := b.region
	b.region = nil
	b.storage = nil
	b.pool = nil
	s.amount--
	reg.live--
	if reg.live == 0 {
		if err := reg.mem.Free(); err != nil {
			s.log.WithError(err).Warn("buffer storage release failed")
		}
	}
}

func (s *Subsystem) releaseLocked(p *BufferPool) error {
	if p.released.Load() {
		return api.ErrPoolReleased
	}
	total := int(p.total.Load())

	p.free.Lock()
	free := p.free.LenLocked()
	if free != total {
		p.free.Unlock()
		s.log.WithFields(log.Fields{
			"pool":        p.name,
			"free":        free,
			"total":       total,
			"outstanding": total - free,
		}).Warn("pool release refused: outstanding buffers")
		return api.NewError(api.ErrCodeLeak, "release "+p.name).
			WithCause(api.ErrOutstandingBuffers).
			WithContext("outstanding", total-free)
	}
	doomed := make([]*Buffer, 0, free)
	for b := p.free.DequeueHeadLocked(); b != nil; b = p.free.DequeueHeadLocked() {
		doomed = append(doomed, b)
	}
	p.released.Store(true)
	p.free.Unlock()

	for _, b := range doomed {
		s.destroyLocked(b)
	}
	p.total.Store(0)
	delete(s.pools, p)
	s.log.WithFields(log.Fields{
		"pool":      p.name,
		"destroyed": len(doomed),
	}).Debug("pool released")
	return nil
}
