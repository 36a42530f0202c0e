// control/resizer.go
// Author: momentics <momentics@gmail.com>
//
// Resizer runs pool extend/shrink/release requests off the real-time path.
// Requests are executed one at a time in submission order by a single
// worker goroutine.

package control

import (
	"context"
	"sync"

	"github.com/apex/log"
	"github.com/eapache/queue"

	"github.com/momentics/hioload-rtskb/api"
)

// ResizeOp selects what a request does to its pool.
type ResizeOp uint8

const (
	OpExtend ResizeOp = iota
	OpShrink
	OpRelease
)

func (op ResizeOp) String() string {
	switch op {
	case OpExtend:
		return "extend"
	case OpShrink:
		return "shrink"
	case OpRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ResizeRequest is one unit of control-path work.
type ResizeRequest struct {
	Pool api.Resizable
	Op   ResizeOp
	N    int
	// Done, when set, receives the outcome on the worker goroutine.
	Done func(ResizeResult)
}

// ResizeResult reports how many buffers a request created or destroyed.
type ResizeResult struct {
	Pool  string
	Op    ResizeOp
	N     int
	Count int
	Err   error
}

// Resizer serializes resize requests through a FIFO.
type Resizer struct {
	mu      sync.Mutex
	pending *queue.Queue
	wake    chan struct{}
	closed  bool
	log     log.Interface
}

// NewResizer creates an idle resizer logging to logger.
func NewResizer(logger log.Interface) *Resizer {
	if logger == nil {
		logger = log.Log
	}
	return &Resizer{
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		log:     logger,
	}
}

// Submit queues req. It fails once Close has been called.
func (r *Resizer) Submit(req ResizeRequest) error {
	if req.Pool == nil || req.N < 0 {
		return api.ErrInvalidArgument
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return api.ErrResizerClosed
	}
	r.pending.Add(req)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending reports the number of queued requests.
func (r *Resizer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending.Length()
}

// Close stops accepting requests. Run drains what is queued and returns.
func (r *Resizer) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run executes requests until ctx is cancelled or the resizer is closed
// and drained. Requests still queued on cancellation are left in place.
func (r *Resizer) Run(ctx context.Context) error {
	for {
		r.Drain()
		r.mu.Lock()
		done := r.closed && r.pending.Length() == 0
		r.mu.Unlock()
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		}
	}
}

// Drain executes every queued request on the calling goroutine and returns
// how many ran. It must not be used while Run is active.
func (r *Resizer) Drain() int {
	n := 0
	for {
		r.mu.Lock()
		if r.pending.Length() == 0 {
			r.mu.Unlock()
			return n
		}
		req := r.pending.Remove().(ResizeRequest)
		r.mu.Unlock()

		res := r.execute(req)
		if req.Done != nil {
			req.Done(res)
		}
		n++
	}
}

func (r *Resizer) execute(req ResizeRequest) ResizeResult {
	res := ResizeResult{Pool: req.Pool.Name(), Op: req.Op, N: req.N}
	switch req.Op {
	case OpExtend:
		res.Count = req.Pool.Extend(req.N)
	case OpShrink:
		res.Count = req.Pool.Shrink(req.N)
	case OpRelease:
		res.Err = req.Pool.Release()
	default:
		res.Err = api.ErrNotSupported
	}

	entry := r.log.WithFields(log.Fields{
		"pool":      res.Pool,
		"op":        res.Op.String(),
		"requested": res.N,
		"count":     res.Count,
	})
	switch {
	case res.Err != nil:
		entry.WithError(res.Err).Warn("resize request failed")
	case req.Op != OpRelease && res.Count < req.N:
		entry.Warn("resize request partially applied")
	default:
		entry.Debug("resize request applied")
	}
	return res
}
