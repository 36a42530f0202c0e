package pool

import (
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
)

// newTestSubsystem starts a subsystem whose log output is captured in memory.
func newTestSubsystem(t *testing.T, cfg Config) (*Subsystem, *memory.Handler) {
	t.Helper()
	h := memory.New()
	s, err := Start(cfg, WithLogger(&log.Logger{Handler: h, Level: log.DebugLevel}))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s, h
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BufferSize = 256
	cfg.MaxBuffers = 256
	cfg.MaxPools = 8
	return cfg
}

func mustPool(t *testing.T, s *Subsystem, name string, n int) *BufferPool {
	t.Helper()
	p, created, err := s.NewPool(name, n)
	if err != nil {
		t.Fatalf("NewPool(%s): %v", name, err)
	}
	if created != n {
		t.Fatalf("NewPool(%s) created %d, want %d", name, created, n)
	}
	return p
}

func mustAlloc(t *testing.T, p *BufferPool) *Buffer {
	t.Helper()
	b, err := p.Alloc(0)
	if err != nil {
		t.Fatalf("Alloc from %s: %v", p.Name(), err)
	}
	return b
}

// mustPanicWith runs fn and asserts it panics with an error matching target.
func mustPanicWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic value %v, want error wrapping %v", r, target)
		}
	}()
	fn()
}

// hasLogMessage scans captured entries; callers must not log concurrently.
func hasLogMessage(h *memory.Handler, level log.Level, msg string) bool {
	for _, e := range h.Entries {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// finishWithin fails the test when fn does not return within d. A stuck
// spin lock shows up here instead of as a suite timeout.
func finishWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("operation did not finish within %v", d)
	}
}
