// bufferpool_test.go — pool lifecycle, accounting and subsystem limits.
package pool

import (
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/google/go-cmp/cmp"

	"github.com/momentics/hioload-rtskb/api"
)

func TestBufferPool_CapacityScenario(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "dev0", 16)

	held := make([]*Buffer, 0, 16)
	for i := 0; i < 16; i++ {
		held = append(held, mustAlloc(t, p))
	}
	if _, err := p.Alloc(0); !errors.Is(err, api.ErrPoolExhausted) {
		t.Fatalf("17th alloc: expected ErrPoolExhausted, got %v", err)
	}

	Free(held[0])
	b := mustAlloc(t, p)
	Free(b)
	for _, b := range held[1:] {
		Free(b)
	}
	b = mustAlloc(t, p)
	if p.Len() != 15 {
		t.Errorf("expected 15 free, got %d", p.Len())
	}
	Free(b)

	want := api.BufferPoolStats{Name: "dev0", Free: 16, Total: 16, Allocs: 18, Frees: 18, Fails: 1}
	if diff := cmp.Diff(want, p.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestBufferPool_RoundTrip(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "rt", 4)

	for i := 0; i < 10; i++ {
		before := p.Len()
		b := mustAlloc(t, p)
		Free(b)
		if p.Len() != before {
			t.Fatalf("round %d: free count %d, expected %d", i, p.Len(), before)
		}
	}

	only := mustPool(t, s, "single", 1)
	b := mustAlloc(t, only)
	b.Append(10)
	b.Priority = 9
	b.Free()
	again := mustAlloc(t, only)
	if again != b {
		t.Fatal("expected the same buffer back from a one-buffer pool")
	}
	if again.Len() != 0 || again.Headroom() != 0 || again.Priority != 0 || again.HeaderOffset(LayerNetwork) != -1 {
		t.Error("allocated buffer not reset")
	}
	Free(again)
}

func TestBufferPool_AllocSizeChecked(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "sz", 1)
	for _, n := range []int{-1, s.Config().BufferSize + 1} {
		if _, err := p.Alloc(n); !errors.Is(err, api.ErrInvalidArgument) {
			t.Errorf("Alloc(%d): expected ErrInvalidArgument, got %v", n, err)
		}
	}
	b, err := p.Alloc(s.Config().BufferSize)
	if err != nil {
		t.Fatalf("Alloc(max): %v", err)
	}
	Free(b)
	if p.Stats().Fails != 0 {
		t.Error("size rejections must not count as exhaustion")
	}
}

func TestBufferPool_ExtendShrink(t *testing.T) {
	s, h := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "resize", 4)

	if n := p.Extend(6); n != 6 {
		t.Fatalf("Extend(6) created %d", n)
	}
	if p.Len() != 10 || p.Total() != 10 {
		t.Fatalf("after extend: free=%d total=%d", p.Len(), p.Total())
	}

	held := []*Buffer{mustAlloc(t, p), mustAlloc(t, p), mustAlloc(t, p)}
	if n := p.Shrink(100); n != 7 {
		t.Errorf("Shrink(100) removed %d, expected the 7 free buffers", n)
	}
	if !hasLogMessage(h, log.WarnLevel, "pool shrink limited by free buffers") {
		t.Error("expected limited shrink warning")
	}
	if p.Total() != 3 || p.Len() != 0 {
		t.Errorf("after shrink: free=%d total=%d", p.Len(), p.Total())
	}
	for _, b := range held {
		Free(b)
	}
	if n := p.Shrink(3); n != 3 {
		t.Errorf("Shrink(3) removed %d", n)
	}
	if st := s.Stats(); st.Buffers != 0 || st.BuffersMax != 10 {
		t.Errorf("expected 0 live buffers with high water 10, got %+v", st)
	}
	if p.Extend(0) != 0 || p.Shrink(-1) != 0 {
		t.Error("non-positive resize must be a no-op")
	}
}

func TestBufferPool_ExtendLimitedByArena(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBuffers = 10
	s, h := newTestSubsystem(t, cfg)

	p, created, err := s.NewPool("big", 16)
	if err != nil {
		t.Fatal(err)
	}
	if created != 10 || p.Total() != 10 {
		t.Errorf("expected 10 created, got %d (total %d)", created, p.Total())
	}
	if p.Extend(1) != 0 {
		t.Error("extend on a full arena must create nothing")
	}
	if !hasLogMessage(h, log.WarnLevel, "arena full, pool not extended") {
		t.Error("expected arena full warning")
	}
	// Handles are reused once buffers are destroyed.
	p.Shrink(2)
	if n := p.Extend(5); n != 2 {
		t.Errorf("expected 2 buffers in reclaimed slots, got %d", n)
	}
}

func TestBufferPool_ReleaseWithOutstanding(t *testing.T) {
	s, h := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "leaky", 4)
	b := mustAlloc(t, p)

	err := p.Release()
	if !errors.Is(err, api.ErrOutstandingBuffers) {
		t.Fatalf("expected ErrOutstandingBuffers, got %v", err)
	}
	if api.CodeOf(err) != api.ErrCodeLeak {
		t.Errorf("expected leak code, got %v", api.CodeOf(err))
	}
	if !hasLogMessage(h, log.WarnLevel, "pool release refused: outstanding buffers") {
		t.Error("expected outstanding buffers warning")
	}
	if p.Total() != 4 || p.Len() != 3 {
		t.Errorf("refused release changed the pool: free=%d total=%d", p.Len(), p.Total())
	}

	Free(b)
	if err := p.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := p.Release(); !errors.Is(err, api.ErrPoolReleased) {
		t.Errorf("second release: expected ErrPoolReleased, got %v", err)
	}
	if p.Extend(1) != 0 {
		t.Error("extend on a released pool must create nothing")
	}
	if s.Stats().Buffers != 0 {
		t.Errorf("expected no live buffers, got %d", s.Stats().Buffers)
	}
}

func TestBufferPool_ExtendRacingRelease(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "racy", 2)
	live := s.Arena().Live()

	// Hold the control lock so Extend passes its fast check and then
	// waits inside populate while the pool is released underneath it.
	s.mu.Lock()
	created := make(chan int, 1)
	go func() { created <- p.Extend(4) }()
	time.Sleep(20 * time.Millisecond)
	if err := s.releaseLocked(p); err != nil {
		s.mu.Unlock()
		t.Fatalf("release: %v", err)
	}
	s.mu.Unlock()

	select {
	case n := <-created:
		if n != 0 {
			t.Errorf("extend of a released pool created %d buffers", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("extend did not return")
	}
	if p.Total() != 0 || p.Len() != 0 {
		t.Errorf("released pool holds buffers: free=%d total=%d", p.Len(), p.Total())
	}
	if got := s.Arena().Live(); got != live-2 {
		t.Errorf("expected %d live arena slots, got %d", live-2, got)
	}
	if st := s.Stats(); st.Buffers != live-2 {
		t.Errorf("expected %d subsystem buffers, got %d", live-2, st.Buffers)
	}
}

func TestSubsystem_GlobalPool(t *testing.T) {
	cfg := testConfig()
	cfg.GlobalBuffers = 8
	s, h := newTestSubsystem(t, cfg)

	if s.Global().Name() != GlobalPoolName || s.Global().Total() != 8 {
		t.Fatalf("unexpected global pool %v", s.Global())
	}
	b, err := s.Alloc(64, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.Pool() != s.Global() {
		t.Error("nil pool must allocate from the global pool")
	}
	Free(b)
	if !hasLogMessage(h, log.InfoLevel, "buffer subsystem started") {
		t.Error("expected start log")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !hasLogMessage(h, log.InfoLevel, "buffer subsystem stopped") {
		t.Error("expected stop log")
	}
}

func TestSubsystem_StopWithLivePools(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	b := mustPool(t, s, "b-pool", 1)
	a := mustPool(t, s, "a-pool", 1)

	err := s.Stop()
	if !errors.Is(err, api.ErrPoolsOutstanding) {
		t.Fatalf("expected ErrPoolsOutstanding, got %v", err)
	}
	if want := "stop: subsystem has live pools: a-pool, b-pool"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if err := a.Release(); err != nil {
		t.Fatal(err)
	}
	if err := b.Release(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); !errors.Is(err, api.ErrSubsystemStopped) {
		t.Errorf("second Stop: expected ErrSubsystemStopped, got %v", err)
	}
	if _, _, err := s.NewPool("late", 1); !errors.Is(err, api.ErrSubsystemStopped) {
		t.Errorf("NewPool after Stop: expected ErrSubsystemStopped, got %v", err)
	}
}

func TestSubsystem_PoolLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPools = 3 // global + 2
	s, _ := newTestSubsystem(t, cfg)
	mustPool(t, s, "one", 0)
	two := mustPool(t, s, "two", 0)

	_, _, err := s.NewPool("three", 0)
	if !errors.Is(err, api.ErrPoolLimit) || api.CodeOf(err) != api.ErrCodeLimit {
		t.Fatalf("expected pool limit error, got %v", err)
	}
	if err := two.Release(); err != nil {
		t.Fatal(err)
	}
	mustPool(t, s, "three", 0)

	st := s.Stats()
	if st.Pools != 3 || st.PoolsMax != 3 {
		t.Errorf("expected 3 pools with high water 3, got %+v", st)
	}
	names := []string{}
	for _, ps := range s.PoolStats() {
		names = append(names, ps.Name)
	}
	if diff := cmp.Diff([]string{"global", "one", "three"}, names); diff != "" {
		t.Errorf("pool names mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := []Config{
		{BufferSize: 0, MaxPools: 1, MaxBuffers: 1},
		{BufferSize: 64, MaxPools: 0, MaxBuffers: 1},
		{BufferSize: 64, MaxPools: 1, MaxBuffers: -1},
		{BufferSize: 64, MaxPools: 1, MaxBuffers: 4, GlobalBuffers: 5},
	}
	for i, cfg := range bad {
		err := cfg.Validate()
		if !errors.Is(err, api.ErrInvalidArgument) || api.CodeOf(err) != api.ErrCodeInvalidArgument {
			t.Errorf("case %d: expected invalid argument, got %v", i, err)
		}
		if _, err := Start(cfg); err == nil {
			t.Errorf("case %d: Start accepted invalid config", i)
		}
	}
}

func BenchmarkBufferPool_AllocFree(b *testing.B) {
	s, err := Start(testConfig(), WithLogger(log.Log))
	if err != nil {
		b.Fatal(err)
	}
	p, _, _ := s.NewPool("bench", 64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := p.Alloc(0)
		if err != nil {
			b.Fatal(err)
		}
		Free(buf)
	}
}

func BenchmarkBufferPool_AllocFreeParallel(b *testing.B) {
	s, err := Start(testConfig())
	if err != nil {
		b.Fatal(err)
	}
	p, _, _ := s.NewPool("bench", 256)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if buf, err := p.Alloc(0); err == nil {
				Free(buf)
			}
		}
	})
}
