// queue_test.go — FIFO substrate tests.
package pool

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-rtskb/api"
)

// chainLen walks the handle links and counts queued buffers.
func chainLen(q *Queue) int {
	q.Lock()
	defer q.Unlock()
	n := 0
	for h := q.first; h != NilHandle; h = q.arena.Get(h).next {
		n++
	}
	return n
}

func TestQueue_FIFOOrder(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "fifo", 8)
	q := s.NewQueue()

	var want []Handle
	for i := 0; i < 8; i++ {
		b := mustAlloc(t, p)
		want = append(want, b.Handle())
		q.EnqueueTail(b)
	}
	if q.Len() != 8 {
		t.Fatalf("expected len 8, got %d", q.Len())
	}
	if q.Peek().Handle() != want[0] {
		t.Errorf("Peek returned %d, expected %d", q.Peek().Handle(), want[0])
	}
	for i, h := range want {
		b := q.DequeueHead()
		if b == nil {
			t.Fatalf("dequeue %d returned nil", i)
		}
		if b.Handle() != h {
			t.Errorf("dequeue %d: expected handle %d, got %d", i, h, b.Handle())
		}
		if b.Queued() {
			t.Errorf("dequeued buffer %d still marked queued", h)
		}
		Free(b)
	}
	if b := q.DequeueHead(); b != nil {
		t.Errorf("dequeue on empty queue returned %d", b.Handle())
	}
	if !q.IsEmpty() || q.Peek() != nil {
		t.Error("queue not empty after draining")
	}
}

func TestQueue_LenMatchesChainProperty(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "prop", 64)
	q := s.NewQueue()
	rng := rand.New(rand.NewSource(1))

	var model []Handle
	for i := 0; i < 5000; i++ {
		if rng.Intn(2) == 0 {
			b, err := p.Alloc(0)
			if err != nil {
				continue
			}
			q.EnqueueTail(b)
			model = append(model, b.Handle())
		} else {
			b := q.DequeueHead()
			if len(model) == 0 {
				if b != nil {
					t.Fatalf("step %d: dequeue on empty returned %d", i, b.Handle())
				}
				continue
			}
			if b == nil || b.Handle() != model[0] {
				t.Fatalf("step %d: FIFO violated", i)
			}
			model = model[1:]
			Free(b)
		}
		if q.Len() != len(model) {
			t.Fatalf("step %d: expected len %d, got %d", i, len(model), q.Len())
		}
		if n := chainLen(q); n != len(model) {
			t.Fatalf("step %d: len %d but %d linked", i, q.Len(), n)
		}
	}
	q.Purge()
	if p.Len() != 64 {
		t.Errorf("expected 64 free after purge, got %d", p.Len())
	}
}

func TestQueue_DoubleEnqueuePanics(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "dup", 2)
	q1, q2 := s.NewQueue(), s.NewQueue()
	b := mustAlloc(t, p)
	q1.EnqueueTail(b)

	mustPanicWith(t, api.ErrOwnership, func() { q2.EnqueueTail(b) })
	mustPanicWith(t, api.ErrOwnership, func() { Free(b) })

	if q1.Len() != 1 || q2.Len() != 0 {
		t.Errorf("memberships changed: q1=%d q2=%d", q1.Len(), q2.Len())
	}
}

func TestQueue_UsableAfterOwnershipPanic(t *testing.T) {
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "after-panic", 3)
	q1, q2 := s.NewQueue(), s.NewQueue()
	held := mustAlloc(t, p)
	q1.EnqueueTail(held)
	mustPanicWith(t, api.ErrOwnership, func() { q2.EnqueueTail(held) })

	fresh := mustAlloc(t, p)
	finishWithin(t, 5*time.Second, func() {
		q2.EnqueueTail(fresh)
		if n := q2.Len(); n != 1 {
			t.Errorf("expected 1 queued, got %d", n)
		}
		if b := q2.DequeueHead(); b != fresh {
			t.Errorf("expected the fresh buffer back, got %v", b)
		}
		if b := q1.DequeueHead(); b != held {
			t.Errorf("expected the held buffer back, got %v", b)
		}
	})
	Free(fresh)
	Free(held)
	if p.Len() != 3 {
		t.Errorf("expected 3 free, got %d", p.Len())
	}
}

func TestQueue_ForeignArenaPanics(t *testing.T) {
	s1, _ := newTestSubsystem(t, testConfig())
	s2, _ := newTestSubsystem(t, testConfig())
	b := mustAlloc(t, mustPool(t, s1, "a", 1))
	q := s2.NewQueue()
	mustPanicWith(t, api.ErrOwnership, func() { q.EnqueueTail(b) })
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	const workers, perWorker = 4, 2000
	s, _ := newTestSubsystem(t, testConfig())
	p := mustPool(t, s, "conc", 128)
	q := s.NewQueue()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if b, err := p.Alloc(0); err == nil {
					q.EnqueueTail(b)
				}
				if b := q.DequeueHead(); b != nil {
					Free(b)
				}
			}
		}()
	}
	wg.Wait()
	q.Purge()

	if p.Len() != 128 {
		t.Errorf("expected all 128 buffers free, got %d", p.Len())
	}
	if n := chainLen(&p.free); n != 128 {
		t.Errorf("free list links %d buffers, expected 128", n)
	}
}

func BenchmarkQueue_EnqueueDequeue(b *testing.B) {
	s, err := Start(testConfig())
	if err != nil {
		b.Fatal(err)
	}
	p, _, _ := s.NewPool("bench", 1)
	buf, _ := p.Alloc(0)
	q := s.NewQueue()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.EnqueueTail(buf)
		q.DequeueHead()
	}
}
