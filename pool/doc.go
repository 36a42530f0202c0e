// Package pool
// Author: momentics <momentics@gmail.com>
//
// Real-time packet buffer management for hioload-rtskb.
//
// A Subsystem owns an Arena of buffer slots and every BufferPool carved from
// it. Buffers are preallocated when a pool is created or extended; on the data
// path Alloc, Free, queue operations and the cursor primitives run in bounded
// time, never allocate and never wait. Exhaustion is reported as
// api.ErrPoolExhausted and the caller decides what to drop.
//
// Ownership: a Buffer is either linked into exactly one Queue (a pool's free
// list, a stage queue or one level of a PriorityQueue) or held by exactly one
// caller. Cursor primitives are unsynchronized and rely on that rule.
//
// Sizing defects (append past the end of storage, prepend before its start,
// fragment accounting corruption) panic with a *BoundsError; they are never
// returned as errors.
//
// See bufferpool.go, cursor.go, queue.go and prio_queue.go for details.
package pool
