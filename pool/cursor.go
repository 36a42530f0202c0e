// File: pool/cursor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cursor primitives. All are O(1) and unsynchronized: the caller owns the
// buffer exclusively while it is outside every queue.
//
// Checked forms panic with *BoundsError on a sizing defect. Unchecked forms
// skip the diagnostic; slicing past storage still faults in the Go runtime.
// Try forms report missing room as an error instead.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-rtskb/api"
)

// BoundsError describes a fatal cursor violation. It is only ever raised
// through panic and must not be recovered and retried.
type BoundsError struct {
	Op      string
	N       int
	Data    int
	Tail    int
	Len     int
	DataLen int
	End     int
	Err     error
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("pool: %s(%d): %v [data=%d tail=%d len=%d data_len=%d buf_end=%d]",
		e.Op, e.N, e.Err, e.Data, e.Tail, e.Len, e.DataLen, e.End)
}

func (e *BoundsError) Unwrap() error { return e.Err }

func (b *Buffer) fatal(op string, n int, err error) {
	panic(&BoundsError{
		Op:      op,
		N:       n,
		Data:    b.data,
		Tail:    b.tail,
		Len:     b.len,
		DataLen: b.dataLen,
		End:     len(b.storage),
		Err:     err,
	})
}

func (b *Buffer) assertLinear(op string, n int) {
	if b.dataLen != 0 {
		b.fatal(op, n, api.ErrNonlinear)
	}
}

// Reserve moves data and tail forward by n to open headroom on an empty
// buffer. Storage is not touched.
func (b *Buffer) Reserve(n int) {
	if n < 0 || b.tail+n > len(b.storage) {
		b.fatal("reserve", n, api.ErrBufferOverflow)
	}
	b.data += n
	b.tail += n
}

// Append grows the payload by n bytes at tail and returns the new region
// for the caller to fill.
func (b *Buffer) Append(n int) []byte {
	b.assertLinear("append", n)
	if n < 0 || b.tail+n > len(b.storage) {
		b.fatal("append", n, api.ErrBufferOverflow)
	}
	return b.AppendUnchecked(n)
}

// AppendUnchecked is Append without the overflow diagnostic.
func (b *Buffer) AppendUnchecked(n int) []byte {
	b.assertLinear("append", n)
	t := b.tail
	b.tail += n
	b.len += n
	return b.storage[t:b.tail]
}

// TryAppend is Append returning api.ErrNoTailroom instead of panicking
// when storage is too short.
func (b *Buffer) TryAppend(n int) ([]byte, error) {
	if n < 0 {
		return nil, api.ErrInvalidArgument
	}
	if b.tail+n > len(b.storage) {
		return nil, api.ErrNoTailroom
	}
	return b.Append(n), nil
}

// Prepend moves data back by n bytes to make room for a header and
// returns the new front of the payload.
func (b *Buffer) Prepend(n int) []byte {
	if n < 0 || b.data-n < 0 {
		b.fatal("prepend", n, api.ErrBufferUnderflow)
	}
	return b.PrependUnchecked(n)
}

// PrependUnchecked is Prepend without the underflow diagnostic.
func (b *Buffer) PrependUnchecked(n int) []byte {
	b.data -= n
	b.len += n
	return b.storage[b.data:b.tail]
}

// TryPrepend is Prepend returning api.ErrNoHeadroom instead of panicking.
func (b *Buffer) TryPrepend(n int) ([]byte, error) {
	if n < 0 {
		return nil, api.ErrInvalidArgument
	}
	if b.data-n < 0 {
		return nil, api.ErrNoHeadroom
	}
	return b.Prepend(n), nil
}

// Consume strips n bytes from the front of the payload. It reports false,
// leaving the buffer untouched, when n exceeds the payload length.
func (b *Buffer) Consume(n int) ([]byte, bool) {
	if n < 0 || n > b.len {
		return nil, false
	}
	return b.ConsumeUnchecked(n), true
}

// ConsumeUnchecked strips n bytes without the length check. Dropping below
// the fragment byte count is fatal.
func (b *Buffer) ConsumeUnchecked(n int) []byte {
	if b.len-n < b.dataLen {
		b.fatal("consume", n, api.ErrFragmentAccounting)
	}
	b.len -= n
	b.data += n
	return b.storage[b.data:b.tail]
}

// Trim caps the payload at n bytes by pulling tail back toward data.
// Buffers already within bound are left alone.
func (b *Buffer) Trim(n int) {
	if n < 0 {
		n = 0
	}
	if b.len > n {
		b.assertLinear("trim", n)
		b.len = n
		b.tail = b.data + n
	}
}
