// File: pool/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffer is one preallocated packet with cursor state for in-place header
// construction and removal. Layout of the storage region:
//
//	0 (buf_start)        data           tail             len(storage) (buf_end)
//	|---- headroom ------|---- payload ---|---- tailroom ----|

package pool

import "github.com/momentics/hioload-rtskb/api"

// DataBufAlign is the alignment of every buffer's storage inside its region.
const DataBufAlign = 16

// Packet types, as seen by the receive path.
const (
	PacketHost uint8 = iota
	PacketBroadcast
	PacketMulticast
	PacketOtherHost
	PacketOutgoing
)

// Checksum states.
const (
	ChecksumNone uint8 = iota
	ChecksumHW
	ChecksumUnnecessary
)

// Layer names a header layer whose offset a buffer can record.
type Layer uint8

const (
	LayerLink Layer = iota
	LayerNetwork
	LayerTransport
	numLayers
)

func (l Layer) String() string {
	switch l {
	case LayerLink:
		return "link"
	case LayerNetwork:
		return "network"
	case LayerTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Buffer is a fixed-capacity packet buffer. Buffers are created only by
// BufferPool.Extend and destroyed only by Shrink/Release while free.
type Buffer struct {
	handle Handle
	next   Handle // valid only while queued
	queue  *Queue // nil when held by a caller
	pool   *BufferPool
	region *region

	storage []byte
	data    int
	tail    int
	len     int
	dataLen int

	hdr [numLayers]int // storage offsets, -1 when unset

	// Priority selects the transmit level; 0 is served first.
	Priority uint32
	Protocol uint16
	PktType  uint8
	IPSummed uint8
	Csum     uint32
	// RxStamp is the arrival time in nanoseconds, set by the receiving driver.
	RxStamp int64
	// Socket and Route are weak back-references; the buffer never owns them.
	Socket any
	Route  any
}

// Handle returns the buffer's stable arena index.
func (b *Buffer) Handle() Handle { return b.handle }

// Pool returns the pool the buffer returns to on Free.
func (b *Buffer) Pool() *BufferPool { return b.pool }

// Queued reports whether the buffer is linked into a queue.
func (b *Buffer) Queued() bool { return b.queue != nil }

// Len is the total payload length, fragments included.
func (b *Buffer) Len() int { return b.len }

// DataLen is the number of payload bytes held in attached fragments.
func (b *Buffer) DataLen() int { return b.dataLen }

// HeadLen is the payload length held in the linear region.
func (b *Buffer) HeadLen() int { return b.len - b.dataLen }

// IsNonlinear reports whether part of the payload lives outside storage.
func (b *Buffer) IsNonlinear() bool { return b.dataLen != 0 }

// Headroom is the free space in front of data.
func (b *Buffer) Headroom() int { return b.data }

// Tailroom is the free space behind tail.
func (b *Buffer) Tailroom() int { return len(b.storage) - b.tail }

// Cap is the size of the storage region.
func (b *Buffer) Cap() int { return len(b.storage) }

// Offset reports the data cursor relative to the start of storage.
func (b *Buffer) Offset() int { return b.data }

// Bytes returns the linear payload [data, tail). The slice aliases storage.
func (b *Buffer) Bytes() []byte { return b.storage[b.data:b.tail] }

// AddFragmentLen accounts n payload bytes carried by an attached fragment.
func (b *Buffer) AddFragmentLen(n int) {
	if n < 0 {
		b.fatal("fragment", n, api.ErrFragmentAccounting)
	}
	b.len += n
	b.dataLen += n
}

// SetHeader records the current data cursor as the start of layer l.
func (b *Buffer) SetHeader(l Layer) { b.hdr[l] = b.data }

// SetHeaderAt records off, relative to the data cursor, as the start of layer l.
// The resulting storage offset must lie inside the buffer.
func (b *Buffer) SetHeaderAt(l Layer, off int) bool {
	abs := b.data + off
	if abs < 0 || abs > b.tail {
		return false
	}
	b.hdr[l] = abs
	return true
}

// HeaderOffset returns the storage offset of layer l, or -1.
func (b *Buffer) HeaderOffset(l Layer) int { return b.hdr[l] }

// Header returns storage from layer l's offset up to tail, or nil when unset.
// The slice is a view; it is only meaningful until the buffer is freed.
func (b *Buffer) Header(l Layer) []byte {
	off := b.hdr[l]
	if off < 0 || off > b.tail {
		return nil
	}
	return b.storage[off:b.tail]
}

// SetLinkHeader marks data as the link-layer header start.
func (b *Buffer) SetLinkHeader() { b.SetHeader(LayerLink) }

// SetNetworkHeader marks data as the network-layer header start.
func (b *Buffer) SetNetworkHeader() { b.SetHeader(LayerNetwork) }

// SetTransportHeader marks data as the transport-layer header start.
func (b *Buffer) SetTransportHeader() { b.SetHeader(LayerTransport) }

// LinkHeader is Header(LayerLink).
func (b *Buffer) LinkHeader() []byte { return b.Header(LayerLink) }

// NetworkHeader is Header(LayerNetwork).
func (b *Buffer) NetworkHeader() []byte { return b.Header(LayerNetwork) }

// TransportHeader is Header(LayerTransport).
func (b *Buffer) TransportHeader() []byte { return b.Header(LayerTransport) }

// Free returns the buffer to its current pool.
func (b *Buffer) Free() { Free(b) }

// reset prepares a buffer handed out by Alloc.
func (b *Buffer) reset() {
	b.data = 0
	b.tail = 0
	b.len = 0
	b.dataLen = 0
	for i := range b.hdr {
		b.hdr[i] = -1
	}
	b.Priority = 0
	b.Protocol = 0
	b.PktType = PacketHost
	b.IPSummed = ChecksumNone
	b.Csum = 0
	b.RxStamp = 0
	b.Socket = nil
	b.Route = nil
}
