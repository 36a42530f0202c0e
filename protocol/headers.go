// File: protocol/headers.go
// Package protocol builds and strips wire headers in place on pool buffers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Views are zero-copy: they alias buffer storage and are only valid while
// the caller owns the buffer. Field access goes through gvisor's header
// package.

package protocol

import (
	"errors"

	"gvisor.dev/gvisor/pkg/tcpip/header"

	"github.com/momentics/hioload-rtskb/pool"
)

var (
	ErrNoHeader    = errors.New("header offset not set")
	ErrShortHeader = errors.New("header truncated")
	ErrMalformed   = errors.New("malformed header")
	ErrBadChecksum = errors.New("header checksum mismatch")
)

// EthernetView returns the link header recorded on b.
func EthernetView(b *pool.Buffer) (header.Ethernet, error) {
	h := b.LinkHeader()
	if h == nil {
		return nil, ErrNoHeader
	}
	if len(h) < header.EthernetMinimumSize {
		return nil, ErrShortHeader
	}
	return header.Ethernet(h[:header.EthernetMinimumSize]), nil
}

// IPv4View returns the network header recorded on b, options included.
// The view extends to the end of the linear payload so Payload() works.
func IPv4View(b *pool.Buffer) (header.IPv4, error) {
	h := b.NetworkHeader()
	if h == nil {
		return nil, ErrNoHeader
	}
	if len(h) < header.IPv4MinimumSize {
		return nil, ErrShortHeader
	}
	ip := header.IPv4(h)
	if hl := int(ip.HeaderLength()); hl < header.IPv4MinimumSize || hl > len(h) {
		return nil, ErrShortHeader
	}
	return ip, nil
}

// UDPView returns the transport header recorded on b as UDP.
func UDPView(b *pool.Buffer) (header.UDP, error) {
	h := b.TransportHeader()
	if h == nil {
		return nil, ErrNoHeader
	}
	if len(h) < header.UDPMinimumSize {
		return nil, ErrShortHeader
	}
	return header.UDP(h), nil
}

// TCPView returns the transport header recorded on b as TCP.
func TCPView(b *pool.Buffer) (header.TCP, error) {
	h := b.TransportHeader()
	if h == nil {
		return nil, ErrNoHeader
	}
	if len(h) < header.TCPMinimumSize {
		return nil, ErrShortHeader
	}
	tcp := header.TCP(h)
	if off := int(tcp.DataOffset()); off < header.TCPMinimumSize || off > len(h) {
		return nil, ErrShortHeader
	}
	return tcp, nil
}
