// File: protocol/ipv4.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// IPv4 and UDP encapsulation on pool buffers. Header structs come from
// golang.org/x/net/ipv4; checksums and in-place field access use gvisor's
// header package.

package protocol

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/ipv4"
	"gvisor.dev/gvisor/pkg/tcpip/header"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/pool"
)

const maxIPv4Options = 40

// PushIPv4 prepends h in front of the current payload and records it as the
// network header. Version, Len, TotalLen and Checksum are computed and
// written back into h.
func PushIPv4(b *pool.Buffer, h *ipv4.Header) error {
	if h == nil || len(h.Options)%4 != 0 || len(h.Options) > maxIPv4Options {
		return api.ErrInvalidArgument
	}
	h.Version = ipv4.Version
	h.Len = ipv4.HeaderLen + len(h.Options)
	h.TotalLen = h.Len + b.Len()
	h.Checksum = 0
	if h.TotalLen > 0xffff {
		return api.ErrInvalidArgument
	}
	raw, err := h.Marshal()
	if err != nil {
		return fmt.Errorf("%w: %v", api.ErrInvalidArgument, err)
	}
	hdr, err := b.TryPrepend(len(raw))
	if err != nil {
		return err
	}
	copy(hdr, raw)
	ip := header.IPv4(hdr)
	// Marshal uses host order for these two fields on some BSDs.
	ip.SetTotalLength(uint16(h.TotalLen))
	binary.BigEndian.PutUint16(hdr[6:8], uint16(h.Flags)<<13|uint16(h.FragOff&0x1fff))
	ip.SetChecksum(^ip.CalculateChecksum())
	h.Checksum = int(ip.Checksum())
	b.SetNetworkHeader()
	return nil
}

// PullIPv4 validates and strips the IPv4 header at the data cursor. The
// network and transport header offsets are recorded and link-layer padding
// beyond the datagram's total length is trimmed.
func PullIPv4(b *pool.Buffer) (*ipv4.Header, error) {
	if b.IsNonlinear() {
		return nil, api.ErrNotSupported
	}
	raw := b.Bytes()
	h, err := ipv4.ParseHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortHeader, err)
	}
	h.TotalLen = int(header.IPv4(raw).TotalLength())
	fo := binary.BigEndian.Uint16(raw[6:8])
	h.Flags = ipv4.HeaderFlags(fo >> 13)
	h.FragOff = int(fo & 0x1fff)
	if h.Version != ipv4.Version || h.Len < ipv4.HeaderLen || h.TotalLen < h.Len || h.TotalLen > len(raw) {
		return nil, ErrMalformed
	}
	if header.IPv4(raw[:h.Len]).CalculateChecksum() != 0xffff {
		return nil, ErrBadChecksum
	}
	b.SetNetworkHeader()
	b.Consume(h.Len)
	b.Trim(h.TotalLen - h.Len)
	b.SetTransportHeader()
	return h, nil
}

// PushUDP prepends a UDP header covering the current payload. The checksum
// is left zero, which IPv4 permits.
func PushUDP(b *pool.Buffer, srcPort, dstPort uint16) error {
	length := header.UDPMinimumSize + b.Len()
	if length > 0xffff {
		return api.ErrInvalidArgument
	}
	hdr, err := b.TryPrepend(header.UDPMinimumSize)
	if err != nil {
		return err
	}
	header.UDP(hdr).Encode(&header.UDPFields{
		SrcPort: srcPort,
		DstPort: dstPort,
		Length:  uint16(length),
	})
	b.SetTransportHeader()
	return nil
}

// PullUDP strips the UDP header at the data cursor and trims the payload
// to the length the header declares.
func PullUDP(b *pool.Buffer) (header.UDP, error) {
	if b.IsNonlinear() {
		return nil, api.ErrNotSupported
	}
	if b.Len() < header.UDPMinimumSize {
		return nil, ErrShortHeader
	}
	b.SetTransportHeader()
	udp := header.UDP(b.Bytes()[:header.UDPMinimumSize])
	n := int(udp.Length())
	if n < header.UDPMinimumSize || n > b.Len() {
		return nil, ErrMalformed
	}
	b.Consume(header.UDPMinimumSize)
	b.Trim(n - header.UDPMinimumSize)
	return udp, nil
}
