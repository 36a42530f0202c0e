// File: protocol/ethernet.go
// Author: momentics <momentics@gmail.com>
//
// Ethernet II framing on pool buffers.

package protocol

import (
	"bytes"
	"net"

	"gvisor.dev/gvisor/pkg/tcpip"
	"gvisor.dev/gvisor/pkg/tcpip/header"

	"github.com/momentics/hioload-rtskb/api"
	"github.com/momentics/hioload-rtskb/pool"
)

// EtherTypeIPv4 is the Ethernet protocol number carried by IPv4 frames.
const EtherTypeIPv4 = uint16(header.IPv4ProtocolNumber)

var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// PushEthernet prepends an Ethernet II header and records it as the link
// header. b.Protocol is set to etherType.
func PushEthernet(b *pool.Buffer, src, dst net.HardwareAddr, etherType uint16) error {
	if len(src) != header.EthernetAddressSize || len(dst) != header.EthernetAddressSize {
		return api.ErrInvalidArgument
	}
	hdr, err := b.TryPrepend(header.EthernetMinimumSize)
	if err != nil {
		return err
	}
	header.Ethernet(hdr).Encode(&header.EthernetFields{
		SrcAddr: tcpip.LinkAddress(src),
		DstAddr: tcpip.LinkAddress(dst),
		Type:    tcpip.NetworkProtocolNumber(etherType),
	})
	b.SetLinkHeader()
	b.Protocol = etherType
	return nil
}

// PullEthernet strips the Ethernet header of a received frame, records the
// link and network header offsets, and classifies the packet type. When
// local is nil every unicast frame is treated as addressed to this host.
func PullEthernet(b *pool.Buffer, local net.HardwareAddr) (uint16, error) {
	if b.HeadLen() < header.EthernetMinimumSize {
		return 0, ErrShortHeader
	}
	b.SetLinkHeader()
	eth := header.Ethernet(b.Bytes()[:header.EthernetMinimumSize])
	dst := []byte(eth.DestinationAddress())
	switch {
	case bytes.Equal(dst, broadcastMAC):
		b.PktType = pool.PacketBroadcast
	case dst[0]&1 != 0:
		b.PktType = pool.PacketMulticast
	case local != nil && !bytes.Equal(dst, local):
		b.PktType = pool.PacketOtherHost
	default:
		b.PktType = pool.PacketHost
	}
	typ := uint16(eth.Type())
	b.Consume(header.EthernetMinimumSize)
	b.SetNetworkHeader()
	b.Protocol = typ
	return typ, nil
}
