// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/binary"
	"net/netip"

	"golang.org/x/net/ipv4"
)

const (
	// icmpHeaderLen is the length of the ICMP header preceding the quoted datagram.
	icmpHeaderLen = 8
	// quotedTransportLen is the part of the original transport header
	// every ICMP error is guaranteed to carry.
	quotedTransportLen = 8
)

// ipv4Header is the view of an IPv4 header needed for reply matching.
type ipv4Header struct {
	// len is the header length in bytes as announced by the IHL field.
	len      int
	src, dst netip.Addr
}

// parseIPv4Header reads the fixed part of the IPv4 header at the start of b.
// It fails for buffers shorter than the announced header and for
// headers that are not IPv4 or announce less than the minimum length.
func parseIPv4Header(b []byte) (ipv4Header, bool) {
	if len(b) < ipv4.HeaderLen {
		return ipv4Header{}, false
	}
	if b[0]>>4 != ipv4.Version {
		return ipv4Header{}, false
	}
	hlen := int(b[0]&0x0f) * 4
	if hlen < ipv4.HeaderLen || len(b) < hlen {
		return ipv4Header{}, false
	}
	return ipv4Header{
		len: hlen,
		src: netip.AddrFrom4([4]byte(b[12:16])),
		dst: netip.AddrFrom4([4]byte(b[16:20])),
	}, true
}

// matchICMP reports whether b is an ICMP time exceeded or destination
// unreachable message quoting a probe sent with id.
// The returned address is the sender of the ICMP message.
//
// Anything too short or of another type is not a match.
func matchICMP(b []byte, id Identity) (netip.Addr, bool) {
	outer, ok := parseIPv4Header(b)
	if !ok || len(b) < outer.len+icmpHeaderLen {
		return netip.Addr{}, false
	}

	switch ipv4.ICMPType(b[outer.len]) {
	case ipv4.ICMPTypeTimeExceeded, ipv4.ICMPTypeDestinationUnreachable:
	default:
		return netip.Addr{}, false
	}

	quoted := b[outer.len+icmpHeaderLen:]
	if len(quoted) < ipv4.HeaderLen+quotedTransportLen {
		return netip.Addr{}, false
	}
	inner, ok := parseIPv4Header(quoted)
	if !ok || len(quoted) < inner.len+quotedTransportLen {
		return netip.Addr{}, false
	}

	transport := quoted[inner.len:]
	srcPort := binary.BigEndian.Uint16(transport[0:2])
	dstPort := binary.BigEndian.Uint16(transport[2:4])

	if inner.src != id.Src || inner.dst != id.Dst ||
		srcPort != id.SrcPort || dstPort != id.DstPort {
		return netip.Addr{}, false
	}
	return outer.src, true
}

// matchTCP reports whether b is a TCP segment sent by the probed
// destination back to our source address and port.
// reached is true for SYN-ACK and RST replies.
func matchTCP(b []byte, id Identity) (matched, reached bool) {
	ip, ok := parseIPv4Header(b)
	if !ok || len(b) < ip.len+tcpHeaderLen {
		return false, false
	}

	tcp := b[ip.len:]
	srcPort := binary.BigEndian.Uint16(tcp[0:2])
	dstPort := binary.BigEndian.Uint16(tcp[2:4])

	if ip.src != id.Dst || ip.dst != id.Src ||
		srcPort != id.DstPort || dstPort != id.SrcPort {
		return false, false
	}

	flags := tcp[13]
	synAck := flags&tcpFlagSYN != 0 && flags&tcpFlagACK != 0
	return true, synAck || flags&tcpFlagRST != 0
}
