// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// ipv4HeaderLen is the length of an IPv4 header without options.
	ipv4HeaderLen = 20
	// tcpHeaderLen is the length of a TCP header without options.
	tcpHeaderLen = 20
	// segmentLen is the length of a SYN probe on the wire.
	segmentLen = ipv4HeaderLen + tcpHeaderLen
	// ipProtoTCP is the IP protocol number of TCP.
	ipProtoTCP = 6

	// probeIPID is the IP identification of every probe.
	probeIPID = 54321
	// probeWindow is the advertised TCP window of every probe.
	probeWindow = 5840
)

// TCP flag bits as found in byte 13 of the TCP header.
const (
	tcpFlagFIN = 1 << iota
	tcpFlagSYN
	tcpFlagRST
	tcpFlagPSH
	tcpFlagACK
	tcpFlagURG
)

var errBufferTooSmall = errors.New("buffer too small for SYN segment")

// buildSYN writes an IPv4 header followed by a TCP SYN header into buf
// and returns the number of bytes written.
//
// Both checksums are computed after all other fields are in place.
// The segment only depends on its arguments, probes of the same TTL are
// byte-identical.
func buildSYN(buf []byte, id Identity, ttl uint8) (int, error) {
	if len(buf) < segmentLen {
		return 0, fmt.Errorf("%w: have %d bytes, need %d", errBufferTooSmall, len(buf), segmentLen)
	}
	pkt := buf[:segmentLen]
	clear(pkt)

	src, dst := id.Src.As4(), id.Dst.As4()

	ip := pkt[:ipv4HeaderLen]
	ip[0] = 4<<4 | ipv4HeaderLen/4
	binary.BigEndian.PutUint16(ip[2:4], segmentLen)
	binary.BigEndian.PutUint16(ip[4:6], probeIPID)
	ip[8] = ttl
	ip[9] = ipProtoTCP
	copy(ip[12:16], src[:])
	copy(ip[16:20], dst[:])
	binary.BigEndian.PutUint16(ip[10:12], checksum(ip))

	tcp := pkt[ipv4HeaderLen:]
	binary.BigEndian.PutUint16(tcp[0:2], id.SrcPort)
	binary.BigEndian.PutUint16(tcp[2:4], id.DstPort)
	// sequence and acknowledgment numbers stay zero
	tcp[12] = tcpHeaderLen / 4 << 4
	tcp[13] = tcpFlagSYN
	binary.BigEndian.PutUint16(tcp[14:16], probeWindow)
	binary.BigEndian.PutUint16(tcp[16:18], tcpChecksum(src, dst, tcp))

	return segmentLen, nil
}

// checksum returns the internet checksum (RFC 1071) of b.
// An odd trailing byte is summed as the high byte of a zero-padded word.
func checksum(b []byte) uint16 {
	return ^fold(sum(0, b))
}

// tcpChecksum returns the checksum of a TCP segment including
// the IPv4 pseudo-header built from src and dst.
func tcpChecksum(src, dst [4]byte, segment []byte) uint16 {
	var pseudo [12]byte
	copy(pseudo[0:4], src[:])
	copy(pseudo[4:8], dst[:])
	pseudo[9] = ipProtoTCP
	binary.BigEndian.PutUint16(pseudo[10:12], uint16(len(segment))) // #nosec G115 // segments are far below 64k

	return ^fold(sum(sum(0, pseudo[:]), segment))
}

func sum(acc uint32, b []byte) uint32 {
	for len(b) > 1 {
		acc += uint32(binary.BigEndian.Uint16(b))
		b = b[2:]
	}
	if len(b) == 1 {
		acc += uint32(b[0]) << 8
	}
	return acc
}

// fold adds the carries above bit 15 back into the low 16 bits
// until none are left.
func fold(acc uint32) uint16 {
	for acc>>16 != 0 {
		acc = acc&0xffff + acc>>16
	}
	return uint16(acc) // #nosec G115 // fits after folding
}
