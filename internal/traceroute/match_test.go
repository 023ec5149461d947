// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"net/netip"
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
)

// withInnerOptions returns the probe with 4 bytes of IP options
// inserted into its header, as some stacks quote them.
func withInnerOptions(probe []byte) []byte {
	out := make([]byte, 0, len(probe)+4)
	out = append(out, probe[:ipv4HeaderLen]...)
	out = append(out, 0x01, 0x01, 0x01, 0x01)
	out = append(out, probe[ipv4HeaderLen:]...)
	out[0] = 4<<4 | 6
	return out
}

func TestMatchICMP(t *testing.T) {
	timeExceededCode := layers.CreateICMPv4TypeCode(layers.ICMPv4TypeTimeExceeded, layers.ICMPv4CodeTTLExceeded)
	otherPort := testID
	otherPort.SrcPort++
	otherDstPort := testID
	otherDstPort.DstPort = 80
	otherDst := testID
	otherDst.Dst = netip.MustParseAddr("1.1.1.1")
	otherSrc := testID
	otherSrc.Src = netip.MustParseAddr("192.168.1.11")

	tests := []struct {
		name     string
		datagram []byte
		wantAddr netip.Addr
		wantOK   bool
	}{
		{
			name:     "time exceeded quoting the probe",
			datagram: timeExceeded(t, testRouter, testID),
			wantAddr: testRouter,
			wantOK:   true,
		},
		{
			name:     "destination unreachable quoting the probe",
			datagram: icmpReply(t, testDst, layers.CreateICMPv4TypeCode(layers.ICMPv4TypeDestinationUnreachable, layers.ICMPv4CodePort), synProbe(t, testID, 12)),
			wantAddr: testDst,
			wantOK:   true,
		},
		{
			name:     "administratively prohibited",
			datagram: icmpReply(t, testRouter, layers.CreateICMPv4TypeCode(layers.ICMPv4TypeDestinationUnreachable, layers.ICMPv4CodeCommAdminProhibited), synProbe(t, testID, 4)),
			wantAddr: testRouter,
			wantOK:   true,
		},
		{
			name:     "router quoting the full probe",
			datagram: icmpReplyFull(t, testRouter, timeExceededCode, synProbe(t, testID, 2)),
			wantAddr: testRouter,
			wantOK:   true,
		},
		{
			name:     "quoted header with options",
			datagram: icmpReplyFull(t, testRouter, timeExceededCode, withInnerOptions(synProbe(t, testID, 2))),
			wantAddr: testRouter,
			wantOK:   true,
		},
		{
			name:     "echo reply",
			datagram: icmpReply(t, testRouter, layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoReply, 0), synProbe(t, testID, 1)),
		},
		{
			name:     "redirect",
			datagram: icmpReply(t, testRouter, layers.CreateICMPv4TypeCode(layers.ICMPv4TypeRedirect, 0), synProbe(t, testID, 1)),
		},
		{
			name:     "other source port",
			datagram: timeExceeded(t, testRouter, otherPort),
		},
		{
			name:     "other destination port",
			datagram: timeExceeded(t, testRouter, otherDstPort),
		},
		{
			name:     "other destination",
			datagram: timeExceeded(t, testRouter, otherDst),
		},
		{
			name:     "other source",
			datagram: timeExceeded(t, testRouter, otherSrc),
		},
		{
			name:     "quoted transport header cut short",
			datagram: icmpReplyFull(t, testRouter, timeExceededCode, synProbe(t, testID, 1)[:ipv4HeaderLen+4]),
		},
		{
			name:     "quoted header with options cut short",
			datagram: icmpReplyFull(t, testRouter, timeExceededCode, withInnerOptions(synProbe(t, testID, 1))[:ipv4HeaderLen+quotedTransportLen]),
		},
		{
			name:     "nothing quoted",
			datagram: icmpReplyFull(t, testRouter, timeExceededCode, nil),
		},
		{
			name:     "outer header only",
			datagram: timeExceeded(t, testRouter, testID)[:ipv4HeaderLen],
		},
		{
			name:     "shorter than an ip header",
			datagram: timeExceeded(t, testRouter, testID)[:10],
		},
		{
			name: "empty",
		},
		{
			name:     "tcp reply on the icmp socket",
			datagram: destReply(t, testID, tcpFlags{syn: true, ack: true}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, ok := matchICMP(tt.datagram, testID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAddr, addr)
		})
	}
}

func TestMatchICMP_NotIPv4(t *testing.T) {
	datagram := timeExceeded(t, testRouter, testID)
	datagram[0] = 6<<4 | 5
	_, ok := matchICMP(datagram, testID)
	assert.False(t, ok)
}

func TestMatchICMP_HeaderLengthBeyondBuffer(t *testing.T) {
	datagram := timeExceeded(t, testRouter, testID)[:ipv4HeaderLen+icmpHeaderLen]
	datagram[0] = 4<<4 | 15
	_, ok := matchICMP(datagram, testID)
	assert.False(t, ok)
}

func TestMatchTCP(t *testing.T) {
	tests := []struct {
		name        string
		datagram    []byte
		wantMatched bool
		wantReached bool
	}{
		{
			name:        "syn-ack",
			datagram:    destReply(t, testID, tcpFlags{syn: true, ack: true}),
			wantMatched: true,
			wantReached: true,
		},
		{
			name:        "rst",
			datagram:    destReply(t, testID, tcpFlags{rst: true}),
			wantMatched: true,
			wantReached: true,
		},
		{
			name:        "rst-ack",
			datagram:    destReply(t, testID, tcpFlags{rst: true, ack: true}),
			wantMatched: true,
			wantReached: true,
		},
		{
			name:        "syn without ack",
			datagram:    destReply(t, testID, tcpFlags{syn: true}),
			wantMatched: true,
		},
		{
			name:        "ack only",
			datagram:    destReply(t, testID, tcpFlags{ack: true}),
			wantMatched: true,
		},
		{
			name:        "fin",
			datagram:    destReply(t, testID, tcpFlags{fin: true, ack: true}),
			wantMatched: true,
		},
		{
			name:     "other source address",
			datagram: tcpReply(t, testRouter, testID.DstPort, testID.Src, testID.SrcPort, tcpFlags{syn: true, ack: true}),
		},
		{
			name:     "other source port",
			datagram: tcpReply(t, testID.Dst, 8443, testID.Src, testID.SrcPort, tcpFlags{syn: true, ack: true}),
		},
		{
			name:     "other destination port",
			datagram: tcpReply(t, testID.Dst, testID.DstPort, testID.Src, testID.SrcPort+1, tcpFlags{rst: true}),
		},
		{
			name:     "other destination address",
			datagram: tcpReply(t, testID.Dst, testID.DstPort, testRouter, testID.SrcPort, tcpFlags{rst: true}),
		},
		{
			name:     "our own probe",
			datagram: synProbe(t, testID, 64),
		},
		{
			name:     "truncated tcp header",
			datagram: destReply(t, testID, tcpFlags{syn: true, ack: true})[:ipv4HeaderLen+tcpHeaderLen-1],
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, reached := matchTCP(tt.datagram, testID)
			assert.Equal(t, tt.wantMatched, matched)
			assert.Equal(t, tt.wantReached, reached)
		})
	}
}
