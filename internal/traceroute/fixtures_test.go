// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"net/netip"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/require"
)

var (
	testSrc    = netip.MustParseAddr("192.168.1.10")
	testDst    = netip.MustParseAddr("93.184.216.34")
	testRouter = netip.MustParseAddr("10.0.0.1")
	testID     = Identity{Src: testSrc, Dst: testDst, SrcPort: 40123, DstPort: 443}
)

// tcpFlags selects the flags of a TCP reply fixture.
type tcpFlags struct {
	syn, ack, rst, fin bool
}

func serialize(t testing.TB, l ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, l...))
	return buf.Bytes()
}

// synProbe returns the probe segment we would send for id and ttl.
func synProbe(t testing.TB, id Identity, ttl uint8) []byte {
	t.Helper()
	buf := make([]byte, segmentLen)
	n, err := buildSYN(buf, id, ttl)
	require.NoError(t, err)
	return buf[:n]
}

// icmpReply returns an ICMP error sent by router to id.Src quoting
// the first 28 bytes of quoted, as routers do.
func icmpReply(t testing.TB, router netip.Addr, typeCode layers.ICMPv4TypeCode, quoted []byte) []byte {
	t.Helper()
	if len(quoted) > ipv4HeaderLen+quotedTransportLen {
		quoted = quoted[:ipv4HeaderLen+quotedTransportLen]
	}
	return icmpReplyFull(t, router, typeCode, quoted)
}

// icmpReplyFull is like icmpReply but quotes all of quoted.
func icmpReplyFull(t testing.TB, router netip.Addr, typeCode layers.ICMPv4TypeCode, quoted []byte) []byte {
	t.Helper()
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    router.AsSlice(),
		DstIP:    testSrc.AsSlice(),
	}
	icmp := &layers.ICMPv4{TypeCode: typeCode}
	return serialize(t, ip, icmp, gopacket.Payload(quoted))
}

// timeExceeded returns the ICMP time exceeded message for a probe of id.
func timeExceeded(t testing.TB, router netip.Addr, id Identity) []byte {
	t.Helper()
	return icmpReply(t, router, layers.CreateICMPv4TypeCode(layers.ICMPv4TypeTimeExceeded, layers.ICMPv4CodeTTLExceeded), synProbe(t, id, 1))
}

// tcpReply returns a TCP segment from src:sport to dst:dport.
func tcpReply(t testing.TB, src netip.Addr, sport uint16, dst netip.Addr, dport uint16, f tcpFlags) []byte {
	t.Helper()
	ip := &layers.IPv4{
		Version:  4,
		TTL:      57,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    src.AsSlice(),
		DstIP:    dst.AsSlice(),
	}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(sport),
		DstPort: layers.TCPPort(dport),
		Seq:     1234,
		Ack:     1,
		SYN:     f.syn,
		ACK:     f.ack,
		RST:     f.rst,
		FIN:     f.fin,
		Window:  64240,
	}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	return serialize(t, ip, tcp)
}

// destReply returns the destination's TCP answer to a probe of id.
func destReply(t testing.TB, id Identity, f tcpFlags) []byte {
	t.Helper()
	return tcpReply(t, id.Dst, id.DstPort, id.Src, id.SrcPort, f)
}

// wake is what the receive sockets hold on a single wake-up of the wait loop.
type wake struct {
	icmp     []byte
	icmpFrom netip.Addr
	tcp      []byte
	tcpFrom  netip.Addr
	// err is returned by Wait instead of any readiness.
	err error
}

// scriptedConn returns a conn mock replaying the wakes of every probe in
// send order. A probe without further wakes sees its timeout expire.
func scriptedConn(t testing.TB, probes ...[]wake) *connMock {
	t.Helper()
	var (
		sent  = -1
		queue []wake
		cur   wake
	)
	return &connMock{
		SendFunc: func(_ []byte, dst netip.Addr) error {
			sent++
			queue = nil
			if sent < len(probes) {
				queue = probes[sent]
			}
			return nil
		},
		WaitFunc: func(_ time.Duration, watchTCP bool) (readiness, error) {
			if len(queue) == 0 {
				return readiness{}, nil
			}
			cur, queue = queue[0], queue[1:]
			if cur.err != nil {
				return readiness{}, cur.err
			}
			return readiness{icmp: cur.icmp != nil, tcp: watchTCP && cur.tcp != nil}, nil
		},
		ReadICMPFunc: func(buf []byte) (int, netip.Addr, error) {
			return copy(buf, cur.icmp), cur.icmpFrom, nil
		},
		ReadTCPFunc: func(buf []byte) (int, netip.Addr, error) {
			return copy(buf, cur.tcp), cur.tcpFrom, nil
		},
		CloseFunc: func() error { return nil },
	}
}

// stepClock returns a clock advancing by step on every reading.
func stepClock(step time.Duration) func() time.Time {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}
