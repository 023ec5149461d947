// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"net/netip"
	"time"
)

// recvBufSize is large enough for any IPv4 datagram we care about.
const recvBufSize = 4096

// conn is the set of raw sockets a traceroute run probes with.
//
//go:generate go tool moq -out conn_moq.go . conn
type conn interface {
	// Send transmits a complete IPv4 datagram to dst.
	Send(pkt []byte, dst netip.Addr) error
	// Wait blocks until one of the receive sockets has data or the timeout
	// elapses. The TCP socket is only watched if watchTCP is set.
	// Returns [errInterrupted] if the wait was interrupted by a signal.
	Wait(timeout time.Duration, watchTCP bool) (readiness, error)
	// ReadICMP reads one datagram from the ICMP receive socket.
	ReadICMP(buf []byte) (int, netip.Addr, error)
	// ReadTCP reads one datagram from the TCP receive socket.
	ReadTCP(buf []byte) (int, netip.Addr, error)
	// Close releases all sockets.
	Close() error
}

// readiness tells which receive sockets have a datagram pending.
type readiness struct {
	icmp bool
	tcp  bool
}

func (r readiness) any() bool {
	return r.icmp || r.tcp
}
