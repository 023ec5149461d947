// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/telekom/geotracer/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ tracer = (*prober)(nil)

// ProbeState tracks which kinds of replies a single probe got.
// It only moves forward: no reply, then ICMP or TCP, then both.
type ProbeState uint8

const (
	// StateNoReply is the state of a probe without any matching reply.
	StateNoReply ProbeState = iota
	// StateICMP is reached by an ICMP error quoting the probe.
	StateICMP
	// StateTCP is reached by the destination's SYN-ACK or RST.
	StateTCP
	// StateBoth is reached when both kinds of replies matched.
	StateBoth
)

func (s ProbeState) String() string {
	switch s {
	case StateNoReply:
		return "no reply"
	case StateICMP:
		return "icmp"
	case StateTCP:
		return "tcp"
	case StateBoth:
		return "icmp+tcp"
	default:
		return "unknown"
	}
}

func (s ProbeState) withICMP() ProbeState {
	switch s {
	case StateNoReply:
		return StateICMP
	case StateTCP:
		return StateBoth
	default:
		return s
	}
}

func (s ProbeState) withTCP() ProbeState {
	switch s {
	case StateNoReply:
		return StateTCP
	case StateICMP:
		return StateBoth
	default:
		return s
	}
}

// tcpAnswered reports whether the probe got its authoritative TCP reply.
// No further TCP datagrams are read for the probe once this is true.
func (s ProbeState) tcpAnswered() bool {
	return s == StateTCP || s == StateBoth
}

// prober sends the SYN probes of a single TTL and collects their replies.
type prober struct {
	conn    conn
	id      Identity
	timeout time.Duration
	// now returns the current time, its monotonic reading measures RTTs.
	now func() time.Time
	buf []byte
}

func newProber(c conn, id Identity, timeout time.Duration) *prober {
	return &prober{
		conn:    c,
		id:      id,
		timeout: timeout,
		now:     time.Now,
		buf:     make([]byte, recvBufSize),
	}
}

// probeTTL sends [probesPerHop] probes with the given TTL, one after another,
// and waits up to the timeout for the replies of each.
//
// The hop's address is the sender of the first matching reply. The hop
// keeps every probe, its RTTs are the samples of all probes in order.
func (p *prober) probeTTL(ctx context.Context, ttl int) Hop {
	hop := Hop{TTL: ttl, Probes: make([]Probe, 0, probesPerHop)}
	for i := range probesPerHop {
		hop.Probes = append(hop.Probes, p.probe(ctx, &hop, i))
	}
	hop.RTTs = samples(hop.Probes)
	return hop
}

// probe sends one SYN and listens on both receive sockets until the
// timeout is spent. An ICMP error does not end the wait since the
// destination's TCP reply may still follow within the same budget.
func (p *prober) probe(ctx context.Context, hop *Hop, index int) Probe {
	log := logger.FromContext(ctx).With("ttl", hop.TTL, "probe", index)
	span := trace.SpanFromContext(ctx)
	pr := Probe{Index: index, RTT: Timeout, State: StateNoReply}

	var pkt [segmentLen]byte
	n, err := buildSYN(pkt[:], p.id, uint8(hop.TTL)) // #nosec G115 // Client.Run rejects TTLs above 255
	if err != nil {
		log.ErrorContext(ctx, "Failed to build SYN probe", "error", err)
		return pr
	}

	pr.Sent = p.now()
	if err = p.conn.Send(pkt[:n], p.id.Dst); err != nil {
		// The probe will simply time out.
		log.WarnContext(ctx, "Failed to send SYN probe", "error", err)
		span.RecordError(err)
	}

	for {
		remaining := p.timeout - p.now().Sub(pr.Sent)
		if remaining <= 0 {
			break
		}

		ready, err := p.conn.Wait(remaining, !pr.State.tcpAnswered())
		if errors.Is(err, errInterrupted) {
			continue
		}
		if err != nil {
			log.ErrorContext(ctx, "Failed to wait for replies", "error", err)
			break
		}
		if !ready.any() {
			break
		}

		if ready.icmp {
			if from, ok := p.readICMP(ctx); ok {
				p.record(ctx, hop, &pr, from, "icmp")
				pr.State = pr.State.withICMP()
			}
		}

		if ready.tcp && !pr.State.tcpAnswered() {
			if from, matched, reached := p.readTCP(ctx); matched {
				p.record(ctx, hop, &pr, from, "tcp")
				pr.State = pr.State.withTCP()
				if reached {
					hop.Reached = true
				}
			}
		}
	}

	log.DebugContext(ctx, "Probe finished", "state", pr.State.String())
	return pr
}

// readICMP reads one datagram from the ICMP socket and matches it against the probe.
func (p *prober) readICMP(ctx context.Context) (netip.Addr, bool) {
	n, _, err := p.conn.ReadICMP(p.buf)
	if err != nil {
		logger.FromContext(ctx).DebugContext(ctx, "Failed to read ICMP datagram", "error", err)
		return netip.Addr{}, false
	}
	return matchICMP(p.buf[:n], p.id)
}

// readTCP reads one datagram from the TCP socket and matches it against the probe.
func (p *prober) readTCP(ctx context.Context) (from netip.Addr, matched, reached bool) {
	n, from, err := p.conn.ReadTCP(p.buf)
	if err != nil {
		logger.FromContext(ctx).DebugContext(ctx, "Failed to read TCP datagram", "error", err)
		return netip.Addr{}, false, false
	}
	matched, reached = matchTCP(p.buf[:n], p.id)
	return from, matched, reached
}

// record adds a reply to the probe. Only the first reply of the hop
// sets its address, only the first reply of the probe sets its RTT.
func (p *prober) record(ctx context.Context, hop *Hop, pr *Probe, from netip.Addr, proto string) {
	rtt := p.now().Sub(pr.Sent)
	pr.Replies = append(pr.Replies, rtt)
	if pr.RTT == Timeout {
		pr.RTT = rtt
	}
	if !hop.Addr.IsValid() {
		hop.Addr = from
	}

	logger.FromContext(ctx).DebugContext(ctx, "Reply matched",
		"ttl", hop.TTL,
		"probe", pr.Index,
		"protocol", proto,
		"from", from,
		"rtt", rtt,
	)
	trace.SpanFromContext(ctx).AddEvent("Reply matched", trace.WithAttributes(
		attribute.Int("traceroute.reply.probe", pr.Index),
		attribute.String("traceroute.reply.protocol", proto),
		attribute.Stringer("traceroute.reply.from", from),
		attribute.Int64("traceroute.reply.rtt_us", rtt.Microseconds()),
	))
}

// samples flattens the replies of the probes, a probe without replies
// contributes [Timeout].
func samples(probes []Probe) []time.Duration {
	rtts := make([]time.Duration, 0, len(probes))
	for _, pr := range probes {
		if len(pr.Replies) == 0 {
			rtts = append(rtts, Timeout)
			continue
		}
		rtts = append(rtts, pr.Replies...)
	}
	return rtts
}
