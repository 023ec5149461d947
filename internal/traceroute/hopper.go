package traceroute

import (
	"context"
	"net/netip"

	"github.com/telekom/geotracer/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracer is an interface that defines the methods required for probing a single hop.
//
//go:generate go tool moq -out tracer_moq.go . tracer
type tracer interface {
	// probeTTL probes the hop at the given TTL.
	probeTTL(ctx context.Context, ttl int) Hop
}

// Locator enriches a hop address with a human readable location.
//
//go:generate go tool moq -out locator_moq.go . Locator
type Locator interface {
	// Lookup returns the location of addr. It never fails,
	// unknown locations are described by a placeholder.
	Lookup(ctx context.Context, addr netip.Addr) string
}

// hopper drives a traceroute hop by hop, from TTL 1 upwards.
type hopper struct {
	client     tracer
	locator    Locator
	resolver   func(ctx context.Context, addr netip.Addr) string
	otelTracer trace.Tracer
	target     Target
	opts       Options
}

// run probes one TTL after the other until the destination confirms
// the connection attempt or the maximum TTL is reached.
// A hop without any reply never stops the run.
//
// The context is only checked between hops. On cancellation the hops
// probed so far are returned together with the context's error.
func (h *hopper) run(ctx context.Context) (Result, error) {
	res := Result{Target: h.target, Hops: make([]Hop, 0, h.opts.MaxTTL)}

	for ttl := 1; ttl <= h.opts.MaxTTL; ttl++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		hop := h.hop(ctx, ttl)
		res.Hops = append(res.Hops, hop)
		res.HopCount = ttl
		if h.opts.OnHop != nil {
			h.opts.OnHop(hop)
		}

		if hop.Reached {
			res.Reached = true
			break
		}
	}

	logHops(ctx, res.Hops)
	return res, nil
}

// hop probes a single TTL inside its own span and enriches the result.
func (h *hopper) hop(ctx context.Context, ttl int) Hop {
	ctx, hopSpan := h.otelTracer.Start(ctx, h.target.String(), trace.WithAttributes(
		attribute.Stringer("traceroute.target.address", h.target),
		attribute.Int("traceroute.target.ttl", ttl),
	))
	defer hopSpan.End()

	hop := h.client.probeTTL(ctx, ttl)
	if hop.Responded() {
		if h.resolver != nil {
			hop.Name = h.resolver(ctx, hop.Addr)
		}
		if h.locator != nil {
			hop.Location = h.locator.Lookup(ctx, hop.Addr)
		}
	}

	logger.FromContext(ctx).DebugContext(ctx, "Hop probed", "hop", hop.String())
	hopSpan.SetAttributes(
		attribute.Bool("traceroute.target.reached", hop.Reached),
		attribute.Int("traceroute.hop.replies", len(hop.RTTs)),
	)
	if hop.Responded() {
		hopSpan.SetAttributes(attribute.Stringer("traceroute.hop.addr", hop.Addr))
	}
	return hop
}
