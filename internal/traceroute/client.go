// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/telekom/geotracer/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ Client = (*synClient)(nil)
)

// Client is able to run a traceroute to a target.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Run executes the traceroute for the given target with the specified options.
	// Returns the probed hops, or an error if the traceroute could not be set up.
	Run(ctx context.Context, target Target, opts *Options) (Result, error)
}

// synClient traces with raw TCP SYN probes.
type synClient struct {
	resolve      func(ctx context.Context, host string) (netip.Addr, error)
	localAddr    func(dst netip.Addr) (netip.Addr, error)
	reservePort  func() (uint16, io.Closer, error)
	openConn     func() (conn, error)
	reverseNames func(ctx context.Context, addr netip.Addr) string
	locator      Locator
}

// NewClient returns a [Client] sending raw TCP SYN probes.
// The locator is optional, hops are not enriched with a location if it is nil.
func NewClient(locator Locator) Client {
	return &synClient{
		resolve:      resolveIPv4,
		localAddr:    localAddrFor,
		reservePort:  reservePort,
		openConn:     openRawSockets,
		reverseNames: resolveName,
		locator:      locator,
	}
}

// Run resolves the target, opens the raw sockets and probes hop by hop.
// Setup failures abort the run; hops without replies never do.
func (c *synClient) Run(ctx context.Context, target Target, opts *Options) (res Result, err error) {
	if err = target.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid target %s: %w", target, err)
	}
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if err = o.Validate(); err != nil {
		return Result{}, err
	}
	o = o.withDefaults()

	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("traceroute.synClient")
	ctx, sp := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.Stringer("traceroute.target", target),
		attribute.Int("traceroute.options.max_hops", o.MaxTTL),
		attribute.Stringer("traceroute.options.timeout", o.Timeout),
	))
	defer sp.End()
	log := logger.FromContext(ctx)

	id, release, err := c.identity(ctx, target)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = release.Close() }()

	rc, err := c.openConn()
	if err != nil {
		return Result{}, wrapError(ctx, err, "failed to open raw sockets")
	}
	defer func() {
		if cErr := rc.Close(); cErr != nil {
			log.WarnContext(ctx, "Failed to close raw sockets", "error", cErr)
			err = errors.Join(err, cErr)
		}
	}()

	log.DebugContext(ctx, "Starting SYN traceroute",
		"target", target,
		"dst", id.Dst,
		"src", id.Src,
		"srcPort", id.SrcPort,
	)
	if o.OnStart != nil {
		o.OnStart(id)
	}

	h := &hopper{
		client:     newProber(rc, id, o.Timeout),
		locator:    c.locator,
		otelTracer: tracer,
		target:     target,
		opts:       o,
	}
	if o.ResolveNames {
		h.resolver = c.reverseNames
	}

	res, err = h.run(ctx)
	res.Identity = id
	sp.SetAttributes(
		attribute.Bool("traceroute.reached", res.Reached),
		attribute.Int("traceroute.hops", res.HopCount),
	)
	return res, err
}

// identity computes the addressing of the run. The returned closer
// holds the reserved source port and must be closed after the run.
func (c *synClient) identity(ctx context.Context, target Target) (Identity, io.Closer, error) {
	dst, err := c.resolve(ctx, target.Address)
	if err != nil {
		return Identity{}, nil, wrapError(ctx, err, "failed to resolve target", "target", target.Address)
	}

	src, err := c.localAddr(dst)
	if err != nil {
		return Identity{}, nil, wrapError(ctx, err, "failed to determine local address", "dst", dst)
	}

	port, release, err := c.reservePort()
	if err != nil {
		return Identity{}, nil, wrapError(ctx, err, "failed to reserve source port")
	}

	return Identity{
		Src:     src,
		Dst:     dst,
		SrcPort: port,
		DstPort: uint16(target.Port), // #nosec G115 // validated by Target.Validate
	}, release, nil
}
