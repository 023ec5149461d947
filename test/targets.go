// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test provides fixtures shared by the tests of geotracer.
package test

import (
	"context"
	"fmt"
	"net/netip"
	"testing"
	"time"

	"github.com/telekom/geotracer/internal/traceroute"
)

const (
	// ReachableHost is answered after [ReachableHops] hops.
	ReachableHost = "reachable.geotracer.telekom.com"
	// ReachableHops is the distance to [ReachableHost].
	ReachableHops = 4
	// SilentHost never answers, its traces run until the max hops.
	SilentHost = "silent.geotracer.telekom.com"
	// BrokenHost cannot be resolved.
	BrokenHost = "broken.geotracer.telekom.com"
)

// Route describes the path a fake client reports for a host.
type Route struct {
	// Hops is the distance to the host, the max hops are used if 0.
	Hops int
	// Reached marks the last hop as the host.
	Reached bool
	// Err is returned instead of a trace.
	Err error
}

// DefaultRoutes are the routes to the hosts above.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		ReachableHost: {Hops: ReachableHops, Reached: true},
		SilentHost:    {},
		BrokenHost:    {Err: traceroute.ErrResolve},
	}
}

// RouterAt returns the address of the fake router at ttl.
func RouterAt(ttl int) netip.Addr {
	return netip.AddrFrom4([4]byte{10, 0, byte(ttl >> 8), byte(ttl)}) // #nosec G115 // ttl fits into two bytes
}

// FakeClient returns a traceroute client answering from routes
// without sending a single packet. Unknown hosts fail to resolve.
func FakeClient(t testing.TB, routes map[string]Route) *traceroute.ClientMock {
	t.Helper()
	return &traceroute.ClientMock{
		RunFunc: func(ctx context.Context, target traceroute.Target, opts *traceroute.Options) (traceroute.Result, error) {
			route, ok := routes[target.Address]
			if !ok {
				return traceroute.Result{}, fmt.Errorf("failed to resolve %s: %w", target.Address, traceroute.ErrResolve)
			}
			if route.Err != nil {
				return traceroute.Result{}, route.Err
			}

			maxTTL := opts.MaxTTL
			if maxTTL <= 0 {
				maxTTL = traceroute.DefaultMaxTTL
			}
			n := route.Hops
			if n <= 0 || n > maxTTL {
				n = maxTTL
			}

			res := traceroute.Result{Target: target, HopCount: n}
			for ttl := 1; ttl <= n; ttl++ {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				hop := traceroute.Hop{TTL: ttl, RTTs: []time.Duration{traceroute.Timeout, traceroute.Timeout, traceroute.Timeout}}
				if route.Hops > 0 {
					hop.Addr = RouterAt(ttl)
					hop.RTTs = []time.Duration{time.Duration(ttl) * time.Millisecond, time.Duration(ttl+1) * time.Millisecond, traceroute.Timeout}
				}
				if route.Reached && ttl == route.Hops {
					hop.Reached = true
					res.Reached = true
				}
				res.Hops = append(res.Hops, hop)
				if opts.OnHop != nil {
					opts.OnHop(hop)
				}
			}
			return res, nil
		},
	}
}
