// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package geotracer runs the serve mode: it traces the configured
// targets periodically and serves the latest results over HTTP.
package geotracer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/api"
	"github.com/telekom/geotracer/pkg/checks"
	tracecheck "github.com/telekom/geotracer/pkg/checks/traceroute"
	"github.com/telekom/geotracer/pkg/config"
	"github.com/telekom/geotracer/pkg/telemetry"
)

const shutdownTimeout = time.Second * 30

// Geotracer is the long running tracer of the serve command
type Geotracer struct {
	// config is the startup configuration
	config *config.Config
	// api serves the results
	api api.API
	// loader hands out the targets to trace
	loader config.Loader
	// telemetry owns the metrics registry and the tracer provider
	telemetry telemetry.Provider
	// check traces the targets periodically
	check checks.Check
	// results keeps the latest result of the check
	results *store
	// cTargets is used to signal that the targets have changed
	cTargets chan []traceroute.Target
	// cResult receives every finished run of the check
	cResult chan checks.ResultDTO
	// cErr is used to handle non-recoverable errors of the components
	cErr chan error
	// cDone is used to signal that the geotracer was shut down
	cDone chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// New creates a new geotracer tracing with client.
func New(cfg *config.Config, client traceroute.Client) *Geotracer {
	g := &Geotracer{
		config:    cfg,
		api:       api.New(cfg.Serve.Api),
		telemetry: telemetry.New(cfg.Telemetry),
		check:     tracecheck.NewCheck(client),
		results:   &store{},
		cTargets:  make(chan []traceroute.Target, 1),
		cResult:   make(chan checks.ResultDTO, 1),
		cErr:      make(chan error, 1),
		cDone:     make(chan struct{}, 1),
	}
	g.loader = config.NewLoader(cfg, g.cTargets)
	return g
}

// Run starts all components and blocks until the geotracer is shut down.
// It always returns an error, [ErrFinalShutdown] after a shutdown.
func (g *Geotracer) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	if err := g.telemetry.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	for _, c := range g.check.GetMetricCollectors() {
		if err := g.telemetry.GetRegistry().Register(c); err != nil {
			return fmt.Errorf("failed to register metrics of check %s: %w", g.check.Name(), err)
		}
	}
	if err := g.api.RegisterRoutes(ctx, g.routes()...); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	go func() {
		g.cErr <- g.loader.Run(ctx)
	}()
	go func() {
		g.cErr <- g.api.Run(ctx)
	}()
	go func() {
		g.cErr <- g.check.Run(ctx, g.cResult)
	}()

	for {
		select {
		case targets := <-g.cTargets:
			g.updateTargets(ctx, targets)
		case res := <-g.cResult:
			g.results.save(res.Result)
			log.DebugContext(ctx, "Stored result", "check", res.Name)
		case <-ctx.Done():
			g.shutdown(ctx)
		case err := <-g.cErr:
			if err != nil {
				log.ErrorContext(ctx, "Non-recoverable error in geotracer component", "error", err)
				g.shutdown(ctx)
			}
		case <-g.cDone:
			log.InfoContext(ctx, "Geotracer was shut down")
			return ErrFinalShutdown
		}
	}
}

// updateTargets hands the new targets to the check together with
// the tracing options of the startup configuration.
func (g *Geotracer) updateTargets(ctx context.Context, targets []traceroute.Target) {
	log := logger.FromContext(ctx)
	cfg := &tracecheck.Config{
		Targets:  targets,
		Interval: g.config.Serve.Interval,
		Options:  g.config.Options(),
	}
	if err := g.check.UpdateConfig(cfg); err != nil {
		log.ErrorContext(ctx, "Failed to update targets", "error", err)
		return
	}
	log.InfoContext(ctx, "Updated targets", "targets", len(targets))
}

// shutdown shuts down the geotracer and all managed components gracefully.
func (g *Geotracer) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	g.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down geotracer")
		var sErrs ErrShutdown
		sErrs.errAPI = g.api.Shutdown(ctx)
		sErrs.errTelemetry = g.telemetry.Shutdown(ctx)
		g.loader.Shutdown(ctx)
		g.check.Shutdown()

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "errors", sErrs)
		}

		// Signal that shutdown is complete
		g.cDone <- struct{}{}
	})
}
