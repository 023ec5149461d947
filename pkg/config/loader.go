// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"slices"

	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/internal/traceroute"
)

// Loader hands the targets of the serve command to the tracer.
//
//go:generate go tool moq -out loader_moq.go . Loader
type Loader interface {
	// Run starts the loader routine.
	// The loader handles its errors by itself and retries if necessary.
	// If the context is canceled, the Run method returns an error.
	Run(context.Context) error
	// Shutdown stops the loader routine.
	Shutdown(context.Context)
}

// NewLoader returns the loader matching the configuration:
// a file loader if a targets file is configured, a static one otherwise.
func NewLoader(cfg *Config, cTargets chan<- []traceroute.Target) Loader {
	if cfg.Serve.HasLoader() {
		return NewFileLoader(cfg, cTargets)
	}
	return NewStaticLoader(cfg, cTargets)
}

// StaticLoader hands out the targets of the startup configuration once.
type StaticLoader struct {
	targets  []traceroute.Target
	cTargets chan<- []traceroute.Target
	done     chan struct{}
}

func NewStaticLoader(cfg *Config, cTargets chan<- []traceroute.Target) *StaticLoader {
	return &StaticLoader{
		targets:  slices.Clone(cfg.Serve.Targets),
		cTargets: cTargets,
		done:     make(chan struct{}, 1),
	}
}

// Run sends the static targets and waits for the shutdown.
func (s *StaticLoader) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	select {
	case s.cTargets <- s.targets:
		log.DebugContext(ctx, "Sent static targets", "targets", len(s.targets))
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-s.done:
		log.InfoContext(ctx, "Static Loader terminated")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StaticLoader) Shutdown(ctx context.Context) {
	select {
	case s.done <- struct{}{}:
		logger.FromContext(ctx).DebugContext(ctx, "Sending signal to shut down static loader")
	default:
	}
}

// merge appends the targets of b missing in a.
func merge(a, b []traceroute.Target) []traceroute.Target {
	out := slices.Clone(a)
	for _, t := range b {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
