// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package telemetry owns the Prometheus registry and the OpenTelemetry
// tracer provider of a geotracer process.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/pkg"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "geotracer"

var _ Provider = (*manager)(nil)

// Provider hands out the metrics registry and manages tracing.
type Provider interface {
	// GetRegistry returns the registry the checks register their collectors with.
	GetRegistry() *prometheus.Registry
	// InitTracing installs the global tracer provider.
	InitTracing(ctx context.Context) error
	// Shutdown flushes pending spans and closes the tracer provider.
	Shutdown(ctx context.Context) error
}

type manager struct {
	config   Config
	registry *prometheus.Registry
	tp       *sdktrace.TracerProvider
}

// New creates a registry with the Go runtime and process collectors and
// the build info of this binary.
//
//nolint:gocritic
func New(config Config) Provider {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		newBuildInfo(pkg.Version),
	)
	return &manager{config: config, registry: registry}
}

func (m *manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// InitTracing installs a global tracer provider exporting through the
// configured exporter. Nothing is installed if telemetry is disabled.
func (m *manager) InitTracing(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if !m.config.Enabled {
		log.DebugContext(ctx, "Tracing disabled")
		return nil
	}

	res, err := newResource(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to describe the geotracer resource", "error", err)
		return err
	}
	exporter, err := m.config.Exporter.Create(ctx, &m.config)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create span exporter", "exporter", m.config.Exporter, "error", err)
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	m.tp = sdktrace.NewTracerProvider(
		// one span per run and hop, sampling everything stays cheap
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(newBatcher(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(m.tp)
	log.DebugContext(ctx, "Tracing initialized", "exporter", m.config.Exporter, "url", m.config.Url)
	return nil
}

// Shutdown flushes and closes the tracer provider.
func (m *manager) Shutdown(ctx context.Context) error {
	if m.tp == nil {
		return nil
	}
	if err := m.tp.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to flush pending spans", "error", err)
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	logger.FromContext(ctx).DebugContext(ctx, "Tracing shutdown")
	return nil
}

func newResource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// newBatcher exports the spans in batches. A 30 hop trace with three
// probes per hop fits into a single batch.
func newBatcher(exporter sdktrace.SpanExporter) sdktrace.SpanProcessor {
	const (
		batchTimeout = 5 * time.Second
		maxQueueSize = 1000
		maxBatchSize = 100
	)
	return sdktrace.NewBatchSpanProcessor(exporter,
		sdktrace.WithBatchTimeout(batchTimeout),
		sdktrace.WithMaxQueueSize(maxQueueSize),
		sdktrace.WithMaxExportBatchSize(maxBatchSize),
	)
}

func version() string {
	if pkg.Version == "" {
		return "dev"
	}
	return pkg.Version
}
