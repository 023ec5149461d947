// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter selects the destination of exported spans.
type Exporter string

const (
	// HTTP exports spans to an otlp collector via http/protobuf.
	HTTP Exporter = "http"
	// GRPC exports spans to an otlp collector via grpc.
	GRPC Exporter = "grpc"
	// STDOUT writes spans to stderr, stdout is reserved for reports.
	STDOUT Exporter = "stdout"
	// NOOP drops all spans.
	NOOP Exporter = "noop"
)

func (e Exporter) String() string {
	return string(e)
}

// Validate fails for unknown exporters.
func (e Exporter) Validate() error {
	switch e {
	case HTTP, GRPC, STDOUT, NOOP:
		return nil
	default:
		return fmt.Errorf("unsupported exporter %q", string(e))
	}
}

// IsExporting reports whether the exporter sends spans to a collector.
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// Create builds the span exporter for the given configuration.
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	switch e {
	case HTTP:
		opts, err := httpOptions(config)
		if err != nil {
			return nil, err
		}
		return otlptracehttp.New(ctx, opts...)
	case GRPC:
		opts, err := grpcOptions(config)
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, opts...)
	case STDOUT:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	case NOOP:
		return noopExporter{}, nil
	default:
		return nil, e.Validate()
	}
}

func httpOptions(config *Config) ([]otlptracehttp.Option, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(config.Url)}
	if config.Token != "" {
		opts = append(opts, otlptracehttp.WithHeaders(authHeader(config.Token)))
	}
	if !config.TLS.Enabled {
		return append(opts, otlptracehttp.WithInsecure()), nil
	}
	tlsCfg, err := tlsConfig(config.TLS)
	if err != nil {
		return nil, err
	}
	return append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg)), nil
}

func grpcOptions(config *Config) ([]otlptracegrpc.Option, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpointURL(config.Url)}
	if config.Token != "" {
		opts = append(opts, otlptracegrpc.WithHeaders(authHeader(config.Token)))
	}
	if !config.TLS.Enabled {
		return append(opts, otlptracegrpc.WithInsecure()), nil
	}
	tlsCfg, err := tlsConfig(config.TLS)
	if err != nil {
		return nil, err
	}
	return append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg))), nil
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// tlsConfig returns the client tls configuration, trusting the custom
// certificate in addition to the system pool if one is configured.
func tlsConfig(c TLSConfig) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.CertPath == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(c.CertPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCertPath, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: no certificate found in %s", ErrInvalidCertPath, c.CertPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

// noopExporter drops all spans.
type noopExporter struct{}

func (noopExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (noopExporter) Shutdown(context.Context) error                             { return nil }
