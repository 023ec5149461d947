// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/telekom/geotracer/internal/logger"
)

var (
	// ErrMissingURL is returned when an exporting exporter has no collector url.
	ErrMissingURL = errors.New("collector url is required")
	// ErrInvalidURL is returned when the collector url cannot be parsed.
	ErrInvalidURL = errors.New("invalid collector url")
	// ErrInvalidCertPath is returned when the custom certificate cannot be read.
	ErrInvalidCertPath = errors.New("invalid tls certificate path")
)

// Config configures the export of the spans of every traceroute.
type Config struct {
	// Enabled turns span export on.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// Exporter selects where spans go.
	Exporter Exporter `json:"exporter" yaml:"exporter" mapstructure:"exporter"`
	// Url is the collector endpoint of the otlp exporters.
	Url string `json:"url" yaml:"url" mapstructure:"url"`
	// Token is sent as bearer token to the collector.
	Token string `json:"token" yaml:"token" mapstructure:"token"`
	// TLS configures the connection to the collector.
	TLS TLSConfig `json:"tls" yaml:"tls" mapstructure:"tls"`
}

type TLSConfig struct {
	// Enabled is a flag to enable or disable the tls
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// CertPath is the path to the tls certificate file.
	// This is only required if the otel backend uses custom TLS certificates.
	CertPath string `json:"certPath" yaml:"certPath" mapstructure:"certPath"`
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	if vErr := c.Exporter.Validate(); vErr != nil {
		log.ErrorContext(ctx, "Invalid exporter", "error", vErr)
		err = errors.Join(err, vErr)
	}

	if c.Exporter.IsExporting() {
		if c.Url == "" {
			log.ErrorContext(ctx, "Url is required for otlp exporter", "exporter", c.Exporter)
			err = errors.Join(err, fmt.Errorf("%w for exporter %q", ErrMissingURL, c.Exporter))
		} else if _, pErr := url.ParseRequestURI(c.Url); pErr != nil {
			log.ErrorContext(ctx, "Collector url is not a valid url", "url", c.Url)
			err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidURL, pErr))
		}
	}

	if c.TLS.Enabled && c.TLS.CertPath != "" {
		if _, sErr := os.Stat(c.TLS.CertPath); sErr != nil {
			log.ErrorContext(ctx, "TLS certificate is not readable", "path", c.TLS.CertPath)
			err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidCertPath, sErr))
		}
	}
	return err
}
