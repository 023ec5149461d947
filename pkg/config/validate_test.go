// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/geotracer/internal/geolocation"
	"github.com/telekom/geotracer/internal/helper"
	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/api"
	"github.com/telekom/geotracer/pkg/report"
	"github.com/telekom/geotracer/pkg/telemetry"
)

func validConfig() Config {
	return Config{
		Port:    443,
		MaxHops: 30,
		Timeout: time.Second,
		Output:  report.Table,
		Geolocation: geolocation.Config{
			Enabled: true,
			URL:     geolocation.DefaultURL,
			Timeout: geolocation.DefaultTimeout,
			Retry:   helper.RetryConfig{Count: 1, Delay: time.Second},
		},
		Serve: ServeConfig{
			Interval: time.Minute,
			Targets:  []traceroute.Target{{Address: "example.com", Port: 443}},
			Api:      api.Config{ListeningAddress: ":8080"},
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:   "geolocation is only validated when enabled",
			mutate: func(c *Config) { c.Geolocation = geolocation.Config{URL: "::", Retry: helper.RetryConfig{Count: 100}} },
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = 65536 },
			wantErr: []error{ErrInvalidPort},
		},
		{
			name:    "max hops do not fit into the ttl",
			mutate:  func(c *Config) { c.MaxHops = 256 },
			wantErr: []error{ErrInvalidMaxHops},
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: []error{ErrInvalidTimeout},
		},
		{
			name:    "unknown output",
			mutate:  func(c *Config) { c.Output = "xml" },
			wantErr: []error{ErrInvalidOutput, report.ErrUnknownFormat},
		},
		{
			name: "invalid geolocation",
			mutate: func(c *Config) {
				c.Geolocation.URL = "not a url"
				c.Geolocation.Timeout = -time.Second
				c.Geolocation.Retry.Count = 6
			},
			wantErr: []error{ErrInvalidGeolocationURL, ErrInvalidGeolocationTimeout, ErrInvalidRetryCount},
		},
		{
			name: "invalid telemetry",
			mutate: func(c *Config) {
				c.Telemetry = telemetry.Config{Enabled: true, Exporter: telemetry.HTTP}
			},
			wantErr: []error{telemetry.ErrMissingURL},
		},
		{
			name: "every problem is reported",
			mutate: func(c *Config) {
				c.Port = 0
				c.MaxHops = 0
				c.Timeout = -time.Second
				c.Output = ""
			},
			wantErr: []error{ErrInvalidPort, ErrInvalidMaxHops, ErrInvalidTimeout, ErrInvalidOutput},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)

			err := c.Validate(t.Context())
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestConfig_ValidateServe(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:   "output is ignored",
			mutate: func(c *Config) { c.Output = "" },
		},
		{
			name: "targets file only",
			mutate: func(c *Config) {
				c.Serve.Targets = nil
				c.Serve.Loader = LoaderConfig{Path: "targets.yaml", Interval: time.Minute}
			},
		},
		{
			name:    "nothing to trace",
			mutate:  func(c *Config) { c.Serve.Targets = nil },
			wantErr: []error{ErrMissingTargets},
		},
		{
			name: "invalid intervals",
			mutate: func(c *Config) {
				c.Serve.Interval = 0
				c.Serve.Loader.Interval = -time.Second
			},
			wantErr: []error{ErrInvalidInterval, ErrInvalidLoaderInterval},
		},
		{
			name:    "missing api address",
			mutate:  func(c *Config) { c.Serve.Api = api.Config{} },
			wantErr: []error{api.ErrMissingAddress},
		},
		{
			name:    "tracing settings are validated too",
			mutate:  func(c *Config) { c.MaxHops = -1 },
			wantErr: []error{ErrInvalidMaxHops},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)

			err := c.ValidateServe(t.Context())
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}

	t.Run("invalid static target", func(t *testing.T) {
		c := validConfig()
		c.Serve.Targets = append(c.Serve.Targets, traceroute.Target{Address: "example.org"})
		assert.ErrorContains(t, c.ValidateServe(t.Context()), "serve.targets[1]")
	})
}

func TestConfig_Options(t *testing.T) {
	c := validConfig()
	c.ResolveNames = true

	assert.Equal(t, traceroute.Options{MaxTTL: 30, Timeout: time.Second, ResolveNames: true}, c.Options())
	assert.True(t, c.HasGeolocation())
	assert.False(t, c.HasTelemetry())
	assert.False(t, c.Serve.HasLoader())
}
