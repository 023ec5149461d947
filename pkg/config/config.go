// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/telekom/geotracer/internal/geolocation"
	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/api"
	"github.com/telekom/geotracer/pkg/report"
	"github.com/telekom/geotracer/pkg/telemetry"
)

// Config is the startup configuration of geotracer.
// It is assembled by viper from flags, environment and the config file.
type Config struct {
	// Port is the destination port of the SYN probes.
	Port int `yaml:"port" mapstructure:"port"`
	// MaxHops is the highest TTL probed.
	MaxHops int `yaml:"maxHops" mapstructure:"maxHops"`
	// Timeout is the reply budget of a single probe.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// ResolveNames enables reverse lookups of the hop addresses.
	ResolveNames bool `yaml:"resolveNames" mapstructure:"resolveNames"`
	// Output is the rendering of a one-shot trace.
	Output report.Format `yaml:"output" mapstructure:"output"`
	// MetricsFile receives the metrics of a one-shot trace in the
	// prometheus text format. Nothing is written if empty.
	MetricsFile string `yaml:"metricsFile" mapstructure:"metricsFile"`
	// Geolocation configures the location lookups of the hops.
	Geolocation geolocation.Config `yaml:"geolocation" mapstructure:"geolocation"`
	// Telemetry configures the export of the traces' spans.
	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
	// Serve configures the periodic traces of the serve command.
	Serve ServeConfig `yaml:"serve" mapstructure:"serve"`
}

// ServeConfig is the configuration of the serve command.
type ServeConfig struct {
	// Interval is the pause between two runs over all targets.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Targets are traced in addition to the targets of the loader.
	Targets []traceroute.Target `yaml:"targets" mapstructure:"targets"`
	// Loader configures the targets file.
	Loader LoaderConfig `yaml:"loader" mapstructure:"loader"`
	// Api is the configuration for the api server
	Api api.Config `yaml:"api" mapstructure:"api"`
}

// LoaderConfig is the configuration of the targets file loader.
type LoaderConfig struct {
	// Path of the yaml targets file. Only the static targets are traced if empty.
	Path string `yaml:"path" mapstructure:"path"`
	// Interval between two reloads of the file. The file is read once if 0.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Options returns the traceroute options of the configuration.
func (c *Config) Options() traceroute.Options {
	return traceroute.Options{
		MaxTTL:       c.MaxHops,
		Timeout:      c.Timeout,
		ResolveNames: c.ResolveNames,
	}
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasGeolocation returns true if the hops are located.
func (c *Config) HasGeolocation() bool {
	return c.Geolocation.Enabled
}

// HasLoader returns true if targets are read from a file.
func (c *ServeConfig) HasLoader() bool {
	return c.Loader.Path != ""
}
