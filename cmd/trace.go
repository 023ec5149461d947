// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/geotracer/internal/geolocation"
	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/internal/traceroute"
	tracecheck "github.com/telekom/geotracer/pkg/checks/traceroute"
	"github.com/telekom/geotracer/pkg/config"
	"github.com/telekom/geotracer/pkg/report"
	"github.com/telekom/geotracer/pkg/telemetry"
)

const (
	defaultPort    = 443
	defaultMaxHops = 30
	defaultTimeout = time.Second
)

// NewCmdTrace creates the command tracing a single host
func NewCmdTrace() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <host>",
		Short: "Trace the route to a host",
		Long: "Sends three TCP SYN probes per TTL towards the port of the host until the host answers\n" +
			"or the max hops are reached. Requires the privileges to open raw sockets.",
		Args: cobra.ExactArgs(1),
	}
	flags := addTracingFlags(cmd)
	cmd.Flags().StringP("output", "o", string(report.Table), fmt.Sprintf("output format, one of %v", report.Formats()))
	cmd.Flags().String("metrics-file", "", "write the metrics of the trace in the prometheus text format to this file")

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		keys := map[string]string{"output": "output", "metrics-file": "metricsFile"}
		for flag, key := range tracingKeys {
			keys[flag] = key
		}
		return bindFlags(cmd, keys)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}
		if err = cfg.Validate(cmd.Context()); err != nil {
			return err
		}
		return trace(cmd.Context(), cmd.OutOrStdout(), cfg, newClient(cfg), args[0])
	}
	return cmd
}

// loadConfig assembles the configuration from flags, environment and config file.
func loadConfig(flags *tracingFlags) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if flags.noGeo {
		cfg.Geolocation.Enabled = false
	}
	return cfg, nil
}

// newClient returns a traceroute client locating the hops if enabled.
func newClient(cfg *config.Config) traceroute.Client {
	var locator traceroute.Locator
	if cfg.HasGeolocation() {
		locator = geolocation.New(cfg.Geolocation)
	}
	return traceroute.NewClient(locator)
}

// trace traces host and writes the report to w.
// Only errors preventing the trace from starting are returned,
// a partial trace is reported like a complete one.
func trace(ctx context.Context, w io.Writer, cfg *config.Config, client traceroute.Client, host string) (err error) {
	log := logger.FromContext(ctx)

	tel := telemetry.New(cfg.Telemetry)
	if err = tel.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if sErr := tel.Shutdown(sCtx); sErr != nil {
			log.WarnContext(ctx, "Failed to shut down tracing", "error", sErr)
		}
	}()

	target := traceroute.Target{Address: host, Port: cfg.Port}
	opts := cfg.Options()

	var table *report.TableWriter
	if cfg.Output.Streaming() {
		table = report.NewTableWriter(w)
		opts.OnStart = func(id traceroute.Identity) { table.Banner(target, id, opts) }
		opts.OnHop = table.Hop
	}

	res, err := client.Run(ctx, target, &opts)
	if err != nil {
		if traceroute.IsSetupError(err) {
			return err
		}
		log.WarnContext(ctx, "Trace did not finish cleanly", "target", target.String(), "error", err)
	}
	res.Target = target

	if table != nil {
		table.Summary(res, opts.MaxTTL)
		err = table.Err()
	} else {
		err = report.Write(w, cfg.Output, res)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.MetricsFile != "" {
		if err = tracecheck.WriteTextfile(cfg.MetricsFile, res); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
		log.DebugContext(ctx, "Wrote metrics file", "path", cfg.MetricsFile)
	}
	return nil
}
