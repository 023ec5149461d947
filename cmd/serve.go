// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/geotracer"
)

// NewCmdServe creates the command tracing hosts periodically
func NewCmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [host...]",
		Short: "Trace hosts periodically and serve the results",
		Long: "Traces the given hosts and the hosts of the targets file one after the other, every interval.\n" +
			"The latest traces are served as JSON on /v1/trace, their metrics on /metrics.",
	}
	flags := addTracingFlags(cmd)
	cmd.Flags().Duration("interval", time.Minute, "pause between two traces of all hosts")
	cmd.Flags().String("address", ":8080", "listening address of the api")
	cmd.Flags().String("targets-file", "", "yaml file with additional targets")
	cmd.Flags().Duration("reload-interval", 0, "interval to reload the targets file, 0 reads it once")

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		keys := map[string]string{
			"interval":        "serve.interval",
			"address":         "serve.api.address",
			"targets-file":    "serve.loader.path",
			"reload-interval": "serve.loader.interval",
		}
		for flag, key := range tracingKeys {
			keys[flag] = key
		}
		return bindFlags(cmd, keys)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}
		for _, host := range args {
			cfg.Serve.Targets = append(cfg.Serve.Targets, traceroute.Target{Address: host, Port: cfg.Port})
		}
		if err = cfg.ValidateServe(ctx); err != nil {
			return err
		}

		err = geotracer.New(cfg, newClient(cfg)).Run(ctx)
		if errors.Is(err, geotracer.ErrFinalShutdown) {
			return nil
		}
		return err
	}
	return cmd
}
