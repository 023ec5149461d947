// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/pkg"
	"github.com/telekom/geotracer/pkg/report"
)

// NewCmdRoot creates a new root command
func NewCmdRoot(version string) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "geotracer",
		Short: "Geotracer, the TCP SYN traceroute with hop locations",
		Long: "Geotracer discovers the routers between this host and a TCP service by sending SYN probes\n" +
			"with increasing TTL. Every responding hop is annotated with its round trip times and location.",
		Version:      version,
		SilenceUsage: true,
		// errors are printed by Execute
		SilenceErrors: true,
	}

	cobra.OnInitialize(func() {
		initConfig(cfgFile)
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.geotracer.yaml)")

	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	pkg.Version = version
	cmd := BuildCmd(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logger.IntoContext(ctx, logger.NewLogger())
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func BuildCmd(version string) *cobra.Command {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdTrace())
	cmd.AddCommand(NewCmdServe())
	return cmd
}

func initConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".geotracer" (without an extension)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".geotracer")
	}

	viper.SetOptions(viper.ExperimentalBindStruct())
	viper.SetEnvPrefix("geotracer")
	dotreplacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(dotreplacer)
	viper.AutomaticEnv()
	setDefaults()

	// stdout carries the trace report
	if err := viper.ReadInConfig(); err == nil {
		_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults sets the defaults of the keys without a flag.
func setDefaults() {
	viper.SetDefault("geolocation.enabled", true)
	viper.SetDefault("output", string(report.Table))
}

// tracingFlags are the flags shared by the trace and serve commands.
type tracingFlags struct {
	noGeo bool
}

// addTracingFlags adds the probing flags to cmd.
func addTracingFlags(cmd *cobra.Command) *tracingFlags {
	f := &tracingFlags{}
	cmd.Flags().IntP("port", "p", defaultPort, "destination port of the SYN probes")
	cmd.Flags().IntP("max-hops", "m", defaultMaxHops, "highest TTL to probe")
	cmd.Flags().DurationP("timeout", "w", defaultTimeout, "time to wait for the replies to a single probe")
	cmd.Flags().Bool("resolve-names", false, "resolve the names of the responding hops")
	cmd.Flags().BoolVar(&f.noGeo, "no-geo", false, "do not look up the locations of the responding hops")
	return f
}

// bindFlags binds the flags of cmd to their config keys. It runs right
// before the command so that the flags of the executed command win.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// tracingKeys maps the shared probing flags to their config keys.
var tracingKeys = map[string]string{
	"port":          "port",
	"max-hops":      "maxHops",
	"timeout":       "timeout",
	"resolve-names": "resolveNames",
}
