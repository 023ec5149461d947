// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

//go:generate go run gen-docs.go gen-docs --path ../../docs
//go:generate go run gen-docs.go gen-docs --path ../../docs/man --format man

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	geotracercmd "github.com/telekom/geotracer/cmd"
)

func main() {
	execute()
}

func execute() {
	rootCmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generates the command line docs of geotracer",
	}
	rootCmd.AddCommand(NewCmdGenDocs())

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewCmdGenDocs creates a new gen-docs command
func NewCmdGenDocs() *cobra.Command {
	var (
		docPath string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generate the command line documentation",
		Long:  "Generate the documentation of the geotracer commands and their flags as markdown or man pages",
		RunE:  runGenDocs(&docPath, &format),
	}

	cmd.PersistentFlags().StringVar(&docPath, "path", "docs", "directory path where the files will be created")
	cmd.PersistentFlags().StringVar(&format, "format", "markdown", "format of the documentation, one of markdown, man")

	return cmd
}

// runGenDocs generates one file per command
func runGenDocs(path, format *string) func(cmd *cobra.Command, args []string) error {
	c := geotracercmd.BuildCmd("")
	c.DisableAutoGenTag = false
	return func(_ *cobra.Command, _ []string) error {
		if err := os.MkdirAll(*path, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", *path, err)
		}

		var err error
		switch *format {
		case "markdown":
			err = doc.GenMarkdownTree(c, *path)
		case "man":
			err = doc.GenManTree(c, &doc.GenManHeader{Title: "GEOTRACER", Section: "8"}, *path)
		default:
			return fmt.Errorf("unknown format %q", *format)
		}
		if err != nil {
			return fmt.Errorf("failed to generate docs: %w", err)
		}
		return nil
	}
}
