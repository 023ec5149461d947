// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/internal/traceroute"
	"gopkg.in/yaml.v3"
)

var _ Loader = (*FileLoader)(nil)

// TargetsFile is the content of a targets file.
type TargetsFile struct {
	Targets []traceroute.Target `yaml:"targets" mapstructure:"targets"`
}

// FileLoader reads the targets from a yaml file and merges
// them with the static targets of the startup configuration.
type FileLoader struct {
	config   LoaderConfig
	static   []traceroute.Target
	cTargets chan<- []traceroute.Target
	done     chan struct{}
	fsys     fs.FS
}

func NewFileLoader(cfg *Config, cTargets chan<- []traceroute.Target) *FileLoader {
	return &FileLoader{
		config:   cfg.Serve.Loader,
		static:   cfg.Serve.Targets,
		cTargets: cTargets,
		done:     make(chan struct{}, 1),
		fsys:     os.DirFS(filepath.Dir(cfg.Serve.Loader.Path)),
	}
}

// Run reads the targets file.
// The file will be read periodically defined by the loader interval configuration.
// If the interval is 0, the file is only read once and the loader is disabled.
// The static targets are sent even if the file cannot be read on startup.
func (f *FileLoader) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	targets, err := f.getTargets(ctx)
	if err != nil {
		log.WarnContext(ctx, "Could not read targets file", "error", err)
		err = fmt.Errorf("could not read targets file: %w", err)
	}
	if sErr := f.send(ctx, merge(f.static, targets)); sErr != nil {
		return sErr
	}

	if f.config.Interval == 0 {
		log.InfoContext(ctx, "File Loader disabled")
		return err
	}

	tick := time.NewTicker(f.config.Interval)
	defer tick.Stop()

	for {
		select {
		case <-f.done:
			log.InfoContext(ctx, "File Loader terminated")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			targets, err := f.getTargets(ctx)
			if err != nil {
				log.WarnContext(ctx, "Could not read targets file", "error", err)
				continue
			}

			log.DebugContext(ctx, "Successfully read targets file", "targets", len(targets))
			if err := f.send(ctx, merge(f.static, targets)); err != nil {
				return err
			}
		}
	}
}

func (f *FileLoader) send(ctx context.Context, targets []traceroute.Target) error {
	select {
	case f.cTargets <- targets:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// getTargets reads and validates the targets of the file.
func (f *FileLoader) getTargets(ctx context.Context) (targets []traceroute.Target, err error) {
	log := logger.FromContext(ctx).With("path", f.config.Path)

	file, err := f.fsys.Open(filepath.Base(f.config.Path))
	if err != nil {
		log.ErrorContext(ctx, "Failed to open targets file", "error", err)
		return nil, fmt.Errorf("failed to open targets file: %w", err)
	}
	defer func() {
		cerr := file.Close()
		if cerr != nil {
			log.ErrorContext(ctx, "Failed to close targets file", "error", cerr)
		}
		err = errors.Join(cerr, err)
	}()

	b, err := io.ReadAll(file)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read targets file", "error", err)
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var tf TargetsFile
	if err := yaml.Unmarshal(b, &tf); err != nil {
		log.ErrorContext(ctx, "Failed to parse targets file", "error", err)
		return nil, fmt.Errorf("failed to parse targets file: %w", err)
	}

	for i, t := range tf.Targets {
		if vErr := t.Validate(); vErr != nil {
			err = errors.Join(err, fmt.Errorf("targets[%d]: %w", i, vErr))
		}
	}
	if err != nil {
		log.ErrorContext(ctx, "Invalid targets in targets file", "error", err)
		return nil, err
	}

	return tf.Targets, nil
}

func (f *FileLoader) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	select {
	case f.done <- struct{}{}:
		log.DebugContext(ctx, "Sending signal to shut down file loader")
	default:
	}
}
