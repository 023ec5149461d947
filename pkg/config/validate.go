// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/telekom/geotracer/internal/logger"
)

const (
	maxTTL        = 255
	maxPort       = 65535
	maxRetryCount = 5
)

// Validate validates the configuration of a one-shot trace
func (c *Config) Validate(ctx context.Context) error {
	err := c.validateTracing(ctx)
	if vErr := c.Output.Validate(); vErr != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "The output format is unknown", "output", c.Output)
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidOutput, vErr))
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// validateTracing validates the settings shared by all commands.
func (c *Config) validateTracing(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	if c.Port <= 0 || c.Port > maxPort {
		log.ErrorContext(ctx, "The port must be between 1 and 65535", "port", c.Port)
		err = errors.Join(err, ErrInvalidPort)
	}

	if c.MaxHops <= 0 || c.MaxHops > maxTTL {
		log.ErrorContext(ctx, "The max hops must be between 1 and 255", "maxHops", c.MaxHops)
		err = errors.Join(err, ErrInvalidMaxHops)
	}

	if c.Timeout <= 0 {
		log.ErrorContext(ctx, "The timeout per probe must be above 0", "timeout", c.Timeout)
		err = errors.Join(err, ErrInvalidTimeout)
	}

	if c.HasGeolocation() {
		if vErr := c.validateGeolocation(ctx); vErr != nil {
			log.ErrorContext(ctx, "The geolocation configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if c.HasTelemetry() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.ErrorContext(ctx, "The telemetry configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}
	return err
}

func (c *Config) validateGeolocation(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	geo := c.Geolocation
	if geo.URL != "" {
		if _, pErr := url.ParseRequestURI(geo.URL); pErr != nil {
			log.ErrorContext(ctx, "The geolocation url is not a valid url", "url", geo.URL)
			err = errors.Join(err, ErrInvalidGeolocationURL)
		}
	}
	if geo.Timeout < 0 {
		log.ErrorContext(ctx, "The geolocation timeout must not be negative", "timeout", geo.Timeout)
		err = errors.Join(err, ErrInvalidGeolocationTimeout)
	}
	if geo.Retry.Count < 0 || geo.Retry.Count > maxRetryCount {
		log.ErrorContext(ctx, "The amount of geolocation retries should be between 0 and 5", "retryCount", geo.Retry.Count)
		err = errors.Join(err, ErrInvalidRetryCount)
	}
	return err
}

// ValidateServe validates the configuration of the serve command.
// The output format is not used there.
func (c *Config) ValidateServe(ctx context.Context) error {
	log := logger.FromContext(ctx)
	err := c.validateTracing(ctx)

	s := c.Serve
	if s.Interval <= 0 {
		log.ErrorContext(ctx, "The serve interval must be above 0", "interval", s.Interval)
		err = errors.Join(err, ErrInvalidInterval)
	}
	if s.Loader.Interval < 0 {
		log.ErrorContext(ctx, "The loader interval should be equal or above 0", "interval", s.Loader.Interval)
		err = errors.Join(err, ErrInvalidLoaderInterval)
	}
	if len(s.Targets) == 0 && !s.HasLoader() {
		log.ErrorContext(ctx, "Either targets or a targets file are required")
		err = errors.Join(err, ErrMissingTargets)
	}
	for i, t := range s.Targets {
		if tErr := t.Validate(); tErr != nil {
			log.ErrorContext(ctx, "The target is invalid", "index", i, "error", tErr)
			err = errors.Join(err, fmt.Errorf("serve.targets[%d]: %w", i, tErr))
		}
	}
	if vErr := s.Api.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The api configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if err != nil {
		return fmt.Errorf("validation of serve configuration failed: %w", err)
	}
	return nil
}
