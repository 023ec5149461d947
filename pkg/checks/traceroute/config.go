// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"time"

	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/checks"
)

// Config is the configuration for the traceroute check
type Config struct {
	// Targets is a list of targets to traceroute to.
	Targets []traceroute.Target `json:"targets" yaml:"targets" mapstructure:"targets"`
	// Interval is the pause between two runs over all targets.
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	// Options are the options for the traceroute check.
	traceroute.Options `json:",inline" yaml:",inline" mapstructure:",squash"`
}

func (c *Config) For() string {
	return CheckName
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field, reason string) {
		errs = append(errs, checks.ErrInvalidConfig{CheckName: CheckName, Field: field, Reason: reason})
	}

	if c.Interval <= 0 {
		invalid("interval", "must be greater than 0")
	}
	if c.Timeout < 0 {
		invalid("timeout", "must not be negative")
	}
	if c.MaxTTL < 0 || c.MaxTTL > traceroute.MaxTTL {
		invalid("maxHops", fmt.Sprintf("must be between 1 and %d", traceroute.MaxTTL))
	}
	for i, t := range c.Targets {
		if err := t.Validate(); err != nil {
			invalid(fmt.Sprintf("targets[%d]", i), err.Error())
		}
	}
	return errors.Join(errs...)
}
