// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"context"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
)

// Check periodically traces its targets and reports the results.
//
//go:generate go tool moq -out base_moq.go . Check
type Check interface {
	// Run runs the check until the context is canceled or Shutdown is called.
	// Every finished run is sent to cResult.
	// Returning a non-nil error stops the whole serve loop.
	Run(ctx context.Context, cResult chan ResultDTO) error
	// Shutdown stops a running check. It must only be called once.
	Shutdown()
	// UpdateConfig replaces the configuration of the check.
	// It may be called while the check is running.
	UpdateConfig(config Runtime) error
	// GetConfig returns the current configuration of the check
	GetConfig() Runtime
	// Name returns the name of the check
	Name() string
	// Schema describes the result of the check as openapi schema.
	Schema() (*openapi3.SchemaRef, error)
	// GetMetricCollectors returns the collectors to register with prometheus.
	GetMetricCollectors() []prometheus.Collector
	// RemoveLabelledMetrics drops all metrics labelled with target.
	RemoveLabelledMetrics(target string) error
}

// CheckBase holds the fields shared by every check implementation.
type CheckBase struct {
	// Mu guards the configuration of the check.
	Mu sync.Mutex
	// DoneChan signals the shutdown of the check.
	DoneChan chan struct{}
}

// Runtime is the configuration of a check that may change while it runs.
type Runtime interface {
	// For returns the name of the check being configured
	For() string
	// Validate checks if the configuration is valid
	Validate() error
}

// Result is the outcome of one run of a check.
type Result struct {
	// Data is the check specific payload.
	Data any `json:"data" yaml:"data"`
	// Timestamp is the time the run finished.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ResultDTO associates a result with the name of the check that produced it.
type ResultDTO struct {
	Name   string
	Result *Result
}
