// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"net/netip"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/checks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ checks.Check = (*Traceroute)(nil)

const (
	CheckName = "traceroute"
	// DefaultInterval is used if a configuration carries no interval.
	DefaultInterval = time.Minute
)

// NewCheck returns a check tracing its targets with client.
func NewCheck(client traceroute.Client) checks.Check {
	c := &Traceroute{
		CheckBase: checks.CheckBase{
			Mu:       sync.Mutex{},
			DoneChan: make(chan struct{}, 1),
		},
		config:  Config{},
		cUpdate: make(chan struct{}, 1),
		client:  client,
		metrics: newMetrics(),
	}
	c.tracer = otel.Tracer(c.Name())
	return c
}

// Traceroute traces all configured targets one after the other, every interval.
type Traceroute struct {
	checks.CheckBase
	config  Config
	cUpdate chan struct{}
	metrics metrics
	client  traceroute.Client
	tracer  trace.Tracer
}

// Results maps the targets to their last trace.
type Results map[string]traceroute.Result

// Run runs the check in a loop sending results to the provided channel.
// Nothing is traced before the first configuration arrives, its first
// run starts right away. A changed interval replaces the pending wait.
func (tr *Traceroute) Run(ctx context.Context, cResult chan checks.ResultDTO) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	log.InfoContext(ctx, "Starting traceroute check, waiting for targets")
	timer := time.NewTimer(0)
	timer.Stop()
	defer timer.Stop()

	// zero until the first configuration arrived
	var interval time.Duration
	for {
		select {
		case <-ctx.Done():
			log.ErrorContext(ctx, "Context canceled", "error", ctx.Err())
			return ctx.Err()
		case <-tr.DoneChan:
			return nil
		case <-tr.cUpdate:
			next := tr.interval()
			switch interval {
			case 0:
				timer.Reset(0)
			case next:
				continue
			default:
				timer.Reset(next)
			}
			log.DebugContext(ctx, "Traceroute interval changed", "interval", next.String())
			interval = next
		case <-timer.C:
			res := tr.check(ctx)
			select {
			case cResult <- checks.ResultDTO{
				Name: tr.Name(),
				Result: &checks.Result{
					Data:      res,
					Timestamp: time.Now(),
				},
			}:
			case <-ctx.Done():
				return ctx.Err()
			}
			log.DebugContext(ctx, "Successfully finished traceroute check run", "targets", len(res))
			interval = tr.interval()
			timer.Reset(interval)
		}
	}
}

// GetConfig returns the current configuration of the check
func (tr *Traceroute) GetConfig() checks.Runtime {
	tr.Mu.Lock()
	defer tr.Mu.Unlock()
	cfg := tr.config
	return &cfg
}

func (tr *Traceroute) interval() time.Duration {
	tr.Mu.Lock()
	defer tr.Mu.Unlock()
	if tr.config.Interval <= 0 {
		return DefaultInterval
	}
	return tr.config.Interval
}

// check traces every target once. Targets that cannot be traced are
// part of the result with the hops probed until the failure.
func (tr *Traceroute) check(ctx context.Context) Results {
	log := logger.FromContext(ctx)
	ctx, span := tr.tracer.Start(ctx, "traceroute.check")
	defer span.End()

	tr.Mu.Lock()
	targets := slices.Clone(tr.config.Targets)
	opts := tr.config.Options
	tr.Mu.Unlock()

	if len(targets) == 0 {
		log.WarnContext(ctx, "No targets configured for traceroute check")
		return Results{}
	}

	res := make(Results, len(targets))
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}

		r, err := tr.client.Run(ctx, target, &opts)
		r.Target = target
		res[target.String()] = r
		if err != nil {
			log.ErrorContext(ctx, "Failed to run traceroute", "target", target.String(), "error", err)
			span.SetStatus(codes.Error, "Failed to run traceroute")
			span.RecordError(err, trace.WithAttributes(attribute.Stringer("traceroute.target", target)))
			if traceroute.IsSetupError(err) {
				tr.metrics.Failed(target.String())
				continue
			}
		}
		tr.metrics.Set(target.String(), r)
	}
	return res
}

// Shutdown is called once when the check is unregistered or the server shuts down
func (tr *Traceroute) Shutdown() {
	tr.DoneChan <- struct{}{}
	close(tr.DoneChan)
}

// UpdateConfig replaces the configuration and drops the metrics of
// targets that are no longer traced.
func (tr *Traceroute) UpdateConfig(cfg checks.Runtime) error {
	c, ok := cfg.(*Config)
	if !ok {
		return checks.ErrConfigMismatch{
			Expected: CheckName,
			Current:  cfg.For(),
		}
	}
	if err := c.Validate(); err != nil {
		return err
	}

	tr.Mu.Lock()
	defer tr.Mu.Unlock()
	for _, target := range tr.config.Targets {
		if slices.Contains(c.Targets, target) {
			continue
		}
		err := tr.metrics.Remove(target.String())
		var notFound checks.ErrMetricNotFound
		if err != nil && !errors.As(err, &notFound) {
			return err
		}
	}

	tr.config = *c
	select {
	case tr.cUpdate <- struct{}{}:
	default:
		// a pending update already wakes the loop
	}
	return nil
}

// Schema returns an openapi3.SchemaRef of the result type returned by the check
func (tr *Traceroute) Schema() (*openapi3.SchemaRef, error) {
	return checks.OpenapiFromPerfData(Results{}, customizeSchema)
}

var (
	addrType = reflect.TypeFor[netip.Addr]()
	hopType  = reflect.TypeFor[traceroute.Hop]()
)

// customizeSchema describes the types that marshal themselves.
func customizeSchema(_ string, t reflect.Type, _ reflect.StructTag, schema *openapi3.Schema) error {
	switch t {
	case addrType:
		schema.Type = &openapi3.Types{openapi3.TypeString}
		schema.Format = "ipv4"
	case hopType:
		rtts := openapi3.NewArraySchema().WithItems(openapi3.NewFloat64Schema())
		rtts.Description = "round trip times in milliseconds, -1 for unanswered probes"
		schema.WithProperty("rtts", rtts)
	default:
		// nil slices are marshalled as null, e.g. the hops of a failed trace
		if t.Kind() == reflect.Slice {
			schema.Nullable = true
		}
	}
	return nil
}

// GetMetricCollectors allows the check to provide prometheus metric collectors
func (tr *Traceroute) GetMetricCollectors() []prometheus.Collector {
	return tr.metrics.List()
}

// Name returns the name of the check
func (tr *Traceroute) Name() string {
	return CheckName
}

// RemoveLabelledMetrics removes the metrics which have the passed
// target as a label
func (tr *Traceroute) RemoveLabelledMetrics(target string) error {
	return tr.metrics.Remove(target)
}
