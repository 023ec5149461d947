// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package framework runs geotracer end-to-end against a fake traceroute client.
package framework

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/api"
	"github.com/telekom/geotracer/pkg/config"
	"github.com/telekom/geotracer/pkg/geotracer"
	"gopkg.in/yaml.v3"
)

// E2E is an end-to-end test.
type E2E struct {
	config    config.Config
	t         *testing.T
	geotracer *geotracer.Geotracer

	targets []traceroute.Target

	running int32
}

// New creates an end-to-end test of geotracer tracing with client.
// The api listens on a free local port, the targets are read from a file
// reloaded every 100ms.
func New(t *testing.T, client traceroute.Client) *E2E {
	t.Helper()
	cfg := config.Config{
		Port:    443,
		MaxHops: 10,
		Timeout: 10 * time.Millisecond,
		Serve: config.ServeConfig{
			Interval: 100 * time.Millisecond,
			Loader: config.LoaderConfig{
				Path:     filepath.Join(t.TempDir(), "targets.yaml"),
				Interval: 100 * time.Millisecond,
			},
			Api: api.Config{ListeningAddress: freeAddress(t)},
		},
	}
	if err := cfg.ValidateServe(t.Context()); err != nil {
		t.Fatalf("Invalid e2e configuration: %v", err)
	}
	return &E2E{
		config:    cfg,
		t:         t,
		geotracer: geotracer.New(&cfg, client),
	}
}

// URL returns the url of path on the api.
func (e *E2E) URL(path string) string {
	return fmt.Sprintf("http://%s%s", e.config.Serve.Api.ListeningAddress, path)
}

// WithTargets sets the targets of the test.
func (e *E2E) WithTargets(targets ...traceroute.Target) *E2E {
	e.targets = targets
	return e
}

// UpdateTargets replaces the targets of a running test.
func (e *E2E) UpdateTargets(targets ...traceroute.Target) *E2E {
	e.targets = targets
	if err := e.writeTargets(); err != nil {
		e.t.Fatalf("Failed to write targets: %v", err)
	}
	return e
}

// Run starts the test and blocks until geotracer shuts down.
func (e *E2E) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		e.t.Fatal("E2E.Run must be called once")
	}
	if err := e.writeTargets(); err != nil {
		e.t.Fatalf("Failed to write targets: %v", err)
	}
	return e.geotracer.Run(ctx)
}

// AwaitAll waits for provided URL to be ready, the loader to reload the targets,
// and the targets to be traced before proceeding.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitAll(url string) *E2E {
	e.t.Helper()
	const failureTimeout = 5 * time.Second
	e.AwaitStartup(url, failureTimeout).
		AwaitLoader().
		AwaitTraces()
	return e
}

// AwaitStartup waits for the provided URL to be reachable.
// Any status counts, the result routes answer 404 until the first trace finished.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitStartup(u string, failureTimeout time.Duration) *E2E {
	e.t.Helper()
	const backoff = 50 * time.Millisecond

	// Initial delay to allow the server to start.
	<-time.After(backoff)
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitStartup must be called after E2E.Run")
	}

	deadline := time.Now().Add(failureTimeout)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, http.NoBody)
		if err != nil {
			e.t.Fatalf("Failed to create request: %v", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			return e
		}

		<-time.After(backoff)
	}

	e.t.Fatalf("%s did not become ready within %v", u, failureTimeout)
	return e
}

// AwaitLoader waits for the loader to reload the targets.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitLoader() *E2E {
	e.t.Helper()
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitLoader must be called after E2E.Run")
	}

	e.t.Logf("Waiting %s for loader to reload targets", e.config.Serve.Loader.Interval.String())
	<-time.After(e.config.Serve.Loader.Interval)
	return e
}

// AwaitTraces waits for one run over all targets.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitTraces() *E2E {
	e.t.Helper()
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitTraces must be called after E2E.Run")
	}

	wait := 2 * e.config.Serve.Interval
	e.t.Logf("Waiting %s for the targets to be traced", wait.String())
	<-time.After(wait)
	return e
}

// writeTargets writes the targets file read by the loader.
func (e *E2E) writeTargets() error {
	const fileMode = 0o600
	b, err := yaml.Marshal(config.TargetsFile{Targets: e.targets})
	if err != nil {
		return fmt.Errorf("failed to marshal targets: %w", err)
	}

	path := e.config.Serve.Loader.Path
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, b, fileMode); err != nil {
		return fmt.Errorf("failed to write %q: %w", tmp, err)
	}
	// the loader must never see a partially written file
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move %q: %w", tmp, err)
	}
	return nil
}

// isRunning returns true if the test is running.
func (e *E2E) isRunning() bool {
	return atomic.LoadInt32(&e.running) == 1
}

// freeAddress returns a local address nobody listens on.
func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer func() { _ = l.Close() }()
	return l.Addr().String()
}
