// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/stretchr/testify/assert"
	tracecheck "github.com/telekom/geotracer/pkg/checks/traceroute"
)

// maxResultAge is how old a served result may be.
const maxResultAge = time.Minute

// Expectation collects what a GET of a single api path must return.
type Expectation struct {
	e2e    *E2E
	path   string
	router routers.Router
	traces tracecheck.Results
}

// Expect starts an expectation of the response of path.
func (e *E2E) Expect(path string) *Expectation {
	return &Expectation{e2e: e, path: path}
}

// ConformingToSchema validates a successful response against the
// openapi document served by geotracer itself.
func (x *Expectation) ConformingToSchema() *Expectation {
	x.e2e.t.Helper()
	doc, err := x.loadDocument()
	if err != nil {
		x.e2e.t.Fatalf("Failed to load the openapi document: %v", err)
	}
	x.router, err = gorillamux.NewRouter(doc)
	if err != nil {
		x.e2e.t.Fatalf("Failed to route the openapi document: %v", err)
	}
	return x
}

// Tracing expects the served traces to have the shape of want:
// the same targets, hop counts, reach and responders.
func (x *Expectation) Tracing(want tracecheck.Results) *Expectation {
	x.traces = want
	return x
}

// Status fetches the path and checks the response.
// Body checks only run for a 200.
func (x *Expectation) Status(code int) {
	t := x.e2e.t
	t.Helper()
	if !x.e2e.isRunning() {
		t.Fatal("Expectation.Status must be called after E2E.Run")
	}

	req, resp, body, err := x.e2e.get(x.path)
	if err != nil {
		t.Errorf("GET %s failed: %v", x.path, err)
		return
	}
	t.Logf("GET %s: %d", x.path, resp.StatusCode)
	if !assert.Equal(t, code, resp.StatusCode, "status of %s", x.path) || code != http.StatusOK {
		return
	}

	if x.router != nil {
		if err = x.conforms(req, resp.StatusCode, body); err != nil {
			t.Errorf("Response of %s violates the openapi document: %v", x.path, err)
		}
	}
	if x.traces != nil {
		x.compareTraces(body)
	}
}

// get performs a GET of path and returns the fully read body.
func (e *E2E) get(path string) (*http.Request, *http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, e.URL(path), http.NoBody)
	if err != nil {
		return nil, nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return req, nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return req, resp, nil, fmt.Errorf("failed to read body: %w", err)
	}
	return req, resp, body, nil
}

func (x *Expectation) loadDocument() (*openapi3.T, error) {
	_, resp, body, err := x.e2e.get("/openapi")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := openapi3.NewLoader().LoadFromData(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

// conforms checks body against the json schema documented for the
// route and status of req.
func (x *Expectation) conforms(req *http.Request, status int, body []byte) error {
	route, _, err := x.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("undocumented route: %w", err)
	}
	res := route.Operation.Responses.Status(status)
	if res == nil || res.Value == nil {
		return fmt.Errorf("undocumented status %d", status)
	}
	media := res.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return fmt.Errorf("no json schema documented for status %d", status)
	}

	var v any
	if err = json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is no json: %w", err)
	}
	return media.Schema.Value.VisitJSON(v)
}

// servedTrace is the part of a served trace the expectations compare.
type servedTrace struct {
	HopCount int  `json:"hopCount"`
	Reached  bool `json:"reached"`
	Hops     []struct {
		TTL  int    `json:"ttl"`
		Addr string `json:"addr"`
	} `json:"hops"`
}

func (x *Expectation) compareTraces(body []byte) {
	t := x.e2e.t
	t.Helper()
	var served struct {
		Data      map[string]servedTrace `json:"data"`
		Timestamp time.Time              `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &served); err != nil {
		t.Errorf("Failed to decode the traces of %s: %v", x.path, err)
		return
	}

	compareTraces(t, x.traces, served.Data)
	assert.Less(t, time.Since(served.Timestamp), maxResultAge, "stale result from %v", served.Timestamp)
}

func compareTraces(t *testing.T, want tracecheck.Results, got map[string]servedTrace) {
	t.Helper()
	assert.Len(t, got, len(want), "traced targets")
	for target, w := range want {
		g, ok := got[target]
		if !assert.True(t, ok, "%s was not traced", target) {
			continue
		}
		assert.Equal(t, w.HopCount, g.HopCount, "hop count of %s", target)
		assert.Equal(t, w.Reached, g.Reached, "reach of %s", target)
		if !assert.Len(t, g.Hops, len(w.Hops), "hops of %s", target) {
			continue
		}
		for i, hop := range w.Hops {
			addr := ""
			if hop.Addr.IsValid() {
				addr = hop.Addr.String()
			}
			assert.Equal(t, hop.TTL, g.Hops[i].TTL, "ttl of hop %d to %s", i, target)
			assert.Equal(t, addr, g.Hops[i].Addr, "responder of hop %d to %s", i, target)
		}
	}
}
