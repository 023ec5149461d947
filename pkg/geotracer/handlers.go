// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package geotracer

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/pkg"
	"github.com/telekom/geotracer/pkg/api"
	"github.com/telekom/geotracer/pkg/checks"
	tracecheck "github.com/telekom/geotracer/pkg/checks/traceroute"
	"gopkg.in/yaml.v3"
)

// store keeps the latest result of the check.
type store struct {
	mu     sync.RWMutex
	result *checks.Result
}

func (s *store) save(res *checks.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
}

func (s *store) get() (*checks.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.result != nil
}

func (g *Geotracer) routes() []api.Route {
	return []api.Route{
		{Path: "/v1/trace", Method: http.MethodGet, Handler: g.handleResults},
		{Path: "/v1/trace/{target}", Method: http.MethodGet, Handler: g.handleTargetResult},
		{Path: "/openapi", Method: http.MethodGet, Handler: g.handleOpenAPI},
		{
			Path:   "/metrics",
			Method: "*",
			Handler: promhttp.HandlerFor(
				g.telemetry.GetRegistry(),
				promhttp.HandlerOpts{Registry: g.telemetry.GetRegistry()},
			).ServeHTTP,
		},
	}
}

// handleResults answers with the latest run over all targets.
func (g *Geotracer) handleResults(w http.ResponseWriter, r *http.Request) {
	res, ok := g.results.get()
	if !ok {
		http.Error(w, "no trace finished yet", http.StatusNotFound)
		return
	}
	writeJSON(w, r, res)
}

// handleTargetResult answers with the latest trace of a single target.
// The target is addressed as host:port.
func (g *Geotracer) handleTargetResult(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")
	res, ok := g.results.get()
	if !ok {
		http.Error(w, "no trace finished yet", http.StatusNotFound)
		return
	}

	data, ok := res.Data.(tracecheck.Results)
	if !ok {
		http.Error(w, "unexpected result type", http.StatusInternalServerError)
		return
	}
	trace, ok := data[target]
	if !ok {
		http.Error(w, "unknown target", http.StatusNotFound)
		return
	}
	writeJSON(w, r, checks.Result{Data: trace, Timestamp: res.Timestamp})
}

func (g *Geotracer) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	doc, err := g.openAPI()
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to generate openapi document", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	b, err := yaml.Marshal(doc)
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to marshal openapi document", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// openAPI describes the result routes.
func (g *Geotracer) openAPI() (*openapi3.T, error) {
	schema, err := g.check.Schema()
	if err != nil {
		return nil, api.ErrCreateOpenapiSchema{Name: g.check.Name(), Err: err}
	}

	version := pkg.Version
	if version == "" {
		version = "dev"
	}

	all := openapi3.NewOperation()
	all.Summary = "Latest trace of every target"
	all.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("the latest run").WithJSONSchemaRef(schema))
	all.AddResponse(http.StatusNotFound, openapi3.NewResponse().WithDescription("no trace finished yet"))

	single := openapi3.NewOperation()
	single.Summary = "Latest trace of a single target"
	single.AddParameter(openapi3.NewPathParameter("target").
		WithDescription("the target as host:port").
		WithSchema(openapi3.NewStringSchema()))
	single.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("the latest trace of the target"))
	single.AddResponse(http.StatusNotFound, openapi3.NewResponse().WithDescription("the target was not traced yet"))

	return &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "geotracer",
			Description: "Hop by hop TCP SYN traces with the location of every hop",
			Version:     version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/v1/trace", &openapi3.PathItem{Get: all}),
			openapi3.WithPath("/v1/trace/{target}", &openapi3.PathItem{Get: single}),
		),
	}, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}
