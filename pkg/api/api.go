// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package api serves the results of the periodic traces over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/geotracer/internal/logger"
)

//go:generate go tool moq -out api_moq.go . API
type API interface {
	// Run serves the registered routes until the context is canceled
	// or the server is shut down.
	Run(ctx context.Context) error
	// Shutdown gracefully stops the server.
	Shutdown(ctx context.Context) error
	// RegisterRoutes adds the routes to the router. It must be called before Run.
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server *http.Server
	router chi.Router
	tls    TLSConfig
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Route is a handler bound to a path and method.
// The method "*" matches every method.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// New creates a new api
func New(cfg Config) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{Addr: cfg.ListeningAddress, Handler: r, ReadHeaderTimeout: readHeaderTimeout},
		router: r,
		tls:    cfg.Tls,
	}
}

// Run serves the api until the context is done.
// It returns nil after a regular shutdown.
func (a *api) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	cErr := make(chan error, 1)
	go func() {
		var err error
		log.InfoContext(ctx, "Serving api", "addr", a.server.Addr, "tls", a.tls.Enabled)
		if a.tls.Enabled {
			err = a.server.ListenAndServeTLS(a.tls.CertPath, a.tls.KeyPath)
		} else {
			err = a.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Failed to serve api", "error", err)
			cErr <- fmt.Errorf("failed serving api: %w", err)
			return
		}
		cErr <- nil
	}()

	select {
	case <-ctx.Done():
		sCtx, sCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer sCancel()
		if err := a.Shutdown(sCtx); err != nil {
			return errors.Join(ctx.Err(), err)
		}
		return ctx.Err()
	case err := <-cErr:
		return err
	}
}

// Shutdown gracefully stops the api server.
func (a *api) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown api server", "error", err)
		return fmt.Errorf("failed shutting down api server: %w", err)
	}
	return nil
}

// RegisterRoutes registers the routes together with the request logger
// and a panic recoverer. Unknown paths answer 404.
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(logger.Middleware(ctx), middleware.Recoverer)
	for _, route := range routes {
		if route.Path == "" || route.Handler == nil {
			return ErrInvalidRoute{Route: route}
		}
		if route.Method == "*" {
			a.router.Handle(route.Path, route.Handler)
			continue
		}
		a.router.MethodFunc(route.Method, route.Path, route.Handler)
	}

	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	return nil
}
