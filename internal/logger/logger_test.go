// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects the default handlers into a buffer.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := output
	output = &buf
	t.Cleanup(func() { output = orig })
	return &buf
}

func TestNewLogger(t *testing.T) {
	custom := slog.NewTextHandler(&bytes.Buffer{}, nil)

	tests := []struct {
		name      string
		handlers  []slog.Handler
		level     string
		enabled   slog.Level
		disabled  slog.Level
		wantIdent slog.Handler
	}{
		{name: "default level", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
		{name: "debug level", level: "debug", enabled: slog.LevelDebug, disabled: slog.LevelDebug - 1},
		{name: "error level", level: "ERROR", enabled: slog.LevelError, disabled: slog.LevelWarn},
		{name: "custom handler wins", handlers: []slog.Handler{custom}, level: "ERROR", enabled: slog.LevelInfo, disabled: slog.LevelDebug, wantIdent: custom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)

			log := NewLogger(tt.handlers...)
			require.NotNil(t, log)
			assert.True(t, log.Enabled(t.Context(), tt.enabled))
			assert.False(t, log.Enabled(t.Context(), tt.disabled))
			if tt.wantIdent != nil {
				assert.Same(t, tt.wantIdent, log.Handler())
			}
		})
	}
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		format   string
		wantText bool
	}{
		{format: "", wantText: false},
		{format: "json", wantText: false},
		{format: "TEXT", wantText: true},
		{format: "text", wantText: true},
		{format: "logfmt", wantText: false},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			t.Setenv("LOG_FORMAT", tt.format)
			_, isText := newHandler().(*slog.TextHandler)
			assert.Equal(t, tt.wantText, isText)
		})
	}
}

func TestNewHandler_WritesToOutput(t *testing.T) {
	buf := captureOutput(t)
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "")

	NewLogger().Info("Hop probed", "ttl", 3)
	NewLogger().Debug("Datagram ignored")

	assert.Contains(t, buf.String(), "ttl=3")
	assert.NotContains(t, buf.String(), "Datagram ignored")
}

func TestOutput_IsStderr(t *testing.T) {
	assert.Equal(t, os.Stderr, output, "stdout is reserved for the reports")
}

func TestGetLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, getLevel(in), "level %q", in)
	}
}

func TestContext(t *testing.T) {
	custom := NewLogger(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	t.Run("round trip", func(t *testing.T) {
		ctx := IntoContext(t.Context(), custom)
		assert.Same(t, custom, FromContext(ctx))
	})

	t.Run("fallback without logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(t.Context()))
		//nolint:staticcheck // nil contexts must not panic
		assert.NotNil(t, FromContext(nil))
	})

	t.Run("child context inherits the logger", func(t *testing.T) {
		parent := IntoContext(t.Context(), custom)
		ctx, cancel := NewContextWithLogger(parent)

		assert.NotEqual(t, parent, ctx)
		assert.Same(t, custom, FromContext(ctx))

		cancel()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
		assert.NoError(t, parent.Err(), "cancelling the child must not cancel the parent")
	})
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	ctx := IntoContext(t.Context(), NewLogger(slog.NewJSONHandler(&buf, nil)))

	var injected bool
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, injected = r.Context().Value(logger{}).(*slog.Logger)
		FromContext(r.Context()).InfoContext(r.Context(), "Serving trace")
	})
	req := httptest.NewRequest(http.MethodGet, "/v1/trace/example.com:443", http.NoBody)
	Middleware(ctx)(handler).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, injected)
	assert.Contains(t, buf.String(), `"method":"GET"`)
	assert.Contains(t, buf.String(), `"path":"/v1/trace/example.com:443"`)
	assert.Contains(t, buf.String(), `"msg":"Serving trace"`)
}
