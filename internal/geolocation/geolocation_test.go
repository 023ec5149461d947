// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package geolocation

import (
	"errors"
	"net/http"
	"net/netip"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/telekom/geotracer/internal/helper"
)

const (
	testAddr     = "93.184.216.34"
	testEndpoint = DefaultURL + testAddr
)

var located = map[string]any{
	"status":     "success",
	"country":    "Germany",
	"regionName": "Hesse",
	"city":       "Frankfurt am Main",
	"isp":        "Example ISP",
	"query":      testAddr,
}

func TestClient_Lookup(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name      string
		addr      string
		responder httpmock.Responder
		want      string
		wantCalls int
	}{
		{
			name:      "located",
			addr:      testAddr,
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, located),
			want:      "(Frankfurt am Main, Hesse, Germany, Example ISP)",
			wantCalls: 1,
		},
		{
			name: "partially located",
			addr: testAddr,
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
				"status":  "success",
				"country": "Germany",
			}),
			want:      "(, , Germany, )",
			wantCalls: 1,
		},
		{
			name: "lookup failed",
			addr: testAddr,
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
				"status":  "fail",
				"message": "reserved range",
			}),
			want:      Unknown,
			wantCalls: 1,
		},
		{
			name:      "nothing known",
			addr:      testAddr,
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"status": "success"}),
			want:      Unknown,
			wantCalls: 1,
		},
		{
			name:      "malformed response",
			addr:      testAddr,
			responder: httpmock.NewStringResponder(http.StatusOK, "<html>"),
			want:      Unknown,
			wantCalls: 1,
		},
		{
			name:      "client error is not retried",
			addr:      testAddr,
			responder: httpmock.NewStringResponder(http.StatusNotFound, ""),
			want:      Unknown,
			wantCalls: 1,
		},
		{
			name:      "server error is retried",
			addr:      testAddr,
			responder: httpmock.NewStringResponder(http.StatusServiceUnavailable, ""),
			want:      Unknown,
			wantCalls: 3,
		},
		{
			name:      "rate limit is retried",
			addr:      testAddr,
			responder: httpmock.NewStringResponder(http.StatusTooManyRequests, ""),
			want:      Unknown,
			wantCalls: 3,
		},
		{
			name:      "network error is retried",
			addr:      testAddr,
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			want:      Unknown,
			wantCalls: 3,
		},
		{
			name:      "private address is never queried",
			addr:      "192.168.178.1",
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, located),
			want:      Unknown,
		},
		{
			name:      "loopback is never queried",
			addr:      "127.0.0.1",
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK, located),
			want:      Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder(http.MethodGet, DefaultURL+tt.addr, tt.responder)

			c := New(Config{Enabled: true, Retry: helper.RetryConfig{Count: 2, Delay: time.Millisecond}})
			got := c.Lookup(t.Context(), netip.MustParseAddr(tt.addr))

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, httpmock.GetTotalCallCount())
		})
	}
}

func TestClient_Lookup_cachesLocations(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodGet, testEndpoint, httpmock.NewJsonResponderOrPanic(http.StatusOK, located))

	c := New(Config{Enabled: true})
	addr := netip.MustParseAddr(testAddr)
	first := c.Lookup(t.Context(), addr)
	second := c.Lookup(t.Context(), addr)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, httpmock.GetCallCountInfo()["GET "+testEndpoint])
}

func TestClient_Lookup_recoversAfterRetry(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, testEndpoint, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return httpmock.NewStringResponse(http.StatusBadGateway, ""), nil
		}
		return httpmock.NewJsonResponse(http.StatusOK, located)
	})

	c := New(Config{Enabled: true, Retry: helper.RetryConfig{Count: 3, Delay: time.Millisecond}})
	got := c.Lookup(t.Context(), netip.MustParseAddr(testAddr))

	assert.Equal(t, "(Frankfurt am Main, Hesse, Germany, Example ISP)", got)
	assert.Equal(t, 2, calls)
}

func TestClient_Lookup_failuresAreNotCached(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodGet, testEndpoint, httpmock.NewStringResponder(http.StatusNotFound, ""))

	c := New(Config{Enabled: true})
	addr := netip.MustParseAddr(testAddr)
	assert.Equal(t, Unknown, c.Lookup(t.Context(), addr))

	httpmock.RegisterResponder(http.MethodGet, testEndpoint, httpmock.NewJsonResponderOrPanic(http.StatusOK, located))
	assert.Equal(t, "(Frankfurt am Main, Hesse, Germany, Example ISP)", c.Lookup(t.Context(), addr))
}

func TestClient_Lookup_invalidAddress(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, Unknown, c.Lookup(t.Context(), netip.Addr{}))
}

func TestNew_defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultURL, c.url)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
	assert.Equal(t, DefaultRetry, c.retry)

	c = New(Config{URL: "http://localhost:8080/json", Timeout: time.Second, Retry: helper.RetryConfig{Count: 4}})
	assert.Equal(t, "http://localhost:8080/json", c.url)
	assert.Equal(t, time.Second, c.client.Timeout)
	assert.Equal(t, 4, c.retry.Count)
}
