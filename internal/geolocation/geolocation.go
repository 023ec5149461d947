// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package geolocation describes where on earth an IP address lives.
// It queries an ip-api.com compatible JSON endpoint and renders the
// answer as "(city, region, country, isp)".
package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/telekom/geotracer/internal/helper"
	"github.com/telekom/geotracer/internal/logger"
	"github.com/telekom/geotracer/internal/traceroute"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ traceroute.Locator = (*Client)(nil)

const (
	// DefaultURL is the ip-api.com JSON endpoint, the address is appended to it.
	DefaultURL = "http://ip-api.com/json/"
	// DefaultTimeout bounds a single lookup request.
	DefaultTimeout = 5 * time.Second

	// Unknown is the location of addresses nobody knows about,
	// typically routers in private networks.
	Unknown = "(Unknown, Local Router)"
)

// DefaultRetry retries a failed lookup once after a short pause.
var DefaultRetry = helper.RetryConfig{Count: 1, Delay: 500 * time.Millisecond}

// Config configures the location lookups.
type Config struct {
	// Enabled toggles the lookups. Hops are not located if false.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// URL is the lookup endpoint, the queried address is appended to it.
	URL string `json:"url" yaml:"url" mapstructure:"url"`
	// Timeout bounds every single request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Retry configures the retries of failed requests.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// response is the subset of the ip-api.com answer we use.
type response struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
	ISP        string `json:"isp"`
}

func (r response) empty() bool {
	return r.Country == "" && r.RegionName == "" && r.City == "" && r.ISP == ""
}

func (r response) String() string {
	return "(" + strings.Join([]string{r.City, r.RegionName, r.Country, r.ISP}, ", ") + ")"
}

// Client looks up and caches the locations of addresses.
type Client struct {
	url    string
	client *http.Client
	retry  helper.RetryConfig

	mu    sync.Mutex
	cache map[netip.Addr]string
}

// New returns a lookup client for the given configuration.
// Unset fields fall back to [DefaultURL], [DefaultTimeout] and [DefaultRetry].
func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry == (helper.RetryConfig{}) {
		cfg.Retry = DefaultRetry
	}
	return &Client{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		retry:  cfg.Retry,
		cache:  map[netip.Addr]string{},
	}
}

// Lookup returns the location of addr. Lookups never fail, addresses that
// cannot be located are reported as [Unknown]. Private and other
// non-routable addresses are never sent to the endpoint.
func (c *Client) Lookup(ctx context.Context, addr netip.Addr) string {
	if !addr.IsValid() || !routable(addr) {
		return Unknown
	}

	c.mu.Lock()
	loc, ok := c.cache[addr]
	c.mu.Unlock()
	if ok {
		return loc
	}

	span := trace.SpanFromContext(ctx)
	log := logger.FromContext(ctx).With("addr", addr)

	loc, err := helper.Retry(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.query(ctx, addr)
	})
	if err != nil {
		log.DebugContext(ctx, "Failed to look up location", "error", err)
		span.AddEvent("Location unknown", trace.WithAttributes(
			attribute.Stringer("geolocation.addr", addr),
			attribute.String("geolocation.error", err.Error()),
		))
		// Failures are not cached, the next hop through this router may succeed.
		return Unknown
	}

	c.mu.Lock()
	c.cache[addr] = loc
	c.mu.Unlock()
	return loc
}

// errNoLocation is returned when the endpoint knows nothing about an address.
var errNoLocation = errors.New("no location known")

// query performs a single lookup request.
func (c *Client) query(ctx context.Context, addr netip.Addr) (string, error) {
	endpoint, err := url.JoinPath(c.url, addr.String())
	if err != nil {
		return "", helper.Permanent(fmt.Errorf("invalid lookup url: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", helper.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query location: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code %d", res.StatusCode)
		// Only server side and rate limit failures are worth another try.
		if res.StatusCode < http.StatusInternalServerError && res.StatusCode != http.StatusTooManyRequests {
			return "", helper.Permanent(err)
		}
		return "", err
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var r response
	if err = json.Unmarshal(body, &r); err != nil {
		return "", helper.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	if r.Status == "fail" || r.empty() {
		return "", helper.Permanent(fmt.Errorf("%w: %s", errNoLocation, r.Message))
	}
	return r.String(), nil
}

// routable reports whether addr can be located at all.
func routable(addr netip.Addr) bool {
	return addr.IsGlobalUnicast() && !addr.IsPrivate()
}
