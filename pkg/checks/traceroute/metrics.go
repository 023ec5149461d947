// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/checks"
)

// metrics defines the metric collectors of the traceroute check
type metrics struct {
	hops    *prometheus.GaugeVec
	reached *prometheus.GaugeVec
	rtt     *prometheus.HistogramVec
	errors  *prometheus.CounterVec
}

func newMetrics() metrics {
	return metrics{
		hops: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geotracer_hops",
				Help: "Number of hops probed on the way to the target.",
			},
			[]string{"target"},
		),
		reached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "geotracer_reached",
				Help: "Whether the target answered the last trace, 1 if it did.",
			},
			[]string{"target"},
		),
		rtt: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geotracer_hop_rtt_seconds",
				Help:    "Round trip times of the answered probes per hop.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"target", "ttl"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geotracer_trace_errors_total",
				Help: "Number of traces that could not be run.",
			},
			[]string{"target"},
		),
	}
}

// List returns all metric collectors
func (m *metrics) List() []prometheus.Collector {
	return []prometheus.Collector{m.hops, m.reached, m.rtt, m.errors}
}

// Set records the outcome of a finished trace.
func (m *metrics) Set(target string, res traceroute.Result) {
	m.hops.WithLabelValues(target).Set(float64(res.HopCount))
	reached := 0.0
	if res.Reached {
		reached = 1
	}
	m.reached.WithLabelValues(target).Set(reached)

	for _, hop := range res.Hops {
		ttl := strconv.Itoa(hop.TTL)
		for _, rtt := range hop.RTTs {
			if rtt < 0 {
				continue
			}
			m.rtt.WithLabelValues(target, ttl).Observe(rtt.Seconds())
		}
	}
}

// Failed counts a trace that could not be set up.
func (m *metrics) Failed(target string) {
	m.errors.WithLabelValues(target).Inc()
}

// Remove drops every metric of the target.
func (m *metrics) Remove(target string) error {
	found := m.hops.DeleteLabelValues(target)
	found = m.reached.DeleteLabelValues(target) || found
	found = m.rtt.DeletePartialMatch(prometheus.Labels{"target": target}) > 0 || found
	found = m.errors.DeleteLabelValues(target) || found

	if !found {
		return checks.ErrMetricNotFound{Label: target}
	}
	return nil
}

// WriteTextfile writes the metrics of a single trace in the
// text exposition format to path, e.g. for the node exporter's
// textfile collector.
func WriteTextfile(path string, res traceroute.Result) error {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.List()...)
	m.Set(res.Target.String(), res)
	return prometheus.WriteToTextfile(path, reg)
}
