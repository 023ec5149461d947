// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	buildInfoMetricName = "geotracer_build_info"
	buildInfoHelp       = "Build metadata of this geotracer binary. Always 1."
)

// newBuildInfo returns the info-style geotracer_build_info gauge,
// labelled with the version and the Go runtime of the binary.
// An empty version is reported as "dev".
func newBuildInfo(version string) prometheus.Collector {
	if version == "" {
		version = "dev"
	}
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: buildInfoMetricName,
			Help: buildInfoHelp,
		},
		[]string{"version", "goversion"},
	)
	info.WithLabelValues(version, runtime.Version()).Set(1)
	return info
}
