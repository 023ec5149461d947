// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidPort is returned when the destination port is out of range
	ErrInvalidPort = errors.New("invalid port")
	// ErrInvalidMaxHops is returned when the max hops do not fit into the ttl field
	ErrInvalidMaxHops = errors.New("invalid max hops")
	// ErrInvalidTimeout is returned when the probe timeout is not positive
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrInvalidOutput is returned when the output format is unknown
	ErrInvalidOutput = errors.New("invalid output format")
	// ErrInvalidGeolocationURL is returned when the geolocation url is invalid
	ErrInvalidGeolocationURL = errors.New("invalid geolocation url")
	// ErrInvalidGeolocationTimeout is returned when the geolocation timeout is negative
	ErrInvalidGeolocationTimeout = errors.New("invalid geolocation timeout")
	// ErrInvalidRetryCount is returned when the geolocation retry count is invalid
	ErrInvalidRetryCount = errors.New("invalid geolocation retry count")
	// ErrInvalidInterval is returned when the serve interval is not positive
	ErrInvalidInterval = errors.New("invalid serve interval")
	// ErrInvalidLoaderInterval is returned when the loader interval is negative
	ErrInvalidLoaderInterval = errors.New("invalid loader interval")
	// ErrMissingTargets is returned when the serve command has nothing to trace
	ErrMissingTargets = errors.New("no targets configured")
)
