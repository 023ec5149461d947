// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package geotracer

import (
	"errors"
	"fmt"
)

// ErrFinalShutdown is returned by Run once every component has been stopped.
var ErrFinalShutdown = errors.New("geotracer was shut down")

// ErrShutdown holds any errors that may
// have occurred during shutdown of the geotracer
type ErrShutdown struct {
	errAPI       error
	errTelemetry error
}

// HasError returns true if any of the errors are set
func (e ErrShutdown) HasError() bool {
	return e.errAPI != nil || e.errTelemetry != nil
}

func (e ErrShutdown) Error() string {
	return fmt.Sprintf("api: %v, telemetry: %v", e.errAPI, e.errTelemetry)
}
