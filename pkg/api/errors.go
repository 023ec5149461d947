// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import "fmt"

// ErrCreateOpenapiSchema is returned when the schema of a result cannot be generated.
type ErrCreateOpenapiSchema struct {
	Name string
	Err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for %s: %v", e.Name, e.Err)
}

func (e ErrCreateOpenapiSchema) Unwrap() error {
	return e.Err
}

// ErrInvalidRoute is returned for a route without path or handler.
type ErrInvalidRoute struct {
	Route Route
}

func (e ErrInvalidRoute) Error() string {
	return fmt.Sprintf("invalid route %s %q: path and handler are required", e.Route.Method, e.Route.Path)
}
