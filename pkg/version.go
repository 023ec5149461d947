// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package pkg contains build metadata of geotracer.
package pkg

// Version is the version of the running geotracer binary.
// main hands the version set at build time via
// -ldflags "-X main.version=x.x.x" to the command tree, which stores it here.
// It is empty for development builds.
var Version string
