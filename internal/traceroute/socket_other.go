// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package traceroute

import (
	"fmt"
	"runtime"
)

// openRawSockets is only implemented on linux, other kernels differ
// in how they treat IP_HDRINCL headers.
func openRawSockets() (conn, error) {
	return nil, fmt.Errorf("%w: not supported on %s", ErrRawSocket, runtime.GOOS)
}
