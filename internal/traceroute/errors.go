// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
)

// Setup errors abort a traceroute before the first probe is sent.
var (
	// ErrResolve is returned when the target cannot be resolved to an IPv4 address.
	ErrResolve = errors.New("cannot resolve destination")
	// ErrLocalAddress is returned when the outbound IPv4 address for the target is unknown.
	ErrLocalAddress = errors.New("cannot determine local outbound address")
	// ErrEphemeralPort is returned when the OS does not hand out a source port.
	ErrEphemeralPort = errors.New("cannot obtain ephemeral source port")
	// ErrRawSocket is returned when one of the raw sockets cannot be opened.
	// This typically occurs when the process lacks the NET_RAW capability.
	ErrRawSocket = errors.New("cannot open raw socket")
)

// ErrMaxTTL is returned for options probing beyond the largest IPv4 TTL.
var ErrMaxTTL = errors.New("max hops out of range")

var (
	// errInterrupted is returned by [conn.Wait] if a signal interrupted the wait.
	errInterrupted = errors.New("wait interrupted")
	// errSocketCondition is returned by [conn.Wait] if a socket reports an
	// error or hangup instead of pending data.
	errSocketCondition = errors.New("socket reported an error condition")
)

// IsSetupError checks if the error is one of the errors
// that prevent a traceroute from starting.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrResolve) ||
		errors.Is(err, ErrLocalAddress) ||
		errors.Is(err, ErrEphemeralPort) ||
		errors.Is(err, ErrRawSocket)
}
