// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strconv"
)

// resolveIPv4 returns the first IPv4 address of host.
// IPv4 literals are returned as is.
func resolveIPv4(ctx context.Context, host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		if !addr.Unmap().Is4() {
			return netip.Addr{}, fmt.Errorf("%w %q: not an IPv4 address", ErrResolve, host)
		}
		return addr.Unmap(), nil
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w %q: %w", ErrResolve, host, err)
	}
	for _, addr := range addrs {
		if addr.Unmap().Is4() {
			return addr.Unmap(), nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w %q: no IPv4 address", ErrResolve, host)
}

// localAddrFor returns the local address the kernel would use to reach dst.
// Connecting a UDP socket only runs the routing decision, no datagram is sent.
func localAddrFor(dst netip.Addr) (netip.Addr, error) {
	c, err := net.Dial("udp4", net.JoinHostPort(dst.String(), strconv.Itoa(53)))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w for %s: %w", ErrLocalAddress, dst, err)
	}
	defer func() { _ = c.Close() }()

	local, ok := c.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.Addr{}, fmt.Errorf("%w for %s: unexpected address type %T", ErrLocalAddress, dst, c.LocalAddr())
	}
	addr, ok := netip.AddrFromSlice(local.IP)
	if !ok || !addr.Unmap().Is4() {
		return netip.Addr{}, fmt.Errorf("%w for %s: %s is not IPv4", ErrLocalAddress, dst, local.IP)
	}
	return addr.Unmap(), nil
}

// reservePort asks the OS for an unused TCP port.
// The returned listener keeps the port reserved until it is closed,
// so nobody else is handed the port during the traceroute.
func reservePort() (uint16, io.Closer, error) {
	l, err := net.Listen("tcp4", ":0")
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrEphemeralPort, err)
	}
	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		_ = l.Close()
		return 0, nil, fmt.Errorf("%w: unexpected address type %T", ErrEphemeralPort, l.Addr())
	}
	return uint16(addr.Port), l, nil // #nosec G115 // ports fit into 16 bits
}
