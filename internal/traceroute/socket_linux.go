// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package traceroute

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"golang.org/x/sys/unix"
)

var _ conn = (*rawSockets)(nil)

// rawSockets owns the three raw sockets of a traceroute run.
// They are opened together by [openRawSockets] and released by Close.
type rawSockets struct {
	// send is a raw TCP socket with IP_HDRINCL set, probes carry their own IPv4 header.
	send int
	// icmp receives ICMP errors quoting our probes.
	icmp int
	// tcp receives the TCP replies of the destination.
	tcp int
}

// openRawSockets opens the send and receive sockets.
// It needs CAP_NET_RAW, all sockets opened so far are closed on failure.
func openRawSockets() (conn, error) {
	s := &rawSockets{send: -1, icmp: -1, tcp: -1}

	var err error
	s.send, err = unix.Socket(unix.AF_INET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, socketError("send", err)
	}
	if err = unix.SetsockoptInt(s.send, unix.IPPROTO_IP, unix.IP_HDRINCL, 1); err != nil {
		_ = s.Close()
		return nil, socketError("send (IP_HDRINCL)", err)
	}

	s.icmp, err = unix.Socket(unix.AF_INET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.IPPROTO_ICMP)
	if err != nil {
		_ = s.Close()
		return nil, socketError("icmp receive", err)
	}

	s.tcp, err = unix.Socket(unix.AF_INET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		_ = s.Close()
		return nil, socketError("tcp receive", err)
	}

	return s, nil
}

func socketError(which string, err error) error {
	if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
		return fmt.Errorf("%w: %s socket: %w (raw sockets need root or CAP_NET_RAW)", ErrRawSocket, which, err)
	}
	return fmt.Errorf("%w: %s socket: %w", ErrRawSocket, which, err)
}

// Send transmits pkt to dst. The kernel takes the IPv4 header as is.
func (s *rawSockets) Send(pkt []byte, dst netip.Addr) error {
	return unix.Sendto(s.send, pkt, 0, &unix.SockaddrInet4{Addr: dst.As4()})
}

// Wait polls the receive sockets for at most timeout.
// The timeout is rounded up to the next millisecond so a small
// remaining budget never turns into a non-blocking poll.
func (s *rawSockets) Wait(timeout time.Duration, watchTCP bool) (readiness, error) {
	fds := []unix.PollFd{{Fd: int32(s.icmp), Events: unix.POLLIN}} // #nosec G115 // fds are small
	if watchTCP {
		fds = append(fds, unix.PollFd{Fd: int32(s.tcp), Events: unix.POLLIN}) // #nosec G115
	}

	ms := int((timeout + time.Millisecond - 1) / time.Millisecond)
	n, err := unix.Poll(fds, ms)
	switch {
	case errors.Is(err, unix.EINTR):
		return readiness{}, errInterrupted
	case err != nil:
		return readiness{}, fmt.Errorf("poll: %w", err)
	case n == 0:
		return readiness{}, nil
	}

	return readinessOf(fds, watchTCP)
}

// readinessOf maps the returned events of a poll with pending events.
// Events without data, e.g. POLLERR or POLLHUP, fail the wait since
// polling again would return them immediately.
func readinessOf(fds []unix.PollFd, watchTCP bool) (readiness, error) {
	ready := readiness{icmp: fds[0].Revents&unix.POLLIN != 0}
	if watchTCP {
		ready.tcp = fds[1].Revents&unix.POLLIN != 0
	}
	if ready.any() {
		return ready, nil
	}
	var revents int16
	for _, fd := range fds {
		revents |= fd.Revents
	}
	return readiness{}, fmt.Errorf("%w: revents %#x", errSocketCondition, revents)
}

func (s *rawSockets) ReadICMP(buf []byte) (int, netip.Addr, error) {
	return recvFrom(s.icmp, buf)
}

func (s *rawSockets) ReadTCP(buf []byte) (int, netip.Addr, error) {
	return recvFrom(s.tcp, buf)
}

func recvFrom(fd int, buf []byte) (int, netip.Addr, error) {
	n, from, err := unix.Recvfrom(fd, buf, 0)
	if err != nil {
		return 0, netip.Addr{}, err
	}
	if sa, ok := from.(*unix.SockaddrInet4); ok {
		return n, netip.AddrFrom4(sa.Addr), nil
	}
	return n, netip.Addr{}, nil
}

// Close closes every open socket and joins the errors.
func (s *rawSockets) Close() error {
	var err error
	for _, fd := range []*int{&s.send, &s.icmp, &s.tcp} {
		if *fd < 0 {
			continue
		}
		err = errors.Join(err, unix.Close(*fd))
		*fd = -1
	}
	return err
}
