// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"
)

const (
	// DefaultPort is the destination port probed when none is configured.
	DefaultPort = 443
	// DefaultMaxTTL is the highest TTL probed when none is configured.
	DefaultMaxTTL = 30
	// DefaultTimeout is the per-probe reply budget when none is configured.
	DefaultTimeout = time.Second

	// MaxTTL is the largest value the IPv4 TTL field can hold.
	MaxTTL = 255

	// probesPerHop is the number of SYN probes sent for every TTL.
	probesPerHop = 3
)

// Timeout is the RTT sentinel recorded for a probe that got no matching reply.
const Timeout time.Duration = -1

// Options contains the optional configuration for the traceroute.
type Options struct {
	// MaxTTL is the maximum TTL to use for the traceroute.
	MaxTTL int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Timeout is the reply budget of every single probe.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// ResolveNames enables reverse DNS lookups of hop addresses.
	ResolveNames bool `json:"resolveNames" yaml:"resolveNames" mapstructure:"resolveNames"`
	// OnStart is called once the identity of the run is known,
	// before the first probe is sent.
	OnStart func(Identity) `json:"-" yaml:"-" mapstructure:"-"`
	// OnHop is called with every hop as soon as it is probed.
	OnHop func(Hop) `json:"-" yaml:"-" mapstructure:"-"`
}

// Validate rejects limits the probes cannot carry.
func (o Options) Validate() error {
	if o.MaxTTL > MaxTTL {
		return fmt.Errorf("%w: %d exceeds %d", ErrMaxTTL, o.MaxTTL, MaxTTL)
	}
	return nil
}

// withDefaults returns a copy of the options with unset limits defaulted.
func (o Options) withDefaults() Options {
	if o.MaxTTL <= 0 {
		o.MaxTTL = DefaultMaxTTL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Target represents a target for the traceroute.
type Target struct {
	// Address is the host name or IPv4 address to trace to.
	Address string `json:"address" yaml:"address" mapstructure:"address"`
	// Port is the destination port of the SYN probes.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
}

func (t Target) String() string {
	if t.Port != 0 {
		return net.JoinHostPort(t.Address, strconv.Itoa(t.Port))
	}
	return t.Address
}

func (t Target) Validate() error {
	if t.Address == "" {
		return errors.New("target address cannot be empty")
	}
	if t.Port <= 0 || t.Port > 65535 {
		return fmt.Errorf("invalid target port: %d, must be between 1 and 65535", t.Port)
	}
	return nil
}

// Identity is the addressing shared by every probe of a run.
// It is computed once before probing starts and never changes afterwards.
type Identity struct {
	Src     netip.Addr `json:"src" yaml:"src"`
	Dst     netip.Addr `json:"dst" yaml:"dst"`
	SrcPort uint16     `json:"srcPort" yaml:"srcPort"`
	DstPort uint16     `json:"dstPort" yaml:"dstPort"`
}

// Result is the outcome of a traceroute to a single target.
type Result struct {
	Target   Target   `json:"target" yaml:"target"`
	Identity Identity `json:"identity" yaml:"identity"`
	Hops     []Hop    `json:"hops" yaml:"hops"`
	// HopCount is the TTL of the last probed hop.
	HopCount int  `json:"hopCount" yaml:"hopCount"`
	Reached  bool `json:"reached" yaml:"reached"`
}

// Hop is the outcome of probing one TTL.
type Hop struct {
	TTL int `json:"ttl" yaml:"ttl"`
	// Addr is the address of the first responder, invalid if nobody answered.
	Addr netip.Addr `json:"addr" yaml:"addr"`
	// Name is the reverse DNS name of Addr, if resolved.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Probes are the [probesPerHop] probes sent with the TTL.
	Probes []Probe `json:"-" yaml:"-"`
	// RTTs holds one sample per matching reply and [Timeout] per unanswered probe,
	// in the order of the probes.
	RTTs     []time.Duration `json:"-" yaml:"-"`
	Location string          `json:"location,omitempty" yaml:"location,omitempty"`
	Reached  bool            `json:"reached" yaml:"reached"`
}

// Probe is a single SYN probe of a hop.
type Probe struct {
	// Index is the position of the probe within its hop.
	Index int
	// Sent is the send time, its monotonic reading measures the RTTs.
	Sent time.Time
	// RTT of the first matching reply, [Timeout] if nothing matched.
	RTT time.Duration
	// Replies are the RTTs of all matching replies in arrival order.
	Replies []time.Duration
	State   ProbeState
}

// Answered reports whether any reply matched the probe.
func (p Probe) Answered() bool {
	return p.State != StateNoReply
}

// Responded reports whether any probe of the hop got a reply.
func (h Hop) Responded() bool {
	return h.Addr.IsValid()
}

// Stats returns min, avg and max over the answered probes.
// ok is false if no probe got a reply.
func (h Hop) Stats() (minRTT, avgRTT, maxRTT time.Duration, ok bool) {
	var sum time.Duration
	n := 0
	for _, rtt := range h.RTTs {
		if rtt < 0 {
			continue
		}
		if n == 0 || rtt < minRTT {
			minRTT = rtt
		}
		if rtt > maxRTT {
			maxRTT = rtt
		}
		sum += rtt
		n++
	}
	if n == 0 {
		return 0, 0, 0, false
	}
	return minRTT, sum / time.Duration(n), maxRTT, true
}

func (h Hop) MarshalJSON() ([]byte, error) {
	type alias Hop
	return json.Marshal(&struct {
		RTTs []float64 `json:"rtts"`
		alias
	}{
		RTTs:  h.rttMillis(),
		alias: alias(h),
	})
}

// MarshalYAML renders the hop with RTTs in milliseconds, -1 for timeouts.
func (h Hop) MarshalYAML() (any, error) {
	type alias Hop
	return &struct {
		alias `yaml:",inline"`
		RTTs  []float64 `yaml:"rtts"`
	}{
		alias: alias(h),
		RTTs:  h.rttMillis(),
	}, nil
}

func (h Hop) rttMillis() []float64 {
	ms := make([]float64, 0, len(h.RTTs))
	for _, rtt := range h.RTTs {
		if rtt < 0 {
			ms = append(ms, -1)
			continue
		}
		ms = append(ms, Millis(rtt))
	}
	return ms
}

func (h Hop) String() string {
	reached := ""
	if h.Reached {
		reached = "  (reached)"
	}

	const maxNameLength = 45
	name := h.Name
	if name == "" || len(name) > maxNameLength {
		name = "*"
		if h.Responded() {
			name = h.Addr.String()
		}
	}

	rtts := "*"
	if lo, avg, hi, ok := h.Stats(); ok {
		rtts = fmt.Sprintf("%s/%s/%s", lo, avg, hi)
	}

	return fmt.Sprintf("%-2d  %-45.45s  %s%s", h.TTL, name, rtts, reached)
}

// Millis converts a duration to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
