// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package report renders traceroute results for humans and machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/telekom/geotracer/internal/traceroute"
	"gopkg.in/yaml.v3"
)

// Format is the rendering of a traceroute result.
type Format string

const (
	// Table streams one line per hop while the trace is running.
	Table Format = "table"
	// JSON writes the whole result once the trace has finished.
	JSON Format = "json"
	// YAML writes the whole result once the trace has finished.
	YAML Format = "yaml"
)

// ErrUnknownFormat is returned for an output format that cannot be rendered.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{Table, JSON, YAML}
}

func (f Format) String() string {
	return string(f)
}

// Validate returns an error if the format cannot be rendered.
func (f Format) Validate() error {
	switch f {
	case Table, JSON, YAML:
		return nil
	default:
		return fmt.Errorf("%w %q, must be one of %v", ErrUnknownFormat, string(f), Formats())
	}
}

// Streaming reports whether the format renders hops while they are probed.
func (f Format) Streaming() bool {
	return f == Table
}

// Write renders the complete result in a structured format.
// The table format is streamed with a [TableWriter] instead.
func Write(w io.Writer, f Format, res traceroute.Result) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case Table:
		return fmt.Errorf("%w: the table is streamed hop by hop", ErrUnknownFormat)
	default:
		return f.Validate()
	}
}

// TableWriter streams a traceroute as the classic fixed-width table.
// The first write error is kept and returned by [TableWriter.Err],
// later writes are skipped.
type TableWriter struct {
	w   io.Writer
	err error
}

// NewTableWriter returns a table writer rendering to w.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

func (t *TableWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// Banner prints the addressing of the run and the table header.
func (t *TableWriter) Banner(target traceroute.Target, id traceroute.Identity, opts traceroute.Options) {
	t.printf("Resolved dst: %s -> %s\n", target.Address, id.Dst)
	t.printf("Using local source IP: %s\n", id.Src)
	t.printf("Using ephemeral source port: %d\n", id.SrcPort)
	t.printf("Probing %s from %s (src_port=%d, dst_port=%d)\n", id.Dst, id.Src, id.SrcPort, id.DstPort)
	t.printf("Max hops: %d, timeout per probe: %d ms\n\n", opts.MaxTTL, opts.Timeout.Milliseconds())
	t.printf("%-4s%-20s RTT summary (min/avg/max)\n", "Hop", "Responder IP")
	t.printf("%s\n", strings.Repeat("-", 70))
}

// Hop prints the line of a single hop.
func (t *TableWriter) Hop(h traceroute.Hop) {
	t.printf("%s\n", FormatHop(h))
}

// Summary prints whether the destination was reached.
func (t *TableWriter) Summary(res traceroute.Result, maxHops int) {
	t.printf("\nDone. %s\n", Summary(res, maxHops))
}

// Err returns the first error that occurred while writing.
func (t *TableWriter) Err() error {
	return t.err
}

// FormatHop renders a hop as a table line without trailing newline:
// the TTL, the responder or "*" and either the location with the
// min/avg/max RTT in milliseconds or "*  *  *" if nobody answered.
func FormatHop(h traceroute.Hop) string {
	var b strings.Builder
	responder := "*"
	if h.Responded() {
		responder = h.Addr.String()
	}
	fmt.Fprintf(&b, "%-4d%-20s", h.TTL, responder)

	lo, avg, hi, ok := h.Stats()
	if !ok {
		b.WriteString("  *  *  *")
	} else {
		location := h.Location
		if h.Name != "" {
			location = strings.TrimSpace(h.Name + " " + location)
		}
		fmt.Fprintf(&b, "  %s  %-3.1f ms  %-3.1f ms  %-3.1f ms",
			location, traceroute.Millis(lo), traceroute.Millis(avg), traceroute.Millis(hi))
	}

	if h.Reached {
		b.WriteString("   (DEST)")
	}
	return b.String()
}

// Summary describes the outcome of a run in one sentence.
func Summary(res traceroute.Result, maxHops int) string {
	if res.Reached {
		return fmt.Sprintf("Destination reached in %d hops.", res.HopCount)
	}
	return fmt.Sprintf("Destination not reached (max hops %d)", maxHops)
}
