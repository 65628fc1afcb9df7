// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"fmt"
	"io"
)

// Writer appends directive and comment lines to a profile document.
// The document is append-only: once a line is written it is never
// revisited. The first write error latches, later calls become no-ops
// and Err reports it, so sections can be emitted without per-line
// error plumbing.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w, typically a [Sink].
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Line writes one formatted line.
func (p *Writer) Line(format string, args ...any) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.w, format+"\n", args...); err != nil {
		p.err = err
	}
}

// Blank writes an empty line.
func (p *Writer) Blank() {
	p.Line("")
}

// Write implements io.Writer so section renderers can stream into the
// document; errors latch exactly like Line.
func (p *Writer) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.w.Write(b)
	if err != nil {
		p.err = err
	}
	return n, err
}

// Err returns the first write error, if any.
func (p *Writer) Err() error {
	return p.err
}
