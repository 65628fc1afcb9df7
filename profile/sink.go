// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Sink is the destination stream for a generated profile.
type Sink struct {
	w io.Writer
	f *os.File // nil when writing to stdout
}

// OpenSink prepares the profile destination. An empty path selects
// standard output. A non-empty path must not already exist: profiles
// are hand-edited files and overwriting one silently would be hostile.
// Open this before spawning anything, so a bad path fails the run with
// nothing half-done.
func OpenSink(path string) (*Sink, error) {
	if path == "" {
		return &Sink{w: os.Stdout}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot create profile file %s: %w", path, err)
	}
	return &Sink{w: f, f: f}, nil
}

// Banner prints the separator marking where the profile starts. Only
// an interactive stdout sink gets one: the traced program shares the
// terminal, so the separator goes out after the run finishes and right
// before the first profile line. File sinks and redirected output stay
// a clean profile.
func (s *Sink) Banner() {
	if s.f == nil && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println("--- Built profile begins after this line ---")
	}
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Close closes the underlying file. Closing a stdout sink is a no-op.
func (s *Sink) Close() error {
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}
