// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sploinkster/worsefirejail/config"
)

// Options configures one profile build run.
type Options struct {
	// Command is the program and its arguments to trace.
	Command []string

	// CapsKeep is forwarded verbatim to firejail's --caps.keep flag
	// and, when non-empty, recorded in the generated profile.
	CapsKeep string

	// AppImage selects the reduced profile for self-contained
	// application bundles: firejail mounts the image itself, so the
	// /usr/share whitelist and private-bin sections are suppressed.
	AppImage bool

	// Timeout bounds the traced run's wall-clock time. Zero waits
	// forever.
	Timeout time.Duration

	// Debug echoes the constructed command before executing and keeps
	// the scratch trace files around for inspection.
	Debug bool

	// Logger receives build progress. Defaults to slog.Default.
	Logger *slog.Logger

	// Settings overrides the tool configuration. Defaults to
	// config.Default.
	Settings *config.Settings
}

// CommandBuilder assembles the argument vector that wraps the target
// program in firejail and strace.
type CommandBuilder struct {
	args []string
}

// NewCommandBuilder creates a new builder.
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{args: []string{}}
}

// Build constructs the full argv. Token order matters: firejail and
// its options first, then the strace invocation firejail runs inside
// the sandbox, then the literal "--" separator strace requires before
// the target program.
func (b *CommandBuilder) Build(settings *config.Settings, arts *Artifacts, opts *Options) ([]string, error) {
	if len(opts.Command) == 0 {
		return nil, fmt.Errorf("command is required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}

	// A quiet, profile-less run: the point is to observe the program,
	// not to confine it with somebody else's profile. The chroot
	// exception keeps firejail's own bootstrap working under the
	// otherwise permissive seccomp filter.
	b.args = []string{
		settings.FirejailPath,
		"--quiet",
		"--noprofile",
		"--seccomp=!chroot",
		"--trace=" + arts.Trace,
	}

	if opts.CapsKeep != "" {
		b.args = append(b.args, "--caps.keep="+opts.CapsKeep)
	}
	if opts.AppImage {
		b.args = append(b.args, "--appimage")
	}

	// strace runs inside the sandbox so the recorded syscalls are the
	// target's, not firejail's. -f follows forked children, -qq drops
	// strace's own attach/detach noise.
	b.args = append(b.args,
		settings.StracePath,
		"-f",
		"-qq",
		"-o", arts.Syscalls,
		"-e", "trace=%syscall",
		"--",
	)
	b.args = append(b.args, opts.Command...)

	return b.args, nil
}
