// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// termGrace is how long the process group gets between SIGTERM and
// SIGKILL. Long enough for a signal handler to flush, short enough
// that a wedged target does not stall profile generation.
const termGrace = 250 * time.Millisecond

// Result describes how a supervised process group ended.
type Result struct {
	// State is the reaped process state. May be nil if the wait
	// itself failed.
	State *os.ProcessState

	// TimedOut is set when the run hit its deadline and the process
	// group was killed by the supervisor.
	TimedOut bool
}

// Supervise starts cmd in its own process group and waits for it,
// enforcing an optional wall-clock timeout. The group covers firejail,
// strace, the target, and everything the target spawns, so a timeout
// leaves neither orphaned descendants nor a zombie child: SIGTERM to
// the whole group, a grace period, SIGKILL to the group, then a
// blocking reap.
//
// A target that exits non-zero, dies on a signal, or gets killed by
// the timeout is not an error here. For profile synthesis those are
// observations; the caller proceeds with whatever trace output was
// captured.
func Supervise(cmd *exec.Cmd, timeout time.Duration, logger *slog.Logger) (*Result, error) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("cannot start %s: %w", cmd.Path, err)
	}
	// With Setpgid the child is its own group leader, so its pid
	// doubles as the pgid.
	pgid := cmd.Process.Pid

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if timeout <= 0 {
		return resultFromWait(cmd, <-done, false)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case err := <-done:
		return resultFromWait(cmd, err, false)
	case <-deadline.C:
	}

	logger.Warn("build timeout reached, terminating process group",
		"pgid", pgid, "timeout", timeout)

	// Phase one: ask nicely, group-wide. The negative pid addresses
	// the whole group.
	_ = unix.Kill(-pgid, unix.SIGTERM)

	grace := time.NewTimer(termGrace)
	defer grace.Stop()
	select {
	case err := <-done:
		return resultFromWait(cmd, err, true)
	case <-grace.C:
	}

	// Phase two: no survivors. The blocking receive reaps the child.
	_ = unix.Kill(-pgid, unix.SIGKILL)
	return resultFromWait(cmd, <-done, true)
}

// resultFromWait folds the outcome of cmd.Wait into a Result. An
// ExitError (non-zero status or death by signal) is an observation,
// not a supervision failure.
func resultFromWait(cmd *exec.Cmd, err error, timedOut bool) (*Result, error) {
	res := &Result{State: cmd.ProcessState, TimedOut: timedOut}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.State = exitErr.ProcessState
			return res, nil
		}
		return res, fmt.Errorf("wait failed: %w", err)
	}
	return res, nil
}
