// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

// Package builder supervises one traced run of a target program and
// synthesizes a firejail profile from what it observed.
//
// A build allocates two scratch trace artifacts ([Artifacts]), wraps
// the target in firejail (isolation plus --trace event logging) and
// strace (syscall recording) via [CommandBuilder], and runs the whole
// thing as a single process group under [Supervise], which enforces an
// optional wall-clock timeout with two-phase termination: SIGTERM to
// the group, a short grace period, SIGKILL, then a blocking reap.
//
// Whatever happens to the target (clean exit, crash, or timeout
// kill), the profile is still produced from the captured traces. The
// only errors that abort a build are environment failures: scratch
// allocation, spawning, or an unreadable isolation-event log.
package builder
