// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

// Package trace turns the raw text logs captured during a supervised
// run into policy observations.
//
// Two artifacts feed this package. The strace syscall log is parsed by
// [ExtractSyscalls] into a deduplicated [SyscallSet], rendered as a
// sorted seccomp.keep allow-list. The firejail --trace event log is
// parsed by [DetectProtocols] into a [ProtocolObservation] describing
// which socket address families the target used, and by [EachAccess]
// into filesystem [Access] events for the whitelist builders.
//
// The event log is sharded: firejail may continue it in up to
// [MaxShards] numbered files (<primary>.1 and so on) as the target
// forks. [EachLine] hides that detail from all consumers. A missing
// shard is normal; a missing primary file is not, because the harness
// creates it unconditionally before the run.
//
// Parsing is best effort throughout. Trace logs are written by a
// tracer racing the traced program, so truncated, interleaved, or
// otherwise malformed lines are expected input and are skipped, never
// an error.
package trace
