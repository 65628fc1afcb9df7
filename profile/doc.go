// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile handles the generated profile document: where it
// goes and how lines get into it.
//
// A profile is a write-once, append-only stream of directive and
// comment lines. [Sink] selects the destination (a freshly created
// file, or stdout) and refuses to overwrite an existing file; on an
// interactive stdout its [Sink.Banner] separates the profile from the
// traced program's output. [Writer] appends lines and latches the
// first write error so callers can emit whole sections and check once
// at the end. The canned firejail boilerplate sections (header
// comments, blacklist includes, toggled-off suggestions) live in
// sections.go.
package profile
