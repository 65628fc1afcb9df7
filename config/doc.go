// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the tool settings: where the firejail and
// strace binaries live and where trace scratch files are allocated.
// Settings come from YAML files on the search paths, overlaid onto
// built-in defaults; a later file wins over an earlier one.
package config
