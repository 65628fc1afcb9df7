// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

// Package fswhitelist translates the filesystem access events of the
// isolation-event log into profile directives: home and filesystem
// whitelists, private-bin, private-etc, private-dev, private-tmp.
//
// These builders are deliberately simple text-to-directive passes.
// They all tolerate a missing or unreadable trace file and degrade to
// their most restrictive form, because a smaller whitelist is a safe
// starting point and the user reviews the profile anyway.
package fswhitelist
