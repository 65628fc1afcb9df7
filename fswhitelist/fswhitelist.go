// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package fswhitelist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sploinkster/worsefirejail/profile"
	"github.com/sploinkster/worsefirejail/trace"
)

// collect gathers the sorted, deduplicated values produced by sel over
// all access events in the trace log.
func collect(primary string, sel func(trace.Access) (string, bool)) []string {
	seen := make(map[string]struct{})
	trace.EachAccess(primary, func(a trace.Access) {
		if v, ok := sel(a); ok && v != "" {
			seen[v] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// whitelistPrefix emits a whitelist line for every distinct path under
// prefix, except those skip rejects.
func whitelistPrefix(primary, prefix string, skip func(string) bool, p *profile.Writer) {
	paths := collect(primary, func(a trace.Access) (string, bool) {
		if !strings.HasPrefix(a.Path, prefix) {
			return "", false
		}
		if skip != nil && skip(a.Path) {
			return "", false
		}
		return a.Path, true
	})
	for _, path := range paths {
		p.Line("whitelist %s", path)
	}
}

// Home emits whitelist directives for every home-directory path the
// target touched. A program that never looked at $HOME gets a fully
// private home instead.
func Home(primary string, p *profile.Writer) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" || home == "/" {
		p.Line("private")
		return
	}
	prefix := home + "/"
	paths := collect(primary, func(a trace.Access) (string, bool) {
		if !strings.HasPrefix(a.Path, prefix) {
			return "", false
		}
		return "~/" + strings.TrimPrefix(a.Path, prefix), true
	})
	if len(paths) == 0 {
		p.Line("private")
		return
	}
	for _, path := range paths {
		p.Line("whitelist %s", path)
	}
	p.Line("include whitelist-common.inc")
}

// Run whitelists accesses under /run, leaving the per-user runtime
// directory to RunUser.
func Run(primary string, p *profile.Writer) {
	whitelistPrefix(primary, "/run/", func(path string) bool {
		return strings.HasPrefix(path, "/run/user/")
	}, p)
}

// RunUser whitelists accesses under the caller's XDG runtime
// directory.
func RunUser(primary string, p *profile.Writer) {
	prefix := fmt.Sprintf("/run/user/%d/", os.Getuid())
	whitelistPrefix(primary, prefix, nil, p)
}

// Share whitelists accesses under /usr/share.
func Share(primary string, p *profile.Writer) {
	whitelistPrefix(primary, "/usr/share/", nil, p)
}

// Var whitelists accesses under /var.
func Var(primary string, p *profile.Writer) {
	whitelistPrefix(primary, "/var/", nil, p)
}

// binDirs are the directories private-bin draws from.
var binDirs = []string{
	"/bin/", "/sbin/",
	"/usr/bin/", "/usr/sbin/", "/usr/local/bin/", "/usr/games/",
}

// execSyscalls are the trace events that mark a program execution.
var execSyscalls = map[string]bool{
	"exec": true, "execv": true, "execvp": true, "run": true,
}

// Bin emits a private-bin list from the programs the target executed.
func Bin(primary string, p *profile.Writer) {
	names := collect(primary, func(a trace.Access) (string, bool) {
		if !execSyscalls[a.Syscall] {
			return "", false
		}
		for _, dir := range binDirs {
			if strings.HasPrefix(a.Path, dir) {
				return filepath.Base(a.Path), true
			}
		}
		return "", false
	})
	if len(names) == 0 {
		p.Line("#private-bin")
		return
	}
	p.Line("private-bin %s", strings.Join(names, ","))
}

// standardDevices ship with firejail's private-dev and never need a
// callout.
var standardDevices = map[string]bool{
	"/dev/null": true, "/dev/zero": true, "/dev/full": true,
	"/dev/random": true, "/dev/urandom": true,
	"/dev/tty": true, "/dev/ptmx": true, "/dev/pts": true,
	"/dev/shm": true, "/dev/fd": true, "/dev/log": true,
	"/dev/stdin": true, "/dev/stdout": true, "/dev/stderr": true,
}

// Dev always recommends private-dev; device nodes outside the minimal
// set it provides are called out so the user can whitelist them by
// hand.
func Dev(primary string, p *profile.Writer) {
	devices := collect(primary, func(a trace.Access) (string, bool) {
		if !strings.HasPrefix(a.Path, "/dev/") {
			return "", false
		}
		path := a.Path
		if strings.HasPrefix(path, "/dev/pts/") {
			path = "/dev/pts"
		}
		if standardDevices[path] {
			return "", false
		}
		return path, true
	})
	p.Line("private-dev")
	for _, dev := range devices {
		p.Line("# device in use, consider: whitelist %s", dev)
	}
}

// Etc emits a private-etc list from the /etc entries the target read.
func Etc(primary string, p *profile.Writer) {
	names := collect(primary, func(a trace.Access) (string, bool) {
		if !strings.HasPrefix(a.Path, "/etc/") {
			return "", false
		}
		rest := strings.TrimPrefix(a.Path, "/etc/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		if rest == "" {
			return "", false
		}
		return rest, true
	})
	if len(names) == 0 {
		p.Line("#private-etc")
		return
	}
	p.Line("private-etc %s", strings.Join(names, ","))
}

// Tmp recommends a private /tmp. Paths the target used are listed as
// comments: they live in the fresh tmpfs, so they rarely need more.
func Tmp(primary string, p *profile.Writer) {
	paths := collect(primary, func(a trace.Access) (string, bool) {
		if strings.HasPrefix(a.Path, "/tmp/") {
			return a.Path, true
		}
		return "", false
	})
	p.Line("private-tmp")
	for _, path := range paths {
		p.Line("# /tmp path in use: %s", path)
	}
}
