// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import "strings"

// Access is one filesystem event from the isolation-event log, e.g.
//
//	4:ls:openat /etc/ld.so.cache
type Access struct {
	Proc    string
	Syscall string
	Path    string
}

// accessSyscalls are the traced calls that name a filesystem path as
// their first argument.
var accessSyscalls = map[string]bool{
	"open": true, "open64": true, "openat": true, "openat64": true,
	"fopen": true, "fopen64": true, "opendir": true,
	"access": true, "stat": true, "stat64": true, "lstat": true, "lstat64": true,
	"mkdir": true, "rmdir": true, "unlink": true,
	"exec": true, "execv": true, "execvp": true, "run": true,
}

// EachAccess calls fn for every filesystem access event in the
// isolation-event log and its shards. Unlike protocol detection a
// missing primary file is tolerated here: the filesystem builders
// only refine the profile, so they degrade to an empty observation.
func EachAccess(primary string, fn func(Access)) {
	_ = EachLine(primary, func(line string) {
		if a, ok := parseAccessLine(line); ok {
			fn(a)
		}
	})
}

// parseAccessLine parses "<pid>:<proc>:<syscall> <path>...". The path
// is the first argument; trailing arguments and the result column are
// cut off. Relative paths are skipped, the trace records them rarely
// and a whitelist directive could not use them anyway.
func parseAccessLine(line string) (Access, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != ':' {
		return Access{}, false
	}
	rest := line[i+1:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return Access{}, false
	}
	proc := rest[:colon]
	rest = rest[colon+1:]
	space := strings.IndexByte(rest, ' ')
	if space <= 0 {
		return Access{}, false
	}
	name := rest[:space]
	if !accessSyscalls[name] {
		return Access{}, false
	}
	arg := rest[space+1:]
	if j := strings.IndexAny(arg, " :"); j >= 0 {
		arg = arg[:j]
	}
	if !strings.HasPrefix(arg, "/") {
		return Access{}, false
	}
	return Access{Proc: proc, Syscall: name, Path: arg}, true
}
