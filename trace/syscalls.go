// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/elastic/go-seccomp-bpf/arch"
)

// MaxSyscalls caps the number of distinct names kept per extraction
// pass. Insertions beyond the cap are dropped silently: a runaway or
// adversarial trace must not be able to fail profile synthesis.
const MaxSyscalls = 4096

// suggestionComment closes every seccomp section, populated or not.
const suggestionComment = "# Probably you will need to add more syscalls to seccomp.keep. Look for\n" +
	"# seccomp errors in /var/log/syslog or /var/log/audit/audit.log.\n"

// SyscallSet collects the distinct syscall names observed in one
// strace log. Use NewSyscallSet; the zero value has no storage.
type SyscallSet struct {
	names     map[string]struct{}
	truncated bool
}

// NewSyscallSet returns an empty set.
func NewSyscallSet() *SyscallSet {
	return &SyscallSet{names: make(map[string]struct{})}
}

// Add records one name. Adding beyond MaxSyscalls marks the set
// truncated and drops the name.
func (s *SyscallSet) Add(name string) {
	if name == "" {
		return
	}
	if _, ok := s.names[name]; ok {
		return
	}
	if len(s.names) >= MaxSyscalls {
		s.truncated = true
		return
	}
	s.names[name] = struct{}{}
}

// Len returns the number of distinct names collected.
func (s *SyscallSet) Len() int { return len(s.names) }

// Truncated reports whether names were dropped at the cap.
func (s *SyscallSet) Truncated() bool { return s.truncated }

// Names returns the collected names in lexicographic order.
func (s *SyscallSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ExtractSyscalls reads an strace output file and returns the set of
// syscall names it mentions. A file that cannot be opened yields an
// empty set: the log is written by strace inside the sandbox and may
// be missing or empty when the target died early, which degrades the
// profile but does not invalidate it.
func ExtractSyscalls(path string) *SyscallSet {
	set := NewSyscallSet()
	f, err := os.Open(path)
	if err != nil {
		return set
	}
	defer f.Close()
	scanLines(f, func(line string) {
		if name, ok := parseSyscallLine(line); ok {
			set.Add(name)
		}
	})
	return set
}

// WriteDirective renders the seccomp.keep allow-list. Output is fully
// deterministic: names are deduplicated and sorted before emission.
// An empty set degrades to a comment block so the generated profile
// stays complete.
func (s *SyscallSet) WriteDirective(w io.Writer) error {
	names := s.Names()
	if len(names) == 0 {
		_, err := io.WriteString(w, "# 0 syscalls total\n"+suggestionComment)
		return err
	}
	if _, err := fmt.Fprintf(w, "seccomp.keep %s\n", strings.Join(names, ",")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# %d syscalls total\n", len(names)); err != nil {
		return err
	}
	if s.truncated {
		if _, err := fmt.Fprintf(w, "# more than %d distinct syscalls in the trace, list truncated\n", MaxSyscalls); err != nil {
			return err
		}
	}
	if unknown := unknownSyscalls(names); len(unknown) > 0 {
		if _, err := fmt.Fprintf(w, "# not in the %s syscall table, check before keeping: %s\n",
			runtime.GOARCH, strings.Join(unknown, ",")); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, suggestionComment)
	return err
}

// unknownSyscalls returns the names the native architecture's syscall
// table does not know. strace sometimes prints decoded aliases, and a
// trace may have been captured on a different machine; calling these
// out up front saves a confusing seccomp load failure later. Advisory
// only, the names stay in the keep list.
func unknownSyscalls(names []string) []string {
	info, err := arch.GetInfo("")
	if err != nil {
		return nil
	}
	var unknown []string
	for _, name := range names {
		if _, ok := info.SyscallNames[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// parseSyscallLine extracts the syscall name from one strace line.
// Accepted lines look like a call with an argument list, e.g.
//
//	[pid 1234]  openat(AT_FDCWD, "/etc/passwd", O_RDONLY) = 3
//
// Tracer meta output ("+++ exited +++", "--- SIGCHLD ---", "strace:"
// diagnostics, "Process NNN attached") is rejected, as is anything
// that does not read as name-then-parenthesis.
func parseSyscallLine(line string) (string, bool) {
	s := skipPIDPrefix(line)
	if strings.HasPrefix(s, "+++") || strings.HasPrefix(s, "---") ||
		strings.HasPrefix(s, "strace:") || strings.HasPrefix(s, "Process") {
		return "", false
	}
	if s == "" || !isNameStart(s[0]) {
		return "", false
	}
	i := 1
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	name := s[:i]
	rest := strings.TrimLeft(s[i:], " \t")
	if !strings.HasPrefix(rest, "(") {
		return "", false
	}
	return name, true
}

// skipPIDPrefix strips the "[pid NNN]" tag strace prefixes to lines
// of followed children, plus surrounding whitespace.
func skipPIDPrefix(line string) string {
	s := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(s, "[pid") {
		if end := strings.IndexByte(s, ']'); end >= 0 {
			s = strings.TrimLeft(s[end+1:], " \t")
		}
	}
	return s
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
