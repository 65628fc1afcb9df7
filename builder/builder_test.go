// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sploinkster/worsefirejail/config"
)

// readDirNames lists the entries of dir.
func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// testSettings substitutes /bin/true for firejail, so a build run
// spawns a harmless process and leaves the trace artifacts empty.
func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		FirejailPath: "/bin/true",
		StracePath:   "/usr/bin/strace",
		TempDir:      t.TempDir(),
	}
}

func TestBuildProducesCompleteProfile(t *testing.T) {
	b, err := New(Options{
		Command:  []string{"someapp", "--flag"},
		Settings: testSettings(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var sb strings.Builder
	if err := b.Build(&sb); err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := sb.String()

	// Section order: header, blacklisting, home, filesystem, caps
	// block, network, seccomp, private directories, trailer.
	markers := []string{
		"# Firejail profile for someapp",
		"### Basic Blacklisting ###",
		"### Home Directory Whitelisting ###",
		"### Filesystem Whitelisting ###",
		"ipc-namespace",
		"nonewprivs",
		"noroot",
		"net none",
		"# 0 syscalls total",
		"private-dev",
		"private-tmp",
		"#memory-deny-write-execute",
	}
	pos := -1
	for _, marker := range markers {
		next := strings.Index(out, marker)
		if next < 0 {
			t.Fatalf("marker %q missing from profile:\n%s", marker, out)
		}
		if next < pos {
			t.Errorf("marker %q out of order", marker)
		}
		pos = next
	}

	// An empty trace means no routable families and no syscalls, but
	// still a complete document.
	if strings.Contains(out, "seccomp.keep") {
		t.Error("unexpected seccomp.keep for an empty trace")
	}
	if strings.Contains(out, "caps.keep") {
		t.Error("caps.keep emitted without a capabilities list")
	}
}

func TestBuildCapsKeep(t *testing.T) {
	b, err := New(Options{
		Command:  []string{"someapp"},
		CapsKeep: "net_raw",
		Settings: testSettings(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var sb strings.Builder
	if err := b.Build(&sb); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(sb.String(), "caps.keep net_raw\n") {
		t.Error("caps.keep directive missing")
	}
}

func TestBuildAppImageSuppressesSections(t *testing.T) {
	b, err := New(Options{
		Command:  []string{"someapp"},
		AppImage: true,
		Settings: testSettings(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var sb strings.Builder
	if err := b.Build(&sb); err != nil {
		t.Fatalf("Build: %v", err)
	}
	// The bin section is suppressed entirely in appimage mode, so not
	// even the disabled suggestion shows up.
	if strings.Contains(sb.String(), "private-bin") {
		t.Errorf("private-bin section present in appimage mode:\n%s", sb.String())
	}
}

func TestBuildTimeoutStillProducesProfile(t *testing.T) {
	// A fake firejail that ignores its arguments and hangs: the run
	// can only end via the supervisor's timeout kill, and the profile
	// must come out anyway.
	fake := filepath.Join(t.TempDir(), "fake-firejail")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\nsleep 30\n"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	settings := testSettings(t)
	settings.FirejailPath = fake
	b, err := New(Options{
		Command:  []string{"someapp"},
		Timeout:  300 * time.Millisecond,
		Settings: settings,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var sb strings.Builder
	start := time.Now()
	if err := b.Build(&sb); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Build took %v, timeout did not bound the run", elapsed)
	}
	out := sb.String()
	if !strings.Contains(out, "net none") || !strings.Contains(out, "# 0 syscalls total") {
		t.Errorf("timeout build did not produce a complete profile:\n%s", out)
	}
}

func TestBuildRemovesArtifacts(t *testing.T) {
	settings := testSettings(t)
	b, err := New(Options{Command: []string{"someapp"}, Settings: settings})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var sb strings.Builder
	if err := b.Build(&sb); err != nil {
		t.Fatalf("Build: %v", err)
	}
	entries, err := readDirNames(settings.TempDir)
	if err != nil {
		t.Fatalf("readDirNames: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch files left behind: %v", entries)
	}
}

func TestBuildDebugKeepsArtifacts(t *testing.T) {
	settings := testSettings(t)
	b, err := New(Options{Command: []string{"someapp"}, Debug: true, Settings: settings})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var sb strings.Builder
	if err := b.Build(&sb); err != nil {
		t.Fatalf("Build: %v", err)
	}
	entries, err := readDirNames(settings.TempDir)
	if err != nil {
		t.Fatalf("readDirNames: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("debug mode kept %d scratch files, want 2: %v", len(entries), entries)
	}
}

// bannerSink records how many profile bytes were already written when
// Banner fired.
type bannerSink struct {
	strings.Builder
	bannerAt int
}

func (b *bannerSink) Banner() { b.bannerAt = b.Len() }

func TestBuildBannerPrecedesProfile(t *testing.T) {
	b, err := New(Options{
		Command:  []string{"someapp"},
		Settings: testSettings(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sink := &bannerSink{bannerAt: -1}
	if err := b.Build(sink); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sink.bannerAt != 0 {
		t.Errorf("Banner fired at byte %d, want 0 (after the run, before the profile)", sink.bannerAt)
	}
	if sink.Len() == 0 {
		t.Error("no profile written")
	}
}

func TestNewRequiresCommand(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New without a command must fail")
	}
}
