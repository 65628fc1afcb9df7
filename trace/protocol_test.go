// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMatchSocketLine(t *testing.T) {
	tests := []struct {
		line string
		want ProtocolObservation
	}{
		{"4:prog:socket AF_INET SOCK_STREAM IPPROTO_TCP", ProtocolObservation{IPv4: true}},
		{"4:prog:socket AF_INET6 SOCK_DGRAM 0", ProtocolObservation{IPv6: true}},
		{"12:a b c:socket AF_LOCAL SOCK_STREAM 0", ProtocolObservation{Unix: true}},
		{"4:prog:socket AF_NETLINK SOCK_RAW 0", ProtocolObservation{Netlink: true}},
		{"4:prog:socket AF_PACKET SOCK_RAW 768", ProtocolObservation{Packet: true}},
		{"4:prog:socket AF_BLUETOOTH SOCK_SEQPACKET 3", ProtocolObservation{Bluetooth: true}},
		// Rejected shapes.
		{"prog:socket AF_INET SOCK_STREAM 0", ProtocolObservation{}},  // no leading pid
		{"4:prog:open /etc/passwd", ProtocolObservation{}},            // not a socket event
		{"4:socket AF_INET SOCK_STREAM 0", ProtocolObservation{}},     // only one colon
		{"4:prog:socket AF_AX25 SOCK_DGRAM 0", ProtocolObservation{}}, // unknown family
		{"4:prog:socket AF_INET6", ProtocolObservation{}},             // family not space-terminated
		{"", ProtocolObservation{}},
	}
	for _, tt := range tests {
		var obs ProtocolObservation
		matchSocketLine(tt.line, &obs)
		if obs != tt.want {
			t.Errorf("matchSocketLine(%q) = %+v, want %+v", tt.line, obs, tt.want)
		}
	}
}

func TestDetectProtocolsWithShards(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "trace")
	if err := os.WriteFile(primary, []byte("4:prog:socket AF_INET 0.0.0.0:80\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// Shard 1 is missing on purpose; shard 2 must still be scanned.
	if err := os.WriteFile(primary+".2", []byte("5:prog:socket AF_INET6 ::1:80\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	obs, err := DetectProtocols(primary)
	if err != nil {
		t.Fatalf("DetectProtocols: %v", err)
	}
	if !obs.IPv4 || !obs.IPv6 {
		t.Errorf("observation = %+v, want IPv4 and IPv6", obs)
	}

	var sb strings.Builder
	if err := obs.WriteDirectives(&sb); err != nil {
		t.Fatalf("WriteDirectives: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "protocol inet,inet6,\n") {
		t.Errorf("output = %q, want protocol inet,inet6, first", out)
	}
	if !strings.Contains(out, "netfilter\n") {
		t.Errorf("output = %q, want netfilter", out)
	}
	if strings.Contains(out, "net none") {
		t.Errorf("output = %q, routable families must not disable the network", out)
	}
}

func TestDetectProtocolsNothingObserved(t *testing.T) {
	primary := filepath.Join(t.TempDir(), "trace")
	if err := os.WriteFile(primary, []byte("4:prog:open /etc/passwd\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	obs, err := DetectProtocols(primary)
	if err != nil {
		t.Fatalf("DetectProtocols: %v", err)
	}
	var sb strings.Builder
	if err := obs.WriteDirectives(&sb); err != nil {
		t.Fatalf("WriteDirectives: %v", err)
	}
	if sb.String() != "net none\n" {
		t.Errorf("output = %q, want exactly %q", sb.String(), "net none\n")
	}
}

func TestDetectProtocolsLocalOnly(t *testing.T) {
	primary := filepath.Join(t.TempDir(), "trace")
	content := "1:a:socket AF_LOCAL SOCK_STREAM 0\n2:b:socket AF_NETLINK SOCK_RAW 0\n"
	if err := os.WriteFile(primary, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	obs, err := DetectProtocols(primary)
	if err != nil {
		t.Fatalf("DetectProtocols: %v", err)
	}
	var sb strings.Builder
	if err := obs.WriteDirectives(&sb); err != nil {
		t.Fatalf("WriteDirectives: %v", err)
	}
	// Local-only families still disable the network namespace.
	want := "protocol unix,netlink,\nnet none\n"
	if sb.String() != want {
		t.Errorf("output = %q, want %q", sb.String(), want)
	}
}

func TestDetectProtocolsMissingPrimary(t *testing.T) {
	_, err := DetectProtocols(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("DetectProtocols on a missing primary file must fail")
	}
}

func TestDetectProtocolsNoStateLeak(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	if err := os.WriteFile(first, []byte("4:prog:socket AF_INET 0.0.0.0:80\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	second := filepath.Join(dir, "second")
	if err := os.WriteFile(second, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if obs, err := DetectProtocols(first); err != nil || !obs.IPv4 {
		t.Fatalf("first pass = %+v, %v", obs, err)
	}
	obs, err := DetectProtocols(second)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if obs != (ProtocolObservation{}) {
		t.Errorf("second pass leaked state from the first: %+v", obs)
	}
}

func TestFamiliesOrder(t *testing.T) {
	obs := ProtocolObservation{Unix: true, IPv6: true, Netlink: true, Packet: true, Bluetooth: true}
	want := []string{"unix", "inet", "inet6", "netlink", "packet", "bluetooth"}
	got := obs.Families()
	if len(got) != len(want) {
		t.Fatalf("Families() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Families() = %v, want %v", got, want)
		}
	}
}
