// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"fmt"
	"io"
	"strings"
)

// ProtocolObservation records which socket address families one
// detection pass saw. It is a plain value returned by DetectProtocols:
// every pass starts from a zero observation, so nothing can leak
// between synthesis runs.
type ProtocolObservation struct {
	Unix      bool
	IPv4      bool
	IPv6      bool
	Netlink   bool
	Packet    bool
	Bluetooth bool
}

// familyTokens maps the space-terminated AF_* tokens of a firejail
// socket event to the observation flag they set.
var familyTokens = []struct {
	token string
	set   func(*ProtocolObservation)
}{
	{"AF_LOCAL ", func(o *ProtocolObservation) { o.Unix = true }},
	{"AF_INET ", func(o *ProtocolObservation) { o.IPv4 = true }},
	{"AF_INET6 ", func(o *ProtocolObservation) { o.IPv6 = true }},
	{"AF_NETLINK ", func(o *ProtocolObservation) { o.Netlink = true }},
	{"AF_PACKET ", func(o *ProtocolObservation) { o.Packet = true }},
	{"AF_BLUETOOTH ", func(o *ProtocolObservation) { o.Bluetooth = true }},
}

// DetectProtocols scans the isolation-event log (primary file plus
// numbered shards) for socket creation events and reports the address
// families in use. The primary file is produced unconditionally by the
// harness, so failing to open it is an environment error, not a
// degraded observation.
func DetectProtocols(primary string) (ProtocolObservation, error) {
	var obs ProtocolObservation
	if err := EachLine(primary, func(line string) {
		matchSocketLine(line, &obs)
	}); err != nil {
		return ProtocolObservation{}, err
	}
	return obs, nil
}

// matchSocketLine parses one trace event of the shape
//
//	4:netcat:socket AF_INET SOCK_STREAM IPPROTO_TCP
//
// and sets the matching family flag. Anything else, including an
// unrecognized family, is ignored.
func matchSocketLine(line string, obs *ProtocolObservation) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != ':' {
		return
	}
	rest := line[i+1:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return
	}
	rest = rest[colon+1:]
	const socketToken = "socket "
	if !strings.HasPrefix(rest, socketToken) {
		return
	}
	rest = rest[len(socketToken):]
	for _, f := range familyTokens {
		if strings.HasPrefix(rest, f.token) {
			f.set(obs)
			return
		}
	}
}

// Any reports whether any family at all was observed.
func (o ProtocolObservation) Any() bool {
	return o.Unix || o.IPv4 || o.IPv6 || o.Netlink || o.Packet || o.Bluetooth
}

// Routable reports whether a family with outside reach was observed.
// Unix-domain and netlink sockets are host-local and never force
// networking to stay on.
func (o ProtocolObservation) Routable() bool {
	return o.IPv4 || o.IPv6 || o.Packet || o.Bluetooth
}

// Families returns the firejail protocol tokens for the observed
// families, in profile order. IPv4 and IPv6 are paired: once either
// shows up, both inet and inet6 are kept, because dual-stack fallback
// is common and cutting one side produces confusing failures.
func (o ProtocolObservation) Families() []string {
	var fams []string
	if o.Unix {
		fams = append(fams, "unix")
	}
	if o.IPv4 || o.IPv6 {
		fams = append(fams, "inet", "inet6")
	}
	if o.Netlink {
		fams = append(fams, "netlink")
	}
	if o.Packet {
		fams = append(fams, "packet")
	}
	if o.Bluetooth {
		fams = append(fams, "bluetooth")
	}
	return fams
}

// WriteDirectives emits the network policy decision. The protocol
// list keeps firejail's historical trailing comma, which the profile
// parser tolerates. A target that never created a routable socket
// loses its network namespace entirely; unix and netlink keep working
// without one.
func (o ProtocolObservation) WriteDirectives(w io.Writer) error {
	if o.Any() {
		var sb strings.Builder
		sb.WriteString("protocol ")
		for _, fam := range o.Families() {
			sb.WriteString(fam)
			sb.WriteString(",")
		}
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	if !o.Routable() {
		_, err := fmt.Fprintln(w, "net none")
		return err
	}
	if _, err := fmt.Fprintln(w, "#net eth0\t# or your main network interface"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "netfilter")
	return err
}
