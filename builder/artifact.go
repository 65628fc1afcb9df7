// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"fmt"
	"os"

	"github.com/sploinkster/worsefirejail/trace"
)

// Artifacts are the scratch files one supervised run writes its raw
// trace output into: the firejail --trace event log and the strace
// syscall log.
type Artifacts struct {
	Trace    string
	Syscalls string
}

// NewArtifacts allocates both scratch files in dir, or the system
// temporary directory when dir is empty. The names are unique and
// unpredictable, and each file exists (empty) from this point on, so
// firejail and strace get fresh targets nothing else can race for.
func NewArtifacts(dir string) (*Artifacts, error) {
	tf, err := os.CreateTemp(dir, "firejail-trace.*")
	if err != nil {
		return nil, fmt.Errorf("cannot allocate trace file: %w", err)
	}
	tf.Close()

	sf, err := os.CreateTemp(dir, "firejail-syscalls.*")
	if err != nil {
		os.Remove(tf.Name())
		return nil, fmt.Errorf("cannot allocate syscall file: %w", err)
	}
	sf.Close()

	return &Artifacts{Trace: tf.Name(), Syscalls: sf.Name()}, nil
}

// Remove deletes both scratch files, including any shard continuations
// firejail wrote next to the event log.
func (a *Artifacts) Remove() {
	os.Remove(a.Trace)
	os.Remove(a.Syscalls)
	for i := 1; i <= trace.MaxShards; i++ {
		os.Remove(fmt.Sprintf("%s.%d", a.Trace, i))
	}
}
