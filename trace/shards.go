// Copyright 2026 The Worsefirejail Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bufio"
	"fmt"
	"os"
)

// MaxShards is the number of numbered continuation files firejail may
// write next to the primary trace log (<primary>.1 .. <primary>.5).
const MaxShards = 5

// maxLineBytes bounds a single trace line. The head of an over-long
// line is still parsed; the rest is dropped.
const maxLineBytes = 64 * 1024

// EachLine calls fn for every line of the primary trace file and its
// numbered continuation shards, in shard order. Missing shards are
// skipped silently. A primary file that cannot be opened is an error:
// the harness always allocates it before the run, so its absence means
// the run itself went wrong.
func EachLine(primary string, fn func(line string)) error {
	f, err := os.Open(primary)
	if err != nil {
		return fmt.Errorf("cannot open trace file %s: %w", primary, err)
	}
	scanLines(f, fn)
	f.Close()

	for i := 1; i <= MaxShards; i++ {
		sf, err := os.Open(fmt.Sprintf("%s.%d", primary, i))
		if err != nil {
			continue
		}
		scanLines(sf, fn)
		sf.Close()
	}
	return nil
}

// scanLines feeds f to fn line by line, truncating lines longer than
// maxLineBytes instead of failing on them.
func scanLines(f *os.File, fn func(string)) {
	r := bufio.NewReaderSize(f, maxLineBytes)
	for {
		line, isPrefix, err := r.ReadLine()
		if err != nil {
			return
		}
		text := string(line)
		for isPrefix {
			_, isPrefix, err = r.ReadLine()
			if err != nil {
				isPrefix = false
			}
		}
		fn(text)
	}
}
