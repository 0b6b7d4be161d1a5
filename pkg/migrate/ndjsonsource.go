// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
)

// NDJSONSource reads one Upload per line of newline-delimited JSON from r.
// Lines are read lazily, one per Next call, so the Source never holds
// more than one scanner buffer (at most 8 MiB) in memory.
type NDJSONSource struct {
	scanner *bufio.Scanner
	total   int
	knownN  bool
}

// NewNDJSONSource builds a Source over r. When total >= 0 it is reported
// by Len; pass -1 when the upload count isn't known ahead of time.
func NewNDJSONSource(r io.Reader, total int) *NDJSONSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &NDJSONSource{scanner: s, total: total, knownN: total >= 0}
}

// Next implements Source.
func (s *NDJSONSource) Next(ctx context.Context) (Upload, bool, error) {
	for {
		if ctx.Err() != nil {
			return Upload{}, false, ctx.Err()
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return Upload{}, false, err
			}
			return Upload{}, false, nil
		}
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var u Upload
		if err := json.Unmarshal(line, &u); err != nil {
			return Upload{}, false, err
		}
		return u, true, nil
	}
}

// Len implements Source.
func (s *NDJSONSource) Len() (int, bool) { return s.total, s.knownN }
