// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"

	"github.com/northlight-systems/cargoshift/pkg/logger"
)

// fanOut pulls Upload descriptors from src one at a time and emits their
// parts, in input order, onto out. It does not start pulling the next
// upload until every part of the current one has been sent, so the
// Assembler can rely on per-upload adjacency: an upload's parts never
// interleave with another upload's parts on this channel.
//
// fanOut closes out when src is exhausted, ctx is cancelled, or src
// returns an error. It returns that source error, or nil when src is
// exhausted, ctx is cancelled, or src fails only after ctx was cancelled.
func fanOut(ctx context.Context, src Source, out chan<- FetchablePart) error {
	log := logger.Ctx(ctx)
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		upload, ok, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// src observed the same cancellation and surfaced it as
				// an error rather than a clean end-of-stream; the outer
				// generator still terminates cleanly, not by propagating.
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}

		log.Debug().Str("upload", upload.CID).Int("parts", len(upload.Parts)).Msg("fan-out: upload received")

		for _, partCID := range upload.Parts {
			select {
			case out <- FetchablePart{Upload: upload, PartCID: partCID}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
