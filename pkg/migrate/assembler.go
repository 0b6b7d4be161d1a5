// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"

	"github.com/northlight-systems/cargoshift/pkg/logger"
)

// accumulator tracks the parts seen so far for one in-flight upload.
type accumulator struct {
	upload   Upload
	expected map[string]struct{}
	received map[string]PartOutcome
}

func newAccumulator(u Upload) *accumulator {
	return &accumulator{
		upload:   u,
		expected: u.distinctParts(),
		received: make(map[string]PartOutcome, len(u.Parts)),
	}
}

func (a *accumulator) complete() bool {
	if len(a.received) < len(a.expected) {
		return false
	}
	for cid := range a.expected {
		if _, ok := a.received[cid]; !ok {
			return false
		}
	}
	return true
}

func (a *accumulator) allOk() bool {
	for _, o := range a.received {
		if !o.ok() {
			return false
		}
	}
	return true
}

func (a *accumulator) successes() map[string]PartSuccess {
	out := make(map[string]PartSuccess, len(a.received))
	for cid, o := range a.received {
		out[cid] = *o.Success
	}
	return out
}

// assembler groups PartOutcomes by upload CID, emitting exactly one
// UploadPartsReady (to ready) or UploadFailure (to failed) per upload once
// every distinct part has reported in. The map is owned exclusively by the
// goroutine running assemble; spec ¤5 requires this ownership discipline
// so no locking is needed.
func assemble(ctx context.Context, in <-chan PartOutcome, ready chan<- UploadPartsReady, failed chan<- UploadOutcome) {
	log := logger.Ctx(ctx)
	defer close(ready)
	defer close(failed)

	inFlight := make(map[string]*accumulator)
	// done holds the CID of every upload that has already emitted its
	// one outcome. Upload.Parts may contain duplicate part CIDs (spec
	// ¤3/¤9), so PartMigrator can emit two independent PartOutcomes for
	// the same distinct part; once an upload is complete, any further
	// outcome naming it is a late duplicate and must be dropped, not
	// turned into a second accumulator.
	done := make(map[string]struct{})

	for outcome := range in {
		uploadCID := outcome.upload().CID
		if _, ok := done[uploadCID]; ok {
			continue
		}
		acc, ok := inFlight[uploadCID]
		if !ok {
			acc = newAccumulator(outcome.upload())
			inFlight[uploadCID] = acc
		}
		acc.received[outcome.partCID()] = outcome

		if !acc.complete() {
			continue
		}
		delete(inFlight, uploadCID)
		done[uploadCID] = struct{}{}

		if acc.allOk() {
			log.Debug().Str("upload", uploadCID).Msg("assembler: all parts ready")
			select {
			case ready <- UploadPartsReady{Upload: acc.upload, Parts: acc.successes()}:
			case <-ctx.Done():
				return
			}
			continue
		}

		failedCount := 0
		for _, o := range acc.received {
			if !o.ok() {
				failedCount++
			}
		}
		f := UploadFailure{
			Upload: acc.upload,
			Parts:  acc.received,
			Cause:  somePartsFailedCause(failedCount, len(acc.expected)),
		}
		log.Warn().Str("upload", uploadCID).Int("failed", failedCount).Int("total", len(acc.expected)).Msg("assembler: upload failed")
		select {
		case failed <- UploadOutcome{Failure: &f}:
		case <-ctx.Done():
			return
		}
	}
}

// upload returns the Upload this PartOutcome belongs to.
func (o PartOutcome) upload() Upload {
	if o.Success != nil {
		return o.Success.Upload
	}
	return o.Failure.Upload
}
