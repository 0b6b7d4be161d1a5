// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOutcomesFansInBothChannels(t *testing.T) {
	bound := make(chan UploadOutcome, 2)
	assemblerFailed := make(chan UploadOutcome, 2)
	bound <- UploadOutcome{Success: &UploadSuccess{Upload: Upload{CID: "u1"}}}
	bound <- UploadOutcome{Success: &UploadSuccess{Upload: Upload{CID: "u2"}}}
	assemblerFailed <- UploadOutcome{Failure: &UploadFailure{Upload: Upload{CID: "u3"}}}
	close(bound)
	close(assemblerFailed)

	out := make(chan UploadOutcome, 3)
	mergeOutcomes(context.Background(), bound, assemblerFailed, out)

	require.Len(t, out, 3)
	var cids []string
	for o := range out {
		if o.Success != nil {
			cids = append(cids, o.Success.Upload.CID)
		} else {
			cids = append(cids, o.Failure.Upload.CID)
		}
	}
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, cids)
}

func TestMergeOutcomesReturnsAfterCancellation(t *testing.T) {
	bound := make(chan UploadOutcome)
	assemblerFailed := make(chan UploadOutcome)
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan UploadOutcome)

	done := make(chan struct{})
	go func() {
		mergeOutcomes(ctx, bound, assemblerFailed, out)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mergeOutcomes did not return after cancellation")
	}
}
