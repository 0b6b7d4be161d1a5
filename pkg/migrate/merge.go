// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"

	"github.com/northlight-systems/cargoshift/pkg/metrics"
)

// mergeOutcomes fans binder successes/failures and the assembler's
// side-channel failures into a single outcome stream, in arrival order.
// No ordering between the two inputs is promised when both are ready
// (spec ¤4.5). mergeOutcomes returns once both inputs are closed.
func mergeOutcomes(ctx context.Context, bound <-chan UploadOutcome, assemblerFailed <-chan UploadOutcome, out chan<- UploadOutcome) {
	defer close(out)

	for bound != nil || assemblerFailed != nil {
		select {
		case o, ok := <-bound:
			if !ok {
				bound = nil
				continue
			}
			if !send(ctx, out, o) {
				return
			}
		case o, ok := <-assemblerFailed:
			if !ok {
				assemblerFailed = nil
				continue
			}
			if !send(ctx, out, o) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func send(ctx context.Context, out chan<- UploadOutcome, o UploadOutcome) bool {
	kind := "success"
	if o.Failure != nil {
		kind = string(o.Failure.Cause.Kind)
	}
	metrics.OutcomesTotal.WithLabelValues(kind).Inc()

	select {
	case out <- o:
		return true
	case <-ctx.Done():
		return false
	}
}
