// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"

	"github.com/northlight-systems/cargoshift/pkg/logger"
)

// binder issues the register-upload invocation for each UploadPartsReady
// and emits the terminal UploadSuccess or UploadFailure.
type binder struct {
	dest      DestinationClient
	auth      Authorization
	namespace string
}

func (b *binder) run(ctx context.Context, in <-chan UploadPartsReady, out chan<- UploadOutcome) {
	log := logger.Ctx(ctx)
	defer close(out)

	for ready := range in {
		shards := make([]string, len(ready.Upload.Parts))
		copy(shards, ready.Upload.Parts)

		receipt, err := b.dest.Invoke(ctx, InvokeArgs{
			Op:        "register-upload",
			Namespace: b.namespace,
			Root:      ready.Upload.CID,
			Shards:    shards,
		}, b.auth)

		var o UploadOutcome
		switch {
		case err != nil:
			log.Warn().Str("upload", ready.Upload.CID).Err(err).Msg("binder: register-upload transport error")
			o = UploadOutcome{Failure: &UploadFailure{
				Upload: ready.Upload,
				Parts:  partOutcomes(ready.Parts),
				Cause:  bindCause(err),
			}}
		case !receipt.Out.IsOk():
			log.Warn().Str("upload", ready.Upload.CID).Msg("binder: register-upload receipt was Err")
			o = UploadOutcome{Failure: &UploadFailure{
				Upload: ready.Upload,
				Parts:  partOutcomes(ready.Parts),
				Cause:  bindCause(registerErr(receipt)),
			}}
		default:
			log.Debug().Str("upload", ready.Upload.CID).Msg("binder: upload bound")
			o = UploadOutcome{Success: &UploadSuccess{
				Upload:      ready.Upload,
				Parts:       ready.Parts,
				BindReceipt: receipt,
			}}
		}

		select {
		case out <- o:
		case <-ctx.Done():
			return
		}
	}
}

func partOutcomes(successes map[string]PartSuccess) map[string]PartOutcome {
	out := make(map[string]PartOutcome, len(successes))
	for cid, s := range successes {
		s := s
		out[cid] = PartOutcome{Success: &s}
	}
	return out
}

func registerErr(r Receipt) error {
	if r.Out.Err != nil {
		return r.Out.Err
	}
	return errBindUnknown
}
