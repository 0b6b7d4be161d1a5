// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/northlight-systems/cargoshift/pkg/logger"
)

// Config configures one migration Run.
type Config struct {
	Source            Source
	PartFetcher       PartFetcher
	DestinationClient DestinationClient
	Authorization     Authorization
	// Namespace is the destination namespace (e.g. a DID) every
	// register-part/register-upload invocation is scoped to.
	Namespace string
	// Concurrency bounds how many parts are fetched/registered/copied at
	// once. Defaults to 1; values below 1 are clamped to 1.
	Concurrency int
	// PutClient is the HTTP client used for the byte pass-through PUT.
	// Defaults to http.DefaultClient.
	PutClient *http.Client
	// ExpectedRegisterStatus, when set, rejects any register-part receipt
	// whose Ok.Status doesn't match it, as a Protocol failure.
	// register-upload receipts are not checked against it.
	ExpectedRegisterStatus string
	// RunID tags every log line emitted by this run. A random id is
	// generated when empty.
	RunID string
}

// Run starts the migration pipeline. It returns a channel of outcomes —
// exactly one per Upload read from cfg.Source, in arrival (not input)
// order — and a done channel that receives a single value (nil, a
// Source error, or a recovered panic wrapped as an error) once every
// stage has drained, then closes.
//
// Cancelling ctx stops the pipeline cooperatively: in-flight parts
// resolve to Cancelled failures, no further uploads are pulled from the
// Source, and outcomes/done both close once drained.
func Run(ctx context.Context, cfg Config) (<-chan UploadOutcome, <-chan error) {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	runLogger := logger.Ctx(ctx).With().
		Str("run_id", runID).
		Str("namespace", cfg.Namespace).
		Int("concurrency", cfg.Concurrency).
		Logger()
	ctx = logger.WithLogger(ctx, &runLogger)
	ctx, cancel := context.WithCancel(ctx)

	parts := make(chan FetchablePart)
	partOutcomes := make(chan PartOutcome, 1)
	ready := make(chan UploadPartsReady, 1)
	bound := make(chan UploadOutcome, 1)
	assemblerFailed := make(chan UploadOutcome, 1)
	outcomes := make(chan UploadOutcome, 1)
	done := make(chan error, 1)

	var wg sync.WaitGroup
	var sourceErr, panicErr atomic.Pointer[error]

	guard := func(name string, fn func()) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("cargoshift: panic in %s stage: %v", name, r)
				sentry.CaptureException(err)
				panicErr.Store(&err)
				cancel()
			}
		}()
		fn()
	}

	pm := &partMigrator{
		concurrency:            cfg.Concurrency,
		fetcher:                cfg.PartFetcher,
		dest:                   cfg.DestinationClient,
		auth:                   cfg.Authorization,
		namespace:              cfg.Namespace,
		putter:                 cfg.PutClient,
		expectedRegisterStatus: cfg.ExpectedRegisterStatus,
	}
	bd := &binder{dest: cfg.DestinationClient, auth: cfg.Authorization, namespace: cfg.Namespace}

	wg.Add(5)
	go guard("fanout", func() {
		if err := fanOut(ctx, cfg.Source, parts); err != nil {
			sourceErr.Store(&err)
			cancel()
		}
	})
	go guard("partmigrator", func() {
		pm.run(ctx, parts, partOutcomes)
		close(partOutcomes)
	})
	go guard("assembler", func() { assemble(ctx, partOutcomes, ready, assemblerFailed) })
	go guard("binder", func() { bd.run(ctx, ready, bound) })
	go guard("merge", func() { mergeOutcomes(ctx, bound, assemblerFailed, outcomes) })

	go func() {
		wg.Wait()
		cancel()
		var finalErr error
		if p := sourceErr.Load(); p != nil {
			finalErr = *p
		}
		if p := panicErr.Load(); p != nil {
			finalErr = *p
		}
		done <- finalErr
		close(done)
	}()

	return outcomes, done
}
