// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"

	"github.com/northlight-systems/cargoshift/pkg/bufpool"
	"github.com/northlight-systems/cargoshift/pkg/logger"
	"github.com/northlight-systems/cargoshift/pkg/metrics"
)

// partMigrator converts FetchablePart items into PartSuccess/PartFailure
// outcomes, running up to concurrency parts in flight at once.
type partMigrator struct {
	concurrency            int
	fetcher                PartFetcher
	dest                   DestinationClient
	auth                   Authorization
	namespace              string
	putter                 *http.Client
	expectedRegisterStatus string
}

// run drains in, processing each part with up to concurrency goroutines,
// and sends one PartOutcome per item to out. The goroutine calling run is
// the only puller of in, so the semaphore acquired before each dispatch
// bounds how far ahead of the slowest in-flight part run may pull: at
// most one item held locally while waiting for a free worker slot, plus
// concurrency items already dispatched — concurrency+1 total, matching
// the look-ahead bound in the spec.
func (m *partMigrator) run(ctx context.Context, in <-chan FetchablePart, out chan<- PartOutcome) {
	sem := semaphore.NewWeighted(int64(m.concurrency))
	var wg sync.WaitGroup

	for part := range in {
		if err := sem.Acquire(ctx, 1); err != nil {
			// ctx was cancelled while waiting for a free slot.
			emit(ctx, out, PartOutcome{Failure: &PartFailure{
				Upload: part.Upload, PartCID: part.PartCID, Cause: cancelledCause(),
			}})
			continue
		}

		wg.Add(1)
		metrics.InFlightParts.Inc()
		go func(part FetchablePart) {
			defer wg.Done()
			defer sem.Release(1)
			defer metrics.InFlightParts.Dec()
			emit(ctx, out, m.process(ctx, part))
		}(part)
	}

	wg.Wait()
}

func emit(ctx context.Context, out chan<- PartOutcome, o PartOutcome) {
	select {
	case out <- o:
	case <-ctx.Done():
	}
}

// process implements the per-part algorithm in spec ¤4.2.
func (m *partMigrator) process(ctx context.Context, part FetchablePart) PartOutcome {
	log := logger.Ctx(ctx).With().Str("upload", part.Upload.CID).Str("part", part.PartCID).Logger()

	fail := func(cause Cause) PartOutcome {
		// A suspension point can return its own transport/protocol error
		// in the same instant ctx is cancelled (fetch, register-part, or
		// the copy PUT). Cancellation always takes precedence over
		// whatever that call happened to report.
		if ctx.Err() != nil {
			cause = cancelledCause()
		}
		log.Warn().Str("kind", string(cause.Kind)).Str("cause", cause.Message).Msg("part migration failed")
		return PartOutcome{Failure: &PartFailure{Upload: part.Upload, PartCID: part.PartCID, Cause: cause}}
	}

	if ctx.Err() != nil {
		return fail(cancelledCause())
	}

	resp, err := m.fetcher.Fetch(ctx, part.PartCID)
	if err != nil {
		return fail(badFetchCause(err))
	}
	body := resp.Body
	defer func() {
		if body != nil {
			body.Close()
		}
	}()

	if resp.StatusCode != 0 && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fail(badFetchCause(fmt.Errorf("part fetcher returned status %d", resp.StatusCode)))
	}

	contentLength, err := parseContentLength(resp.ContentLength)
	if err != nil {
		return fail(badFetchCause(err))
	}

	log.Debug().Str("size", humanize.Bytes(uint64(contentLength))).Msg("part fetched")

	receipt, err := m.dest.Invoke(ctx, InvokeArgs{
		Op:        "register-part",
		Namespace: m.namespace,
		Link:      part.PartCID,
		Size:      contentLength,
	}, m.auth)
	if err != nil {
		return fail(registerCause(Receipt{Out: Result{Err: &Failure{Message: err.Error()}}}))
	}
	if !receipt.Out.IsOk() {
		return fail(registerCause(receipt))
	}

	status := receipt.Out.Ok.Status
	if m.expectedRegisterStatus != "" && status != m.expectedRegisterStatus {
		return fail(protocolCause(status))
	}

	switch status {
	case StatusDone:
		// No byte transfer required; drain and release the fetched body
		// with a pooled buffer rather than letting it leak unread.
		buf := bufpool.Get()
		io.CopyBuffer(io.Discard, body, buf)
		bufpool.Put(buf)
		body.Close()
		body = nil
		return PartOutcome{Success: &PartSuccess{
			Upload: part.Upload, PartCID: part.PartCID, RegisterReceipt: receipt,
		}}

	case StatusUpload:
		if receipt.Out.Ok.Url == nil {
			return fail(protocolCause(status))
		}
		statusCode, err := m.copyTo(ctx, *receipt.Out.Ok.Url, receipt.Out.Ok.Headers, body, contentLength)
		body = nil // copyTo always closes body
		if err != nil {
			return fail(badFetchCause(err))
		}
		if statusCode < 200 || statusCode >= 300 {
			return fail(copyCause(statusCode))
		}
		sc := statusCode
		return PartOutcome{Success: &PartSuccess{
			Upload: part.Upload, PartCID: part.PartCID, RegisterReceipt: receipt, CopyResponseStatus: &sc,
		}}

	default:
		return fail(protocolCause(status))
	}
}

// copyTo streams body, uninterrupted and never buffered whole, as the PUT
// request body against url, following redirects via the shared client.
// It always closes body before returning.
func (m *partMigrator) copyTo(ctx context.Context, url string, headers *Headers, body io.ReadCloser, contentLength int64) (int, error) {
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return 0, err
	}
	req.ContentLength = contentLength
	if headers != nil {
		for _, k := range headers.Keys {
			if v, ok := headers.Values[k]; ok {
				req.Header.Set(k, v)
			}
		}
	}

	client := m.putter
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	buf := bufpool.Get()
	io.CopyBuffer(io.Discard, resp.Body, buf)
	bufpool.Put(buf)
	metrics.BytesCopied.Add(float64(contentLength))
	return resp.StatusCode, nil
}

func parseContentLength(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing content-length")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid content-length %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("non-positive content-length %d", n)
	}
	return n, nil
}
