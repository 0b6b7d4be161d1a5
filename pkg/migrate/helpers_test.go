// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
)

// sliceSource is a Source over an in-memory slice of uploads, used by
// every pipeline-level test instead of stdin/ndjson plumbing.
type sliceSource struct {
	mu      sync.Mutex
	uploads []Upload
	i       int
	err     error
	// errAfter, when >= 0, makes Next return err once i reaches errAfter.
	errAfter int
}

func newSliceSource(uploads ...Upload) *sliceSource {
	return &sliceSource{uploads: uploads, errAfter: -1}
}

func (s *sliceSource) Next(ctx context.Context) (Upload, bool, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errAfter >= 0 && s.i >= s.errAfter {
		return Upload{}, false, s.err
	}
	if s.i >= len(s.uploads) {
		return Upload{}, false, nil
	}
	u := s.uploads[s.i]
	s.i++
	return u, true, nil
}

func (s *sliceSource) Len() (int, bool) { return len(s.uploads), true }

// pulled reports how many uploads Next has returned so far.
func (s *sliceSource) pulled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.i
}

// mapFetcher answers Fetch from a fixed table of part bodies, and can be
// told to hang forever for a given partCID to exercise the concurrency
// bound and cancellation paths.
type mapFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	hang    map[string]bool
	inFlight int
	peak    int
}

func newMapFetcher() *mapFetcher {
	return &mapFetcher{bodies: map[string]string{}, hang: map[string]bool{}}
}

func (f *mapFetcher) set(partCID, body string) { f.bodies[partCID] = body }
func (f *mapFetcher) setHang(partCID string)    { f.hang[partCID] = true }

func (f *mapFetcher) Fetch(ctx context.Context, partCID string) (FetchResponse, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.hang[partCID] {
		<-ctx.Done()
		return FetchResponse{}, ctx.Err()
	}

	body, ok := f.bodies[partCID]
	if !ok {
		body = "default-body"
	}
	return FetchResponse{
		StatusCode:    200,
		ContentLength: strconv.Itoa(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
	}, nil
}

func (f *mapFetcher) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

// scriptedDestination invokes a per-call function so tests can script
// register-part/register-upload behavior precisely.
type scriptedDestination struct {
	mu        sync.Mutex
	onInvoke  func(args InvokeArgs) (Receipt, error)
	invocations []InvokeArgs
}

func (d *scriptedDestination) Invoke(ctx context.Context, args InvokeArgs, auth Authorization) (Receipt, error) {
	d.mu.Lock()
	d.invocations = append(d.invocations, args)
	d.mu.Unlock()
	return d.onInvoke(args)
}

func (d *scriptedDestination) calls() []InvokeArgs {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]InvokeArgs, len(d.invocations))
	copy(out, d.invocations)
	return out
}

func doneReceipt() Receipt {
	return Receipt{Type: "Receipt", Out: Result{Ok: &Success{Status: StatusDone}}}
}

func uploadReceipt(url string) Receipt {
	return Receipt{Type: "Receipt", Out: Result{Ok: &Success{Status: StatusUpload, Url: &url}}}
}

func errReceipt(msg string) Receipt {
	return Receipt{Type: "Receipt", Out: Result{Err: &Failure{Message: msg}}}
}
