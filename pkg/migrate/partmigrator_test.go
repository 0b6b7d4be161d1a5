// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPartMigrator(t *testing.T, pm *partMigrator, parts ...FetchablePart) []PartOutcome {
	t.Helper()
	in := make(chan FetchablePart, len(parts))
	for _, p := range parts {
		in <- p
	}
	close(in)
	out := make(chan PartOutcome, len(parts))

	done := make(chan struct{})
	go func() {
		pm.run(context.Background(), in, out)
		close(out)
		close(done)
	}()

	var got []PartOutcome
	for o := range out {
		got = append(got, o)
	}
	<-done
	return got
}

func TestPartMigratorDoneStatusNeedsNoCopy(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1"}}
	fetcher := newMapFetcher()
	fetcher.set("p1", "hello")
	dest := &scriptedDestination{onInvoke: func(args InvokeArgs) (Receipt, error) {
		require.Equal(t, "register-part", args.Op)
		return doneReceipt(), nil
	}}

	pm := &partMigrator{concurrency: 2, fetcher: fetcher, dest: dest, namespace: "did:test"}
	outcomes := runPartMigrator(t, pm, FetchablePart{Upload: upload, PartCID: "p1"})

	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Success)
	assert.Nil(t, outcomes[0].Success.CopyResponseStatus)
}

func TestPartMigratorUploadStatusCopiesBytes(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		n, _ := r.Body.Read(buf)
		received = buf[:n]
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	upload := Upload{CID: "u1", Parts: []string{"p1"}}
	fetcher := newMapFetcher()
	fetcher.set("p1", "some-bytes")
	dest := &scriptedDestination{onInvoke: func(args InvokeArgs) (Receipt, error) {
		return uploadReceipt(srv.URL), nil
	}}

	pm := &partMigrator{concurrency: 2, fetcher: fetcher, dest: dest, namespace: "did:test"}
	outcomes := runPartMigrator(t, pm, FetchablePart{Upload: upload, PartCID: "p1"})

	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Success)
	require.NotNil(t, outcomes[0].Success.CopyResponseStatus)
	assert.Equal(t, http.StatusCreated, *outcomes[0].Success.CopyResponseStatus)
	assert.Equal(t, "some-bytes", string(received))
}

func TestPartMigratorRegisterErrBecomesFailure(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1"}}
	fetcher := newMapFetcher()
	fetcher.set("p1", "x")
	dest := &scriptedDestination{onInvoke: func(args InvokeArgs) (Receipt, error) {
		return errReceipt("nope"), nil
	}}

	pm := &partMigrator{concurrency: 2, fetcher: fetcher, dest: dest}
	outcomes := runPartMigrator(t, pm, FetchablePart{Upload: upload, PartCID: "p1"})

	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Failure)
	assert.Equal(t, Register, outcomes[0].Failure.Cause.Kind)
}

func TestPartMigratorUnrecognizedStatusIsProtocolFailure(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1"}}
	fetcher := newMapFetcher()
	fetcher.set("p1", "x")
	dest := &scriptedDestination{onInvoke: func(args InvokeArgs) (Receipt, error) {
		return Receipt{Out: Result{Ok: &Success{Status: "weird"}}}, nil
	}}

	pm := &partMigrator{concurrency: 1, fetcher: fetcher, dest: dest}
	outcomes := runPartMigrator(t, pm, FetchablePart{Upload: upload, PartCID: "p1"})

	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Failure)
	assert.Equal(t, Protocol, outcomes[0].Failure.Cause.Kind)
}

func TestPartMigratorExpectedRegisterStatusRejectsMismatch(t *testing.T) {
	upload := Upload{CID: "u1", Parts: []string{"p1"}}
	fetcher := newMapFetcher()
	fetcher.set("p1", "x")
	dest := &scriptedDestination{onInvoke: func(args InvokeArgs) (Receipt, error) {
		return doneReceipt(), nil
	}}

	pm := &partMigrator{concurrency: 1, fetcher: fetcher, dest: dest, expectedRegisterStatus: StatusUpload}
	outcomes := runPartMigrator(t, pm, FetchablePart{Upload: upload, PartCID: "p1"})

	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Failure)
	assert.Equal(t, Protocol, outcomes[0].Failure.Cause.Kind)
}

func TestPartMigratorRespectsConcurrencyBound(t *testing.T) {
	const k = 3
	fetcher := newMapFetcher()
	for _, p := range []string{"p1", "p2", "p3", "p4", "p5"} {
		fetcher.setHang(p)
	}
	dest := &scriptedDestination{onInvoke: func(args InvokeArgs) (Receipt, error) {
		return doneReceipt(), nil
	}}

	pm := &partMigrator{concurrency: k, fetcher: fetcher, dest: dest}
	upload := Upload{CID: "u1"}

	in := make(chan FetchablePart)
	out := make(chan PartOutcome, 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		pm.run(ctx, in, out)
		close(done)
	}()

	go func() {
		for _, p := range []string{"p1", "p2", "p3", "p4", "p5"} {
			in <- FetchablePart{Upload: upload, PartCID: p}
		}
		close(in)
	}()

	require.Eventually(t, func() bool { return fetcher.peakInFlight() == k }, time.Second, 10*time.Millisecond)
	assert.LessOrEqual(t, fetcher.peakInFlight(), k)

	cancel()
	<-done
}
