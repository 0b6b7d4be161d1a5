// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"io"
)

// Source produces a finite sequence of Upload descriptors. Next returns
// (Upload{}, false, nil) when the sequence is exhausted. The Source
// retains ownership of each descriptor until it is returned by Next.
type Source interface {
	Next(ctx context.Context) (Upload, bool, error)
	// Len optionally reports the total number of uploads, when known in
	// advance. ok is false when the count is not available.
	Len() (n int, ok bool)
}

// FetchResponse is the part fetcher's HTTP-like response: a header set
// (the core only inspects content-length) and a streaming body the
// caller must close.
type FetchResponse struct {
	StatusCode    int
	ContentLength string
	Body          io.ReadCloser
}

// PartFetcher retrieves a part's bytes by CID.
type PartFetcher interface {
	Fetch(ctx context.Context, partCID string) (FetchResponse, error)
}

// InvokeArgs are the capability-invocation arguments for register-part or
// register-upload, encoded generically since the transport codec is an
// external collaborator (spec ¤1).
type InvokeArgs struct {
	// Op is "register-part" or "register-upload".
	Op string
	// Namespace scopes the invocation to the destination namespace (e.g.
	// a decentralized identifier naming where the content will live).
	Namespace string
	// RegisterPart fields.
	Link string
	Size int64
	// RegisterUpload fields.
	Root   string
	Shards []string
}

// Authorization is an opaque list of capability delegations proving the
// caller may invoke register-part/register-upload on the destination
// namespace. The core never inspects its contents.
type Authorization []byte

// DestinationClient issues signed capability invocations against the
// destination service and returns its receipt.
type DestinationClient interface {
	Invoke(ctx context.Context, args InvokeArgs, auth Authorization) (Receipt, error)
}
