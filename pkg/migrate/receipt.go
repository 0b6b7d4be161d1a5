// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import "encoding/json"

// StatusDone indicates the destination already holds the part; no byte
// transfer is required.
const StatusDone = "done"

// StatusUpload indicates the destination wants the part's bytes PUT to
// Success.Url.
const StatusUpload = "upload"

// Success is the Ok side of a register-part/register-upload receipt.
// Field names and semantics follow the upstream store/add result shape
// this capability protocol is modeled on.
type Success struct {
	// Status is "done" or "upload"; any other value is a Protocol failure.
	Status string `json:"status"`
	// With is the DID of the destination namespace this item is stored in.
	With string `json:"with,omitempty"`
	// Link is the CID of the registered item.
	Link string `json:"link,omitempty"`
	// Url is the presigned destination for the byte transfer, set when
	// Status == StatusUpload.
	Url *string `json:"url,omitempty"`
	// Headers are required on the PUT to Url.
	Headers *Headers `json:"headers,omitempty"`
	// Allocated is the total bytes allocated in the space to accommodate
	// this item. May be zero if the item is already stored.
	Allocated uint64 `json:"allocated,omitempty"`
}

// Headers is an ordered header list (the destination may require specific
// header ordering on the PUT, hence Keys alongside the Values map).
type Headers struct {
	Keys   []string          `json:"keys"`
	Values map[string]string `json:"values"`
}

// Failure is the Err side of a receipt.
type Failure struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

func (f *Failure) Error() string { return f.Message }

// Result is a receipt's ok-or-err outcome.
type Result struct {
	Ok  *Success `json:"ok,omitempty"`
	Err *Failure `json:"error,omitempty"`
}

// IsOk reports whether the invocation succeeded.
func (r Result) IsOk() bool { return r.Ok != nil }

// Receipt is the opaque, signed record the destination client returns for
// every capability invocation. The core never interprets anything beyond
// Out; Ran/Issuer/Signature/Fx/Meta are carried through unexamined so they
// round-trip into the outcome log exactly as received.
type Receipt struct {
	Type      string          `json:"type"`
	Ran       json.RawMessage `json:"ran,omitempty"`
	Out       Result          `json:"out"`
	Issuer    json.RawMessage `json:"issuer,omitempty"`
	Signature json.RawMessage `json:"signature,omitempty"`
	Fx        json.RawMessage `json:"fx,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}
