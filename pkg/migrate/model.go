// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

// Package migrate implements the streaming migration pipeline: it reads
// Upload descriptors from a Source, registers and copies each upload's
// parts to a capability-based destination, binds the parts to the upload,
// and emits exactly one outcome per input upload.
package migrate

import "time"

// Upload is a logical content-addressed object composed of one or more
// parts. It is produced by the Source and consumed exactly once by the
// fan-out stage.
type Upload struct {
	ID      string   `json:"_id,omitempty"`
	CID     string   `json:"cid"`
	Name    string   `json:"name,omitempty"`
	Parts   []string `json:"parts"`
	Created time.Time `json:"created,omitempty"`
	Updated time.Time `json:"updated,omitempty"`
	DAGSize int64    `json:"dagSize,omitempty"`
}

// distinctParts returns the set of unique part CIDs in the upload,
// preserving nothing about order (ordering is recovered separately via
// Parts when a shards list must be built).
func (u Upload) distinctParts() map[string]struct{} {
	set := make(map[string]struct{}, len(u.Parts))
	for _, p := range u.Parts {
		set[p] = struct{}{}
	}
	return set
}

// FetchablePart is one part of an Upload, ready to be fetched and
// registered. Fan-out emits one of these per part in Upload.Parts, in
// input order.
type FetchablePart struct {
	Upload  Upload
	PartCID string
}

// PartSuccess records a part that was fetched, registered, and (if
// required) copied to the destination successfully.
type PartSuccess struct {
	Upload          Upload
	PartCID         string
	RegisterReceipt Receipt
	// CopyResponseStatus is nil when the destination already held the
	// part (register status "done") and no byte transfer was required.
	CopyResponseStatus *int
}

// PartFailure records a part whose processing failed. The failure is
// isolated to this part; it never aborts the pipeline.
type PartFailure struct {
	Upload  Upload
	PartCID string
	Cause   Cause
}

// PartOutcome is the sum type PartMigrator emits per part: exactly one of
// Success or Failure is non-nil.
type PartOutcome struct {
	Success *PartSuccess
	Failure *PartFailure
}

func (o PartOutcome) partCID() string {
	if o.Success != nil {
		return o.Success.PartCID
	}
	return o.Failure.PartCID
}

func (o PartOutcome) ok() bool { return o.Success != nil }

// UploadPartsReady is emitted by the Assembler when every part of an
// upload has succeeded; it is the Binder's input.
type UploadPartsReady struct {
	Upload Upload
	Parts  map[string]PartSuccess
}

// UploadOutcome is the sum type the pipeline emits exactly once per input
// Upload: exactly one of Success or Failure is non-nil.
type UploadOutcome struct {
	Success *UploadSuccess
	Failure *UploadFailure
}

// UploadSuccess is the terminal, successful outcome for one upload.
type UploadSuccess struct {
	Upload      Upload
	Parts       map[string]PartSuccess
	BindReceipt Receipt
}

// UploadFailure is the terminal, failed outcome for one upload. Parts
// holds one entry per distinct part CID in the input upload, each either
// a PartSuccess (that part was fine) or a PartFailure.
type UploadFailure struct {
	Upload Upload
	Parts  map[string]PartOutcome
	Cause  Cause
}
