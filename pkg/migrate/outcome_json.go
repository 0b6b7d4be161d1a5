// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import "encoding/json"

type uploadRef struct {
	CID string `json:"cid"`
}

type addJSON struct {
	Receipt Receipt `json:"receipt"`
}

type copyJSON struct {
	Status int `json:"status"`
}

type partSuccessJSON struct {
	Part   string     `json:"part"`
	Add    addJSON    `json:"add"`
	Copy   *copyJSON  `json:"copy"`
	Upload uploadRef  `json:"upload"`
}

type partFailureJSON struct {
	Part   string    `json:"part"`
	Upload uploadRef `json:"upload"`
	Cause  Cause     `json:"cause"`
}

func (s PartSuccess) marshalJSON() partSuccessJSON {
	out := partSuccessJSON{
		Part:   s.PartCID,
		Add:    addJSON{Receipt: s.RegisterReceipt},
		Upload: uploadRef{CID: s.Upload.CID},
	}
	if s.CopyResponseStatus != nil {
		out.Copy = &copyJSON{Status: *s.CopyResponseStatus}
	}
	return out
}

func (f PartFailure) marshalJSON() partFailureJSON {
	return partFailureJSON{
		Part:   f.PartCID,
		Upload: uploadRef{CID: f.Upload.CID},
		Cause:  f.Cause,
	}
}

func (o PartOutcome) MarshalJSON() ([]byte, error) {
	if o.Success != nil {
		return json.Marshal(o.Success.marshalJSON())
	}
	return json.Marshal(o.Failure.marshalJSON())
}

type uploadSuccessJSON struct {
	Type   string                     `json:"type"`
	Upload Upload                     `json:"upload"`
	Parts  map[string]partSuccessJSON `json:"parts"`
	Add    addJSON                    `json:"add"`
}

// MarshalJSON encodes the success outcome in the ndjson wire format: one
// "UploadMigrationSuccess" line with every part's register/copy record
// plus the upload-binding receipt.
func (s UploadSuccess) MarshalJSON() ([]byte, error) {
	parts := make(map[string]partSuccessJSON, len(s.Parts))
	for cid, p := range s.Parts {
		parts[cid] = p.marshalJSON()
	}
	return json.Marshal(uploadSuccessJSON{
		Type:   "UploadMigrationSuccess",
		Upload: s.Upload,
		Parts:  parts,
		Add:    addJSON{Receipt: s.BindReceipt},
	})
}

type uploadFailureJSON struct {
	Type   string                     `json:"type"`
	Upload Upload                     `json:"upload"`
	Parts  map[string]json.RawMessage `json:"parts"`
	Cause  Cause                      `json:"cause"`
}

// MarshalJSON encodes the failure outcome in the ndjson wire format: one
// "UploadMigrationFailure" line whose parts map holds a success record for
// every part that made it and a failure record for every part that
// didn't, plus the aggregate (or bind) cause.
func (f UploadFailure) MarshalJSON() ([]byte, error) {
	parts := make(map[string]json.RawMessage, len(f.Parts))
	for cid, o := range f.Parts {
		raw, err := o.MarshalJSON()
		if err != nil {
			return nil, err
		}
		parts[cid] = raw
	}
	return json.Marshal(uploadFailureJSON{
		Type:   "UploadMigrationFailure",
		Upload: f.Upload,
		Parts:  parts,
		Cause:  f.Cause,
	})
}

// MarshalJSON dispatches to whichever of Success/Failure is set.
func (o UploadOutcome) MarshalJSON() ([]byte, error) {
	if o.Success != nil {
		return json.Marshal(o.Success)
	}
	return json.Marshal(o.Failure)
}

// outcomeLine is the minimal shape every ndjson outcome line satisfies,
// used for log readback.
type outcomeLine struct {
	Type   string `json:"type"`
	Upload Upload `json:"upload"`
}

// IsFailureLine reports whether line is an UploadMigrationFailure record.
func IsFailureLine(line []byte) (bool, error) {
	var l outcomeLine
	if err := json.Unmarshal(line, &l); err != nil {
		return false, err
	}
	return l.Type == "UploadMigrationFailure", nil
}

// ExtractUpload decodes the upload field out of one ndjson outcome line,
// regardless of outcome type. Feeding every UploadMigrationFailure line's
// extracted upload back into a new Run as its Source is the documented
// round-trip/replay path (spec ¤8).
func ExtractUpload(line []byte) (Upload, error) {
	var l outcomeLine
	if err := json.Unmarshal(line, &l); err != nil {
		return Upload{}, err
	}
	return l.Upload, nil
}
