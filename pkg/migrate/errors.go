// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"errors"
	"fmt"
)

var errBindUnknown = errors.New("register-upload receipt was Err with no message")

// Kind is the closed set of error kinds a part or upload can fail with.
type Kind string

const (
	// Cancelled means a cancellation token fired before this item
	// reached a terminal state.
	Cancelled Kind = "Cancelled"
	// BadFetch means the part fetcher returned a non-2xx response, a
	// missing/invalid content-length, or a transport error.
	BadFetch Kind = "BadFetch"
	// Register means the register-part receipt was Err.
	Register Kind = "Register"
	// Copy means the byte pass-through PUT did not return 2xx.
	Copy Kind = "Copy"
	// Protocol means the receipt's Ok.Status was neither "done" nor
	// "upload", or was otherwise structurally invalid.
	Protocol Kind = "Protocol"
	// Bind means the register-upload receipt was Err or its transport
	// failed.
	Bind Kind = "Bind"
	// SomePartsFailed is the Assembler's aggregate cause when at least
	// one part of an upload failed.
	SomePartsFailed Kind = "SomePartsFailed"
)

// Cause is the structured failure attached to a PartFailure or
// UploadFailure. It carries enough detail to reconstruct a human message
// and to serialize losslessly into the ndjson outcome log.
type Cause struct {
	Kind    Kind    `json:"name"`
	Message string  `json:"message"`
	Receipt *Receipt `json:"receipt,omitempty"`
	// Failed/Total are set only for SomePartsFailed.
	Failed int `json:"failed,omitempty"`
	Total  int `json:"total,omitempty"`
}

func (c Cause) Error() string {
	return fmt.Sprintf("%s: %s", c.Kind, c.Message)
}

func cancelledCause() Cause {
	return Cause{Kind: Cancelled, Message: "cancellation token fired"}
}

func badFetchCause(err error) Cause {
	return Cause{Kind: BadFetch, Message: err.Error()}
}

func registerCause(r Receipt) Cause {
	msg := "register invocation returned an error receipt"
	if r.Out.Err != nil && r.Out.Err.Message != "" {
		msg = r.Out.Err.Message
	}
	return Cause{Kind: Register, Message: msg, Receipt: &r}
}

func copyCause(status int) Cause {
	return Cause{Kind: Copy, Message: fmt.Sprintf("copy PUT returned status %d", status)}
}

func protocolCause(status string) Cause {
	return Cause{Kind: Protocol, Message: fmt.Sprintf("unrecognized register status %q", status)}
}

func bindCause(err error) Cause {
	return Cause{Kind: Bind, Message: err.Error()}
}

func somePartsFailedCause(failed, total int) Cause {
	return Cause{
		Kind:    SomePartsFailed,
		Message: fmt.Sprintf("%d of %d parts failed", failed, total),
		Failed:  failed,
		Total:   total,
	}
}
