// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadDistinctPartsDedupesOrderedList(t *testing.T) {
	u := Upload{Parts: []string{"a", "b", "a", "c"}}
	set := u.distinctParts()
	assert.Len(t, set, 3)
	for _, p := range []string{"a", "b", "c"} {
		_, ok := set[p]
		assert.True(t, ok, p)
	}
}

func TestPartOutcomeOkAndPartCID(t *testing.T) {
	u := Upload{CID: "u1"}
	s := success(u, "p1")
	assert.True(t, s.ok())
	assert.Equal(t, "p1", s.partCID())

	f := failure(u, "p2")
	assert.False(t, f.ok())
	assert.Equal(t, "p2", f.partCID())
}
