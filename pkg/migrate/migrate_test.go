// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
