// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package proc

import "testing"

// skipRace mirrors the external helper for tests of unexported types.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: MPSC uses cross-variable memory ordering")
}
