// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import "time"

// Metrics receives Driver instrumentation. Implementations must be safe
// for concurrent use; the Driver calls them from its polling goroutine only,
// but one Metrics value may be shared by several Drivers.
type Metrics interface {
	// InboxDepth reports queued-but-undispatched envelopes.
	InboxDepth(name string, depth int)
	// InFlight reports live processing entries.
	InFlight(name string, count int)
	// Dispatched counts envelopes handed to the handler.
	Dispatched(name string)
	// Rejected counts envelopes answered locally (InFlightLimit, Disconnected).
	Rejected(name string, kind Kind)
	// Completed counts finished Work, with its run time.
	Completed(name string, success bool, elapsed time.Duration)
	// Abandoned counts entries dropped because the caller went away.
	Abandoned(name string)
}

type nopMetrics struct{}

func (nopMetrics) InboxDepth(string, int)                {}
func (nopMetrics) InFlight(string, int)                  {}
func (nopMetrics) Dispatched(string)                     {}
func (nopMetrics) Rejected(string, Kind)                 {}
func (nopMetrics) Completed(string, bool, time.Duration) {}
func (nopMetrics) Abandoned(string)                      {}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }
