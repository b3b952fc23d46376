// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package proc provides a single-actor message-processing core with explicit
// backpressure, built on non-blocking cooperative stepping.
//
// A [Driver] owns one user-supplied [Process], the consuming end of a bounded
// inbox, and the set of in-flight [Work]. Callers reach it through a [Ref].
//
// # Architecture
//
//   - Inbox: Lock-free bounded MPSC queue via [code.hybscloud.com/lfq]. Producers exceeding capacity wait; nothing is dropped.
//   - Non-blocking: Every suspension point returns [code.hybscloud.com/iox.ErrWouldBlock]; blocking wrappers wait with adaptive backoff.
//   - Backpressure: Handler readiness ([Process].PollReady) and an in-flight cap ([Settings].MaxInFlight), checked in one pass.
//   - Replies: Each message gets a lock-free one-shot [Reply]. Abandoning it frees the in-flight slot on the next pass.
//
// # Scheduling
//
// [Driver.Poll] performs one scheduling opportunity: advance every in-flight
// Work once, consult readiness, take the next envelope, and dispatch it or
// reject it with [InFlightLimit] when at the cap. [Driver.Run] loops Poll
// on the calling goroutine until the Driver is [Terminated].
//
// # Errors
//
// Callers receive a [*HandleError] in place of a response:
//
//   - [InFlightLimit]: rejected at the cap; the handler never ran; Message is returned.
//   - [Disconnected]: the inbox closed before dispatch; Message is returned.
//   - [Inner]: the handler's own error, forwarded verbatim.
//
// # Work
//
//   - Plain: [Ready], [WorkFunc], [Go] (goroutine-backed, wakes the Driver on completion).
//   - Effects: [Await] on [code.hybscloud.com/kont], stepped by [FromExpr] and [FromEff].
//   - Fused: [AwaitBind], [AwaitThen], [ExprAwaitBind], [ExprAwaitThen].
//
// # Example
//
//	d, ref, _ := proc.Spawn[string, int](proc.HandlerFunc[string, int](
//		func(s string, cx *proc.Context) proc.Work[int] {
//			return proc.Ready(len(s), nil)
//		}), proc.Settings{MaxInFlight: 8, InboxCapacity: 16})
//	go d.Run(ctx)
//	n, err := ref.Ask(ctx, "hello")
package proc
