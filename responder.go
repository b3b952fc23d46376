// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"context"

	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
)

// outcome is the terminal value carried by a reply slot.
type outcome[M, R any] struct {
	value R
	err   *HandleError[M]
}

// Responder is the Driver-side half of a reply: it delivers exactly one
// terminal outcome to exactly one caller. Every delivery method consumes it.
type Responder[M, R any] struct {
	slot *oneshot[outcome[M, R]]
}

// IsClosed reports whether the caller abandoned the reply. Never blocks.
func (tx Responder[M, R]) IsClosed() bool {
	return tx.slot.closed()
}

// Respond delivers the Work result; a non-nil err is wrapped as Inner.
// Reports whether the caller was still listening.
func (tx Responder[M, R]) Respond(v R, err error) bool {
	if err != nil {
		var zero R
		return tx.slot.send(outcome[M, R]{value: zero, err: errInner[M](err)})
	}
	return tx.slot.send(outcome[M, R]{value: v})
}

// RejectCapacity hands msg back as InFlightLimit{max, msg}.
func (tx Responder[M, R]) RejectCapacity(msg M, max int) bool {
	return tx.slot.send(outcome[M, R]{err: errInFlightLimit(msg, max)})
}

// RejectDisconnected hands msg back as Disconnected(msg).
func (tx Responder[M, R]) RejectDisconnected(msg M) bool {
	return tx.slot.send(outcome[M, R]{err: errDisconnected(msg)})
}

// Reply is the caller-side half: a pending result of one Send.
type Reply[M, R any] struct {
	slot  *oneshot[outcome[M, R]]
	waker *Waker
}

func newReply[M, R any](w *Waker) (*Reply[M, R], Responder[M, R]) {
	slot := &oneshot[outcome[M, R]]{}
	return &Reply[M, R]{slot: slot, waker: w}, Responder[M, R]{slot: slot}
}

// Poll returns the outcome once delivered.
// Non-blocking: returns iox.ErrWouldBlock while pending. A delivered
// failure is a *HandleError[M].
func (r *Reply[M, R]) Poll() (R, error) {
	o, err := r.slot.tryRecv()
	if err != nil {
		var zero R
		return zero, err
	}
	if o.err != nil {
		return o.value, o.err
	}
	return o.value, nil
}

// Wait blocks until the outcome is delivered or ctx ends.
// When ctx ends first the reply is abandoned, which frees the in-flight
// slot on the Driver's next pass.
func (r *Reply[M, R]) Wait(ctx context.Context) (R, error) {
	var bo iox.Backoff
	for {
		v, err := r.Poll()
		if !isWouldBlock(err) {
			return v, err
		}
		select {
		case <-ctx.Done():
			if r.Cancel() {
				var zero R
				return zero, errors.Wrap(ctx.Err(), "proc: reply abandoned")
			}
			// Delivered while cancelling: prefer the outcome.
			continue
		default:
		}
		bo.Wait()
	}
}

// Cancel abandons the reply. No outcome is delivered afterwards; Work
// already running is not interrupted. Reports false when the outcome was
// already delivered.
func (r *Reply[M, R]) Cancel() bool {
	if !r.slot.close() {
		return false
	}
	if r.waker != nil {
		r.waker.Wake()
	}
	return true
}
