// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"context"

	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "code.hybscloud.com/proc"

// Ref is the caller-facing handle of a Driver. It is safe for concurrent
// use by any number of goroutines.
type Ref[M, R any] struct {
	inbox    *inbox[Envelope[M, R]]
	waker    *Waker
	settings Settings
	name     string
	tracer   trace.Tracer
}

// PollReady reports whether a send would be accepted right now without
// committing a message. Returns nil, iox.ErrWouldBlock when the inbox is
// full, or ErrDisconnected once it is closed.
func (r *Ref[M, R]) PollReady() error {
	if r.inbox.isClosed() {
		return ErrDisconnected
	}
	if r.inbox.full() {
		return iox.ErrWouldBlock
	}
	return nil
}

// TrySend enqueues msg without waiting.
// Non-blocking: returns iox.ErrWouldBlock when the inbox is full (msg was
// not taken), or a *HandleError[M] of kind Disconnected carrying msg.
func (r *Ref[M, R]) TrySend(msg M) (*Reply[M, R], error) {
	reply, tx := newReply[M, R](r.waker)
	if err := r.push(msg, tx); err != nil {
		return nil, err
	}
	return reply, nil
}

// Send enqueues msg, waiting with adaptive backoff while the inbox is full.
// The returned Reply resolves once the Driver delivers an outcome.
//
// Returns a *HandleError[M] of kind Disconnected when the inbox is closed,
// or the wrapped ctx error if ctx ends before space frees up.
func (r *Ref[M, R]) Send(ctx context.Context, msg M) (*Reply[M, R], error) {
	reply, tx := newReply[M, R](r.waker)
	var bo iox.Backoff
	for {
		err := r.push(msg, tx)
		if err == nil {
			return reply, nil
		}
		if !isWouldBlock(err) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "proc: send")
		default:
		}
		bo.Wait()
	}
}

func (r *Ref[M, R]) push(msg M, tx Responder[M, R]) error {
	err := r.inbox.push(Envelope[M, R]{Message: msg, Responder: tx})
	switch {
	case err == nil:
		r.waker.Wake()
		return nil
	case isWouldBlock(err):
		return iox.ErrWouldBlock
	}
	return errDisconnected(msg)
}

// Ask sends msg and waits for its outcome. Leaving ctx abandons the reply.
// Each call is traced as a "proc.Ref.Ask" span.
func (r *Ref[M, R]) Ask(ctx context.Context, msg M) (R, error) {
	ctx, span := r.tracer.Start(ctx, "proc.Ref.Ask", trace.WithAttributes(
		attribute.String("proc.name", r.name),
		attribute.Int("proc.inbox_capacity", r.settings.InboxCapacity),
		attribute.Int("proc.max_in_flight", r.settings.MaxInFlight),
	))
	defer span.End()

	v, err := r.ask(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

func (r *Ref[M, R]) ask(ctx context.Context, msg M) (R, error) {
	reply, err := r.Send(ctx, msg)
	if err != nil {
		var zero R
		return zero, err
	}
	return reply.Wait(ctx)
}

// Close closes the producing side of the inbox. Messages already queued
// are still dispatched; later sends fail with Disconnected. The Driver
// terminates once the inbox is drained and no Work is in flight.
func (r *Ref[M, R]) Close() {
	r.inbox.closeSend()
	r.waker.Wake()
}

// Len returns the number of queued-but-undispatched messages.
func (r *Ref[M, R]) Len() int {
	return r.inbox.len()
}
