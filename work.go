// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
)

// Work is one unit of asynchronous work produced by Process.Handle.
//
// Poll is non-blocking: it returns iox.ErrWouldBlock while the work is
// pending, and the final value or the handler's error once complete.
// Work that can only make progress after an external event should arrange
// for cx.Waker().Wake() to be called when that event happens.
// Handler errors must not be iox.ErrWouldBlock.
type Work[R any] interface {
	Poll(cx *Context) (R, error)
}

// WorkFunc adapts a poll function to Work.
type WorkFunc[R any] func(cx *Context) (R, error)

// Poll calls f(cx).
func (f WorkFunc[R]) Poll(cx *Context) (R, error) {
	return f(cx)
}

type readyWork[R any] struct {
	value R
	err   error
}

func (w readyWork[R]) Poll(*Context) (R, error) {
	return w.value, w.err
}

// Ready returns Work that completes on its first poll with (v, err).
func Ready[R any](v R, err error) Work[R] {
	return readyWork[R]{value: v, err: err}
}

// goWork runs a function on its own goroutine and publishes the result
// through a one-shot slot.
type goWork[R any] struct {
	slot oneshot[goResult[R]]
}

type goResult[R any] struct {
	value R
	err   error
}

// Go starts fn on a new goroutine and returns Work that completes with its
// result. The waker of cx is signalled once fn returns. A panic in fn is
// recovered and reported as an error.
//
// If the Work is abandoned, fn keeps running to completion; its result is
// discarded.
func Go[R any](cx *Context, fn func() (R, error)) Work[R] {
	w := &goWork[R]{}
	waker := cx.Waker()
	go func() {
		var res goResult[R]
		defer func() {
			if r := recover(); r != nil {
				res = goResult[R]{err: errors.Errorf("proc: work panicked: %v", r)}
			}
			w.slot.send(res)
			if waker != nil {
				waker.Wake()
			}
		}()
		res.value, res.err = fn()
	}()
	return w
}

func (w *goWork[R]) Poll(*Context) (R, error) {
	res, err := w.slot.tryRecv()
	if err != nil {
		var zero R
		return zero, err
	}
	return res.value, res.err
}

// Block drives w to completion on the calling goroutine.
// Waits past the iox.ErrWouldBlock boundary with adaptive backoff
// (iox.Backoff), without spawning goroutines or creating channels.
func Block[R any](w Work[R]) (R, error) {
	var waker Waker
	cx := NewContext(&waker)
	var bo iox.Backoff
	for {
		seq := waker.Seq()
		v, err := w.Poll(cx)
		if !isWouldBlock(err) {
			return v, err
		}
		if waker.Seq() != seq {
			bo.Reset()
			continue
		}
		bo.Wait()
	}
}

// isWouldBlock reports whether err is the non-blocking boundary signal.
func isWouldBlock(err error) bool {
	return err != nil && errors.Is(err, iox.ErrWouldBlock)
}
