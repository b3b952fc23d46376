// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// discarder is implemented by Work holding resources that must be released
// when the Driver drops it unfinished.
type discarder interface {
	discard()
}

// exprWork evaluates a kont.Expr one effect at a time.
// Each Poll dispatches the pending effect on the current Context; on
// iox.ErrWouldBlock the suspension is kept and retried on the next Poll.
type exprWork[R any] struct {
	expr    kont.Expr[R]
	susp    *kont.Suspension[R]
	started bool
	yielded bool // current suspension is a Yield that already gave up its pass
	done    bool
	result  R
	err     error
}

// FromExpr returns Work that evaluates an Expr-world computation whose
// effects are Await and Yield.
func FromExpr[R any](expr kont.Expr[R]) Work[R] {
	return &exprWork[R]{expr: expr}
}

func (w *exprWork[R]) Poll(cx *Context) (R, error) {
	if w.done {
		return w.result, w.err
	}
	if !w.started {
		w.started = true
		w.result, w.susp = kont.StepExpr(w.expr)
	}
	for w.susp != nil {
		v, err := w.dispatch(cx)
		if err != nil {
			if isWouldBlock(err) {
				var zero R
				return zero, iox.ErrWouldBlock
			}
			// Eager short-circuit: the rest of the computation never runs.
			w.susp.Discard()
			w.susp = nil
			var zero R
			return w.finish(zero, err)
		}
		w.result, w.susp = w.susp.Resume(v)
	}
	return w.finish(w.result, nil)
}

func (w *exprWork[R]) dispatch(cx *Context) (kont.Resumed, error) {
	switch op := w.susp.Op().(type) {
	case Yield:
		if !w.yielded {
			w.yielded = true
			if wk := cx.Waker(); wk != nil {
				wk.Wake()
			}
			return nil, iox.ErrWouldBlock
		}
		w.yielded = false
		return struct{}{}, nil
	case workDispatcher:
		return op.DispatchWork(cx)
	}
	panic("proc: unhandled effect in Work")
}

// discard releases the pending suspension of unfinished work.
func (w *exprWork[R]) discard() {
	if w.susp != nil {
		w.susp.Discard()
		w.susp = nil
	}
	w.done = true
}

func (w *exprWork[R]) finish(v R, err error) (R, error) {
	w.done = true
	w.result, w.err = v, err
	return v, err
}
