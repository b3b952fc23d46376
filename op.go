// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/kont"
)

// workDispatcher is the structural interface for effects that FromExpr and
// FromEff understand. DispatchWork is non-blocking: it returns
// iox.ErrWouldBlock while the awaited work is pending.
type workDispatcher interface {
	DispatchWork(cx *Context) (kont.Resumed, error)
}

// Await is the effect operation for waiting on nested Work.
// Perform(Await[T]{Work: w}) suspends until w completes and resumes with
// its value. A failing w short-circuits the enclosing computation.
type Await[T any] struct {
	kont.Phantom[T]
	Work Work[T]
}

// DispatchWork polls the awaited Work once.
func (a Await[T]) DispatchWork(cx *Context) (kont.Resumed, error) {
	v, err := a.Work.Poll(cx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Yield is the effect operation for giving up the rest of a scheduling
// pass. The Work stepping it wakes the runner and reports
// iox.ErrWouldBlock once, then resumes on the next Poll.
type Yield struct {
	kont.Phantom[struct{}]
}
