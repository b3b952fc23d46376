// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import "code.hybscloud.com/atomix"

// Waker signals interest to the runner driving a Driver.
// Wake never blocks and may be called from any goroutine.
//
// A wake is a hint: the runner re-polls promptly instead of finishing its
// current backoff step. Spurious re-polls are always safe.
type Waker struct {
	seq atomix.Uint32
}

// Wake records that progress may be possible.
func (w *Waker) Wake() {
	w.seq.Add(1)
}

// Seq returns the current wake sequence. A runner samples Seq before a poll
// and compares afterwards to detect wakes that raced with the poll.
func (w *Waker) Seq() uint32 {
	return w.seq.Load()
}

// Context is handed to Process and Work methods during a scheduling pass.
type Context struct {
	waker *Waker
}

// NewContext returns a Context bound to w. Runtimes that poll Work outside
// a Driver use it to receive wakes.
func NewContext(w *Waker) *Context {
	return &Context{waker: w}
}

// Waker returns the waker of the current scheduling pass.
func (cx *Context) Waker() *Waker {
	return cx.waker
}
