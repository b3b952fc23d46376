// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

// Process is the user-supplied stateful handler driven by a Driver.
// Its methods are only ever called from the goroutine polling the Driver,
// never concurrently with each other.
type Process[M, R any] interface {
	// PollReady reports whether the next message may be dispatched.
	// It returns nil when ready and iox.ErrWouldBlock to exert
	// backpressure; the handler should then call cx.Waker().Wake() once it
	// becomes ready. Any other error is fatal: the Driver stops accepting
	// work, rejects queued messages as Disconnected, and drains.
	PollReady(cx *Context) error

	// Handle constructs the Work for one message. It must not block; the
	// returned Work progresses independently of the handler's own state.
	// Handle is only called after PollReady returned nil.
	Handle(msg M, cx *Context) Work[R]
}

// HandlerFunc adapts a function to an always-ready Process.
type HandlerFunc[M, R any] func(msg M, cx *Context) Work[R]

// PollReady always reports ready.
func (f HandlerFunc[M, R]) PollReady(*Context) error { return nil }

// Handle calls f(msg, cx).
func (f HandlerFunc[M, R]) Handle(msg M, cx *Context) Work[R] { return f(msg, cx) }

// Envelope is an accepted message paired with the reply path of its caller.
type Envelope[M, R any] struct {
	Message   M
	Responder Responder[M, R]
}
