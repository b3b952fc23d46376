// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// One-shot slot states. Transitions:
//
//	empty → writing → full    (sender)
//	empty → closed            (receiver abandons)
const (
	slotEmpty uint32 = iota
	slotWriting
	slotFull
	slotClosed
)

// oneshot is a single-use single-producer single-consumer handoff.
// The state word is the only synchronization: the sender publishes the
// value before storing slotFull, the receiver reads it after loading slotFull.
type oneshot[T any] struct {
	state atomix.Uint32
	value T
}

// send publishes v. Reports false when the receiver already closed,
// or a value was already sent.
func (o *oneshot[T]) send(v T) bool {
	if !o.state.CompareAndSwap(slotEmpty, slotWriting) {
		return false
	}
	o.value = v
	o.state.Store(slotFull)
	return true
}

// tryRecv returns the value once published.
// Non-blocking: returns iox.ErrWouldBlock while the slot is empty.
func (o *oneshot[T]) tryRecv() (T, error) {
	if o.state.Load() == slotFull {
		return o.value, nil
	}
	var zero T
	return zero, iox.ErrWouldBlock
}

// close abandons the receiving side. Reports false if a value was
// already sent (or is being sent) and therefore cannot be abandoned.
func (o *oneshot[T]) close() bool {
	return o.state.CompareAndSwap(slotEmpty, slotClosed) || o.state.Load() == slotClosed
}

// closed reports whether the receiver went away.
func (o *oneshot[T]) closed() bool {
	return o.state.Load() == slotClosed
}
