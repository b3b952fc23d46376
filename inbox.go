// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// Inbox state word layout: the low bits count reserved slots (queued plus
// mid-enqueue), the two high bits record which side closed it.
const (
	inboxSendClosed int64 = 1 << 62
	inboxRecvClosed int64 = 1 << 61
	inboxClosedMask       = inboxSendClosed | inboxRecvClosed
	inboxCountMask        = inboxRecvClosed - 1
)

// inbox is the bounded multi-producer single-consumer queue between callers
// and the Driver. Transport is a lock-free lfq.MPSC ring; the exact capacity
// and the close flags live in one atomix word so that a producer can never
// enqueue past a close the consumer has already observed as drained.
type inbox[E any] struct {
	q     *lfq.MPSC[E]
	state atomix.Int64
	cap   int64
}

func newInbox[E any](capacity int) *inbox[E] {
	return &inbox[E]{
		q:   lfq.NewMPSC[E](capacity),
		cap: int64(capacity),
	}
}

// push reserves a slot and enqueues e.
// Non-blocking: returns iox.ErrWouldBlock when the inbox is full and
// ErrDisconnected when either side closed it.
func (in *inbox[E]) push(e E) error {
	for {
		s := in.state.Load()
		if s&inboxClosedMask != 0 {
			return ErrDisconnected
		}
		if s&inboxCountMask >= in.cap {
			return iox.ErrWouldBlock
		}
		if in.state.CompareAndSwap(s, s+1) {
			break
		}
	}
	// The reservation guarantees ring space; a failed Enqueue only means a
	// concurrent consumer has not published its dequeue yet.
	var bo iox.Backoff
	for in.q.Enqueue(&e) != nil {
		bo.Wait()
	}
	return nil
}

// pop takes the oldest envelope. Consumer side only.
// Non-blocking: returns iox.ErrWouldBlock when nothing is visible yet.
func (in *inbox[E]) pop() (E, error) {
	if in.state.Load()&inboxCountMask == 0 {
		var zero E
		return zero, iox.ErrWouldBlock
	}
	e, err := in.q.Dequeue()
	if err != nil {
		// Reserved by a producer that has not finished enqueueing.
		var zero E
		return zero, iox.ErrWouldBlock
	}
	in.state.Add(-1)
	return e, nil
}

// closeSend closes the producer side. Queued envelopes stay dispatchable.
func (in *inbox[E]) closeSend() {
	in.setBits(inboxSendClosed)
}

// closeRecv closes the consumer side. Queued envelopes are to be rejected.
func (in *inbox[E]) closeRecv() {
	in.setBits(inboxRecvClosed)
}

func (in *inbox[E]) setBits(bits int64) {
	for {
		s := in.state.Load()
		if s&bits == bits || in.state.CompareAndSwap(s, s|bits) {
			return
		}
	}
}

func (in *inbox[E]) len() int {
	return int(in.state.Load() & inboxCountMask)
}

func (in *inbox[E]) isClosed() bool {
	return in.state.Load()&inboxClosedMask != 0
}

func (in *inbox[E]) recvClosed() bool {
	return in.state.Load()&inboxRecvClosed != 0
}

// drained reports closed with no reserved slots left. Once true it stays true.
func (in *inbox[E]) drained() bool {
	s := in.state.Load()
	return s&inboxClosedMask != 0 && s&inboxCountMask == 0
}

// full reports whether a push would currently block.
func (in *inbox[E]) full() bool {
	return in.state.Load()&inboxCountMask >= in.cap
}
