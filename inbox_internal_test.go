// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"math"
	"sync"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

func TestInboxCapacityExact(t *testing.T) {
	in := newInbox[int](3)
	for i := range 3 {
		if err := in.push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := in.push(3); err != iox.ErrWouldBlock {
		t.Fatalf("push past capacity: got %v, want iox.ErrWouldBlock", err)
	}
	if !in.full() || in.len() != 3 {
		t.Fatalf("full=%v len=%d, want full with 3", in.full(), in.len())
	}
	for i := range 3 {
		v, err := in.pop()
		if err != nil || v != i {
			t.Fatalf("pop: got (%d, %v), want (%d, nil)", v, err, i)
		}
	}
	if _, err := in.pop(); err != iox.ErrWouldBlock {
		t.Fatalf("pop on empty: got %v, want iox.ErrWouldBlock", err)
	}
}

func TestInboxCloseSend(t *testing.T) {
	in := newInbox[int](2)
	_ = in.push(1)
	in.closeSend()
	if err := in.push(2); err != ErrDisconnected {
		t.Fatalf("push after close: got %v, want ErrDisconnected", err)
	}
	if in.drained() {
		t.Fatal("drained with a queued element")
	}
	if in.recvClosed() {
		t.Fatal("closeSend closed the receiver side")
	}
	if v, err := in.pop(); err != nil || v != 1 {
		t.Fatalf("pop after close: got (%d, %v)", v, err)
	}
	if !in.drained() {
		t.Fatal("not drained after the last pop")
	}
}

func TestInboxCloseRecv(t *testing.T) {
	in := newInbox[int](2)
	in.closeRecv()
	in.closeRecv()
	if !in.recvClosed() || !in.isClosed() {
		t.Fatal("closeRecv did not close")
	}
	if err := in.push(1); err != ErrDisconnected {
		t.Fatalf("push: got %v, want ErrDisconnected", err)
	}
}

func TestInboxConcurrentProducers(t *testing.T) {
	skipRace(t)
	const (
		producers = 4
		each      = 1000
		capacity  = 8
	)
	in := newInbox[int](capacity)
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var bo iox.Backoff
			for i := range each {
				for {
					err := in.push(p*each + i)
					if err == nil {
						break
					}
					if err != iox.ErrWouldBlock {
						t.Errorf("push: %v", err)
						return
					}
					bo.Wait()
				}
				bo.Reset()
			}
		}()
	}

	seen := make(map[int]bool, producers*each)
	last := make([]int, producers)
	for p := range last {
		last[p] = -1
	}
	var bo iox.Backoff
	for len(seen) < producers*each {
		if n := in.len(); n > capacity {
			t.Fatalf("len %d exceeds capacity %d", n, capacity)
		}
		v, err := in.pop()
		if err != nil {
			bo.Wait()
			continue
		}
		bo.Reset()
		if seen[v] {
			t.Fatalf("duplicate %d", v)
		}
		seen[v] = true
		p, i := v/each, v%each
		if i <= last[p] {
			t.Fatalf("producer %d out of order: %d after %d", p, i, last[p])
		}
		last[p] = i
	}
	wg.Wait()
}

func TestOneshot(t *testing.T) {
	var o oneshot[int]
	if _, err := o.tryRecv(); err != iox.ErrWouldBlock {
		t.Fatalf("tryRecv on empty: got %v", err)
	}
	if !o.send(1) {
		t.Fatal("first send failed")
	}
	if o.send(2) {
		t.Fatal("second send succeeded")
	}
	if o.close() {
		t.Fatal("close after send succeeded")
	}
	if v, err := o.tryRecv(); err != nil || v != 1 {
		t.Fatalf("tryRecv: got (%d, %v)", v, err)
	}
}

func TestOneshotClosed(t *testing.T) {
	var o oneshot[int]
	if !o.close() || !o.close() {
		t.Fatal("close on empty slot failed")
	}
	if !o.closed() {
		t.Fatal("closed() = false")
	}
	if o.send(1) {
		t.Fatal("send after close succeeded")
	}
}

func TestSlabReuse(t *testing.T) {
	s := newSlab[string](2)
	a := s.insert("a")
	b := s.insert("b")
	if s.len() != 2 || s.cap() != 2 {
		t.Fatalf("len %d cap %d, want 2 2", s.len(), s.cap())
	}
	s.remove(a)
	s.remove(a)
	if s.get(a) != nil || s.len() != 1 {
		t.Fatalf("removed slot still live: len %d", s.len())
	}
	c := s.insert("c")
	if c != a {
		t.Fatalf("free slot not reused: got %d, want %d", c, a)
	}
	if *s.get(b) != "b" || *s.get(c) != "c" {
		t.Fatal("slot values disturbed")
	}
	if s.get(-1) != nil || s.get(5) != nil {
		t.Fatal("out-of-range get returned a value")
	}
}

func TestSpawnLargeInFlightLimit(t *testing.T) {
	h := HandlerFunc[int, int](func(n int, _ *Context) Work[int] { return Ready(n, nil) })
	d, ref, err := Spawn[int, int](h, Settings{MaxInFlight: math.MaxInt32, InboxCapacity: 4})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if c := cap(d.processing.slots); c > slabReserve {
		t.Fatalf("arena reserved %d slots up front, want at most %d", c, slabReserve)
	}
	reply, err := ref.TrySend(3)
	if err != nil {
		t.Fatal(err)
	}
	d.Poll()
	if v, err := reply.Poll(); err != nil || v != 3 {
		t.Fatalf("reply: got (%d, %v), want (3, nil)", v, err)
	}
}

// pending never completes.
type pending struct{}

func (pending) Poll(*Context) (int, error) { return 0, iox.ErrWouldBlock }

func TestAbandonDiscardsSuspension(t *testing.T) {
	var work *exprWork[int]
	h := HandlerFunc[int, int](func(int, *Context) Work[int] {
		work = FromExpr(ExprAwaitBind(Work[int](pending{}), func(v int) kont.Expr[int] {
			return kont.ExprReturn(v)
		})).(*exprWork[int])
		return work
	})
	d, ref, err := Spawn[int, int](h, Settings{MaxInFlight: 1, InboxCapacity: 1})
	if err != nil {
		t.Fatal(err)
	}
	reply, err := ref.TrySend(1)
	if err != nil {
		t.Fatal(err)
	}
	d.Poll()
	if work == nil || work.susp == nil {
		t.Fatal("work not suspended on its await")
	}
	reply.Cancel()
	d.Poll()
	if work.susp != nil || !work.done {
		t.Fatal("abandoned work still holds its suspension")
	}
	if d.InFlight() != 0 {
		t.Fatalf("InFlight: got %d, want 0", d.InFlight())
	}
}
