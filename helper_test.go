// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc_test

import (
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/proc"
)

// job is a pointer message so tests can check identity on rejection.
type job struct {
	ID int
}

// gate is Work that stays pending until opened.
type gate struct {
	opened bool
	value  int
	err    error
	polls  int
}

func (g *gate) Poll(*proc.Context) (int, error) {
	g.polls++
	if !g.opened {
		return 0, iox.ErrWouldBlock
	}
	return g.value, g.err
}

func (g *gate) open(v int, err error) {
	g.value, g.err, g.opened = v, err, true
}

// gatedProcess hands out one gate per message and records dispatch order.
type gatedProcess struct {
	ready   error
	handled []*job
	gates   []*gate
}

func (p *gatedProcess) PollReady(*proc.Context) error {
	return p.ready
}

func (p *gatedProcess) Handle(j *job, _ *proc.Context) proc.Work[int] {
	g := &gate{}
	p.handled = append(p.handled, j)
	p.gates = append(p.gates, g)
	return g
}

func spawnGated(t *testing.T, s proc.Settings) (*gatedProcess, *proc.Driver[*job, int], *proc.Ref[*job, int]) {
	t.Helper()
	p := &gatedProcess{}
	d, ref, err := proc.Spawn[*job, int](p, s)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return p, d, ref
}

// mustSend enqueues without waiting; the inbox must have room.
func mustSend(t *testing.T, ref *proc.Ref[*job, int], j *job) *proc.Reply[*job, int] {
	t.Helper()
	reply, err := ref.TrySend(j)
	if err != nil {
		t.Fatalf("TrySend(%d): %v", j.ID, err)
	}
	return reply
}

// pollSuspended polls once and requires a suspension.
func pollSuspended(t *testing.T, d *proc.Driver[*job, int]) {
	t.Helper()
	if err := d.Poll(); err != iox.ErrWouldBlock {
		t.Fatalf("Poll: got %v, want iox.ErrWouldBlock", err)
	}
}

// countdown is Work that completes after n polls.
type countdown struct {
	n     int
	value int
}

func (c *countdown) Poll(*proc.Context) (int, error) {
	if c.n > 0 {
		c.n--
		return 0, iox.ErrWouldBlock
	}
	return c.value, nil
}
