// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"log/slog"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// State is the lifecycle state of a Driver.
type State uint32

const (
	// Active: accepting and dispatching messages.
	Active State = iota
	// Draining: the inbox is closed; queued and in-flight work is finishing.
	Draining
	// Terminated: the inbox is closed and drained, nothing is in flight.
	Terminated
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// pollBudget bounds the scheduling iterations of one Poll. When exhausted
// the Driver wakes itself and yields, so a busy inbox cannot starve the
// runner's cancellation checks.
const pollBudget = 128

// entry is an in-flight Work with the reply path of its caller.
type entry[M, R any] struct {
	work    Work[R]
	tx      Responder[M, R]
	started time.Time
}

// Driver owns a Process, the consuming end of its inbox, and the set of
// in-flight Work. It is a cooperative scheduler: Poll performs one
// scheduling opportunity and never blocks.
//
// Poll and Run must be called from one goroutine at a time. State,
// InFlight, InboxLen, Err, and Stop are safe from any goroutine.
type Driver[M, R any] struct {
	proc       Process[M, R]
	inbox      *inbox[Envelope[M, R]]
	settings   Settings
	processing slab[entry[M, R]]

	state    atomix.Uint32
	inflight atomix.Int64
	stopped  bool
	err      error

	waker  Waker
	cx     Context
	serial Serial
	name   string
	log    *slog.Logger
	m      Metrics
}

// Spawn creates a Driver for p and the Ref callers use to reach it.
// The Driver does nothing until polled; see Driver.Run.
func Spawn[M, R any](p Process[M, R], settings Settings, opts ...Option) (*Driver[M, R], *Ref[M, R], error) {
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := nextSerial()
	d := &Driver[M, R]{
		proc:       p,
		inbox:      newInbox[Envelope[M, R]](settings.InboxCapacity),
		settings:   settings,
		processing: newSlab[entry[M, R]](min(settings.MaxInFlight, slabReserve)),
		serial:     s,
		name:       o.name,
		log:        o.logger.With(slog.String("proc", o.name), slog.Uint64("serial", uint64(s))),
		m:          o.metrics,
	}
	d.cx = Context{waker: &d.waker}
	ref := &Ref[M, R]{
		inbox:    d.inbox,
		waker:    &d.waker,
		settings: settings,
		name:     o.name,
		tracer:   o.tracer.Tracer(tracerName),
	}
	return d, ref, nil
}

// Poll performs one scheduling opportunity. In order, and repeatedly:
// advance every in-flight Work once and prune the finished or abandoned;
// consult PollReady; take the next envelope; dispatch it or reject it at
// the in-flight limit.
//
// Returns nil once the Driver is Terminated, and iox.ErrWouldBlock when it
// suspends waiting for readiness, messages, or in-flight Work.
func (d *Driver[M, R]) Poll() error {
	if d.State() == Terminated {
		return nil
	}
	for range pollBudget {
		d.advance()

		if !d.stopped && d.inbox.recvClosed() {
			d.stop(nil)
		}
		if d.stopped {
			d.rejectQueued()
		}
		if d.inbox.isClosed() && d.State() == Active {
			d.setState(Draining)
		}
		if d.inbox.drained() && d.processing.len() == 0 {
			d.terminate()
			return nil
		}
		if d.stopped {
			return iox.ErrWouldBlock
		}

		if err := d.proc.PollReady(&d.cx); err != nil {
			if isWouldBlock(err) {
				return iox.ErrWouldBlock
			}
			d.stop(err)
			continue
		}

		env, err := d.inbox.pop()
		if err != nil {
			return iox.ErrWouldBlock
		}
		d.dispatch(env)
	}
	d.waker.Wake()
	return iox.ErrWouldBlock
}

// advance polls every in-flight entry once, removing the ones that
// completed or whose caller went away.
func (d *Driver[M, R]) advance() {
	for id := range d.processing.cap() {
		e := d.processing.get(id)
		if e == nil {
			continue
		}
		if e.tx.IsClosed() {
			if dw, ok := e.work.(discarder); ok {
				dw.discard()
			}
			d.processing.remove(id)
			d.log.Debug("processing abandoned", slog.String("reason", "reply closed"))
			d.m.Abandoned(d.name)
			continue
		}
		v, err := e.work.Poll(&d.cx)
		if isWouldBlock(err) {
			continue
		}
		if !e.tx.Respond(v, err) {
			d.log.Debug("reply dropped", slog.String("reason", "receiver gone"))
		}
		d.m.Completed(d.name, err == nil, time.Since(e.started))
		d.processing.remove(id)
	}
	d.syncGauges()
}

// dispatch hands env to the handler, or rejects it at the in-flight limit.
// Called with a fresh advance, so the live count is exact.
func (d *Driver[M, R]) dispatch(env Envelope[M, R]) {
	if d.processing.len() >= d.settings.MaxInFlight {
		if !env.Responder.RejectCapacity(env.Message, d.settings.MaxInFlight) {
			d.log.Debug("reply dropped", slog.String("reason", "receiver gone"))
		}
		d.m.Rejected(d.name, InFlightLimit)
		return
	}
	work := d.proc.Handle(env.Message, &d.cx)
	d.processing.insert(entry[M, R]{work: work, tx: env.Responder, started: time.Now()})
	d.m.Dispatched(d.name)
	d.syncGauges()
}

// stop ends acceptance of new work. A non-nil err is the fatal readiness
// error that caused it.
func (d *Driver[M, R]) stop(err error) {
	d.stopped = true
	d.err = err
	d.inbox.closeRecv()
	if err != nil {
		d.log.Error("readiness failed, no longer accepting work", slog.Any("error", err))
	} else {
		d.log.Debug("stopped accepting work")
	}
}

// rejectQueued answers every visible queued envelope with Disconnected.
func (d *Driver[M, R]) rejectQueued() {
	for {
		env, err := d.inbox.pop()
		if err != nil {
			return
		}
		if !env.Responder.RejectDisconnected(env.Message) {
			d.log.Debug("reply dropped", slog.String("reason", "receiver gone"))
		}
		d.m.Rejected(d.name, Disconnected)
	}
}

func (d *Driver[M, R]) terminate() {
	d.setState(Terminated)
	d.syncGauges()
	d.log.Info("terminated", slog.Bool("failed", d.err != nil))
}

func (d *Driver[M, R]) setState(s State) {
	d.state.Store(uint32(s))
}

func (d *Driver[M, R]) syncGauges() {
	n := d.processing.len()
	d.inflight.Store(int64(n))
	d.m.InFlight(d.name, n)
	d.m.InboxDepth(d.name, d.inbox.len())
}

// Stop closes the consuming side of the inbox: queued messages are
// rejected as Disconnected, in-flight Work finishes, then the Driver
// terminates. Safe to call from any goroutine.
func (d *Driver[M, R]) Stop() {
	d.inbox.closeRecv()
	d.waker.Wake()
}

// State returns the current lifecycle state.
func (d *Driver[M, R]) State() State {
	return State(d.state.Load())
}

// InFlight returns the number of live processing entries as of the last pass.
func (d *Driver[M, R]) InFlight() int {
	return int(d.inflight.Load())
}

// InboxLen returns the number of queued-but-undispatched envelopes.
func (d *Driver[M, R]) InboxLen() int {
	return d.inbox.len()
}

// Err returns the fatal readiness error, if one stopped the Driver.
// Only meaningful once Poll returned nil.
func (d *Driver[M, R]) Err() error {
	if d.State() != Terminated {
		return nil
	}
	return d.err
}

// Serial returns the serial number assigned at Spawn.
func (d *Driver[M, R]) Serial() Serial {
	return d.serial
}

// Settings returns the Settings the Driver was spawned with.
func (d *Driver[M, R]) Settings() Settings {
	return d.settings
}

// Waker returns the waker external runtimes observe to re-poll promptly.
func (d *Driver[M, R]) Waker() *Waker {
	return &d.waker
}
