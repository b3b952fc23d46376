// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInFlightLimit is matched by a HandleError of kind InFlightLimit.
	ErrInFlightLimit = errors.New("proc: in-flight limit reached")
	// ErrDisconnected is matched by a HandleError of kind Disconnected,
	// and returned by Ref.PollReady once the inbox is closed.
	ErrDisconnected = errors.New("proc: inbox disconnected")
	// ErrInvalidSettings is returned by Settings.Validate and Spawn.
	ErrInvalidSettings = errors.New("proc: invalid settings")
)

// Kind classifies a HandleError.
type Kind uint8

const (
	// InFlightLimit: the Driver was at MaxInFlight when the envelope was
	// taken. The handler was never invoked.
	InFlightLimit Kind = iota + 1
	// Disconnected: the inbox closed before the envelope could be dispatched.
	// The handler was never invoked.
	Disconnected
	// Inner: the handler's Work failed with its own error.
	Inner
)

func (k Kind) String() string {
	switch k {
	case InFlightLimit:
		return "in_flight_limit"
	case Disconnected:
		return "disconnected"
	case Inner:
		return "inner"
	}
	return "unknown"
}

// HandleError is the error delivered to a caller in place of a response.
// Locally generated kinds hand the Message back for caller-driven retry.
type HandleError[M any] struct {
	Kind Kind
	// Max is the in-flight limit in effect; set for InFlightLimit only.
	Max int
	// Message is the rejected message, untouched; zero for Inner.
	Message M
	// Err is the handler's error; set for Inner only.
	Err error
}

func (e *HandleError[M]) Error() string {
	switch e.Kind {
	case InFlightLimit:
		return fmt.Sprintf("%s (max %d)", ErrInFlightLimit.Error(), e.Max)
	case Disconnected:
		return ErrDisconnected.Error()
	case Inner:
		if e.Err == nil {
			return "proc: handler failed"
		}
		return e.Err.Error()
	}
	return "proc: unknown handle error"
}

// Unwrap exposes the sentinel for local kinds and the handler's error for Inner.
func (e *HandleError[M]) Unwrap() error {
	switch e.Kind {
	case InFlightLimit:
		return ErrInFlightLimit
	case Disconnected:
		return ErrDisconnected
	}
	return e.Err
}

// Retryable reports whether the message was handed back unprocessed.
func (e *HandleError[M]) Retryable() bool {
	return e.Kind == InFlightLimit || e.Kind == Disconnected
}

func errInFlightLimit[M any](msg M, max int) *HandleError[M] {
	return &HandleError[M]{Kind: InFlightLimit, Max: max, Message: msg}
}

func errDisconnected[M any](msg M) *HandleError[M] {
	return &HandleError[M]{Kind: Disconnected, Message: msg}
}

func errInner[M any](err error) *HandleError[M] {
	return &HandleError[M]{Kind: Inner, Err: err}
}

// AsHandleError unwraps err into a *HandleError[M].
func AsHandleError[M any](err error) (*HandleError[M], bool) {
	var he *HandleError[M]
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
