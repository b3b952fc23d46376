// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import "github.com/pkg/errors"

// Settings configures the runtime characteristics of one Driver.
// Both limits are fixed for the lifetime of the Driver.
type Settings struct {
	// MaxInFlight caps the number of outstanding Work units.
	MaxInFlight int `json:"max_in_flight" yaml:"max_in_flight"`
	// InboxCapacity bounds the number of queued-but-undispatched envelopes.
	InboxCapacity int `json:"inbox_capacity" yaml:"inbox_capacity"`
}

// DefaultSettings returns Settings suitable for a small in-process actor.
func DefaultSettings() Settings {
	return Settings{
		MaxInFlight:   64,
		InboxCapacity: 256,
	}
}

// Validate reports ErrInvalidSettings unless both limits are positive.
func (s Settings) Validate() error {
	if s.MaxInFlight <= 0 {
		return errors.Wrapf(ErrInvalidSettings, "max_in_flight must be positive, got %d", s.MaxInFlight)
	}
	if s.InboxCapacity <= 0 {
		return errors.Wrapf(ErrInvalidSettings, "inbox_capacity must be positive, got %d", s.InboxCapacity)
	}
	return nil
}
