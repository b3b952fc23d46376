// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"context"

	"code.hybscloud.com/iox"
	"github.com/pkg/errors"
)

// Run polls the Driver on the calling goroutine until it terminates or ctx
// ends. Between suspended polls it waits with adaptive backoff
// (iox.Backoff); a wake that raced with the poll skips the wait.
// Does not spawn goroutines or create channels.
//
// Returns the fatal readiness error (nil after a clean shutdown) once
// Terminated, or the wrapped ctx error. Run may be called again after a
// ctx error to resume driving.
func (d *Driver[M, R]) Run(ctx context.Context) error {
	var bo iox.Backoff
	for {
		seq := d.waker.Seq()
		if err := d.Poll(); err == nil {
			return d.Err()
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "proc: run")
		default:
		}
		if d.waker.Seq() != seq {
			bo.Reset()
			continue
		}
		bo.Wait()
	}
}
