// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command procload drives a proc Driver with concurrent callers and
// reports throughput and backpressure.
package main

import (
	"os"

	"code.hybscloud.com/proc/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
