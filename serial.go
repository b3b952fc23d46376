// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"strconv"

	"code.hybscloud.com/atomix"
)

// Serial identifies a Driver within the process. Spawn hands out serials
// in increasing order starting at 1.
type Serial uint32

func (s Serial) String() string {
	return "proc#" + strconv.FormatUint(uint64(s), 10)
}

var spawned atomix.Uint32

func nextSerial() Serial {
	return Serial(spawned.Add(1))
}
