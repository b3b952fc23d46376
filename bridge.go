// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/kont"
)

// FromEff returns Work that evaluates a Cont-world computation.
// The computation is reified to Expr-world and stepped by FromExpr.
func FromEff[R any](m kont.Eff[R]) Work[R] {
	return FromExpr(kont.Reify(m))
}
