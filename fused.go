// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/kont"
)

// AwaitBind awaits w and passes its value to f.
// Fuses Perform(Await[T]{Work: w}) + Bind.
func AwaitBind[T, B any](w Work[T], f func(T) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Await[T]{Work: w}), f)
}

// AwaitThen awaits w, discards its value, and continues with next.
// Fuses Perform(Await[T]{Work: w}) + Then.
func AwaitThen[T, B any](w Work[T], next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Await[T]{Work: w}), next)
}

// YieldThen yields the rest of the scheduling pass and continues with next.
func YieldThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Yield{}), next)
}
