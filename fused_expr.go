// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

import (
	"code.hybscloud.com/kont"
)

// doneFrame ends a fused chain. Boxed once.
var doneFrame kont.Frame = kont.ReturnFrame{}

func passThrough(v kont.Erased) kont.Erased { return v }

// suspendAwait suspends on Await[T]{Work: w} and continues with next.
func suspendAwait[T, B any](w Work[T], next kont.Frame) kont.Expr[B] {
	ef := kont.AcquireEffectFrame()
	ef.Operation = Await[T]{Work: w}
	ef.Resume = passThrough
	ef.Next = next
	return kont.ExprSuspend[B](ef)
}

func bindAwaited[T, B any](k, _, _ kont.Erased, v kont.Erased) (kont.Erased, kont.Frame) {
	next := k.(func(T) kont.Expr[B])(v.(T))
	return kont.Erased(next.Value), next.Frame
}

// ExprAwaitBind awaits w and passes its value to f.
// Expr-world counterpart of AwaitBind, built without intermediate closures.
func ExprAwaitBind[T, B any](w Work[T], f func(T) kont.Expr[B]) kont.Expr[B] {
	uf := kont.AcquireUnwindFrame()
	uf.Data1 = f
	uf.Unwind = bindAwaited[T, B]
	return suspendAwait[T, B](w, uf)
}

// ExprAwaitThen awaits w, discards its value, and continues with next.
func ExprAwaitThen[T, B any](w Work[T], next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = doneFrame
	return suspendAwait[T, B](w, tf)
}
