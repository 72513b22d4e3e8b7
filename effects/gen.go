package effects

import (
	"iter"

	"github.com/on-the-ground/effect_ive_records/shared/helper"
)

// Yielder hands the effects of a Gen body over to the interpreter.
type Yielder struct {
	yield   func(node) bool
	resumed any
}

// genAbort unwinds a Gen body whose coroutine was stopped.
type genAbort struct{}

// Gen builds an effect from a body written in direct style. Every Yield
// suspends the body until the interpreter has evaluated the yielded effect
// and resumes it with the value. A failing yield ends the body there and
// the whole Gen fails with that failure.
//
// The body runs again, from the start, each time the Gen is evaluated;
// under Retry that means once per attempt.
//
//	e := effects.Gen(func(y *effects.Yielder) effects.Effect[struct{}] {
//	    r := effects.Yield(y, effects.GetRecord(params))
//	    effects.Yield(y, effects.UpdateRecord(effects.UpdateRecordParams{Record: r.Update(f)}))
//	    return effects.Commit()
//	})
func Gen[A any](body func(y *Yielder) Effect[A]) Effect[A] {
	return Effect[A]{node: genNode{start: func() (node, func()) {
		return startGen(body)
	}}}
}

// Yield evaluates e within a Gen body and returns its value.
func Yield[T any](y *Yielder, e Effect[T]) T {
	if !y.yield(e.node) {
		panic(genAbort{})
	}
	return helper.MustTypedValueOf[T](y.resumed)
}

func startGen[A any](body func(y *Yielder) Effect[A]) (node, func()) {
	y := &Yielder{}
	var last node
	seq := func(yield func(node) bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(genAbort); !ok {
					panic(r)
				}
			}
		}()
		y.yield = yield
		last = body(y).node
	}

	next, stop := iter.Pull(seq)
	var step func() node
	step = func() node {
		n, ok := next()
		if !ok {
			return last
		}
		return foldNode{
			self: n,
			onSuccess: func(v any) node {
				y.resumed = v
				return step()
			},
			onFailure: func(err error) node {
				stop()
				return failNode{err: err}
			},
		}
	}
	return step(), stop
}
