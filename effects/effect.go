package effects

import (
	"context"
	"errors"
	"slices"

	"github.com/on-the-ground/effect_ive_records/shared/helper"
)

// ErrNilFailure is the panic value of Fail called with a nil error.
var ErrNilFailure = errors.New("effects: failing with a nil error")

// Effect describes a computation producing an A. Building an Effect never
// performs I/O; an Interpreter evaluates it.
//
// The zero Effect is not valid.
type Effect[A any] struct {
	node node
}

// Kind returns the kind of the root node.
func (e Effect[A]) Kind() Kind {
	return kindOf(e.node)
}

// Succeed produces a.
func Succeed[A any](a A) Effect[A] {
	return Effect[A]{node: succeedNode{value: a}}
}

// Fail produces err as failure.
func Fail[A any](err error) Effect[A] {
	if err == nil {
		panic(ErrNilFailure)
	}
	return Effect[A]{node: failNode{err: err}}
}

// Unit succeeds with no value.
func Unit() Effect[struct{}] {
	return Succeed(struct{}{})
}

// Async wraps a blocking computation. A non-nil error is the failure value,
// passed through unchanged.
func Async[A any](thunk func(ctx context.Context) (A, error)) Effect[A] {
	return Effect[A]{node: asyncNode{thunk: func(ctx context.Context) (any, error) {
		a, err := thunk(ctx)
		if err != nil {
			return nil, err
		}
		return a, nil
	}}}
}

// AndThen feeds the value of e into f. A failure of e skips f.
func AndThen[A, B any](e Effect[A], f func(A) Effect[B]) Effect[B] {
	return Effect[B]{node: andThenNode{
		self: e.node,
		next: func(v any) node {
			return f(helper.MustTypedValueOf[A](v)).node
		},
	}}
}

// Map transforms the value of e.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	return AndThen(e, func(a A) Effect[B] {
		return Succeed(f(a))
	})
}

// Then runs next after e, dropping the value of e.
func Then[A, B any](e Effect[A], next Effect[B]) Effect[B] {
	return AndThen(e, func(A) Effect[B] {
		return next
	})
}

// As replaces the value of e with b.
func As[A, B any](e Effect[A], b B) Effect[B] {
	return Map(e, func(A) B {
		return b
	})
}

// Fold continues with exactly one of onSuccess and onFailure. It is the
// only way to recover from a failure.
func Fold[A, B any](
	e Effect[A],
	onSuccess func(A) Effect[B],
	onFailure func(error) Effect[B],
) Effect[B] {
	return Effect[B]{node: foldNode{
		self: e.node,
		onSuccess: func(v any) node {
			return onSuccess(helper.MustTypedValueOf[A](v)).node
		},
		onFailure: func(err error) node {
			return onFailure(err).node
		},
	}}
}

// Catch recovers from a failure of e with f.
func (e Effect[A]) Catch(f func(error) Effect[A]) Effect[A] {
	return Fold(e, Succeed[A], f)
}

// Erase forgets the value type of e.
func (e Effect[A]) Erase() Effect[any] {
	return Effect[any]{node: e.node}
}

// Sequence runs steps from left to right and collects their values.
func Sequence[A any](steps ...Effect[A]) Effect[[]A] {
	acc := Succeed([]A{})
	for _, step := range steps {
		acc = AndThen(acc, func(as []A) Effect[[]A] {
			return Map(step, func(a A) []A {
				return append(slices.Clip(as), a)
			})
		})
	}
	return acc
}
