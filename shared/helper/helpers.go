package helper

import (
	"errors"
	"fmt"
)

var ErrUnexpectedType = errors.New("unexpected type")

// TypedValueOf safely asserts v to the expected type T.
// A nil v yields the zero value of T, so erased nil interfaces round-trip.
func TypedValueOf[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}

	val, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T, want %T", ErrUnexpectedType, v, zero)
	}
	return val, nil
}

// MustTypedValueOf is the panic-on-failure variant of TypedValueOf.
// Use when failure is a bug (e.g., erased values produced by typed constructors).
func MustTypedValueOf[T any](v any) T {
	res, err := TypedValueOf[T](v)
	if err != nil {
		panic(err)
	}
	return res
}

// GetTypedValueOf is TypedValueOf over a getter that may fail.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, fmt.Errorf("failed to get value: %w", err)
	}
	return TypedValueOf[T](res)
}
