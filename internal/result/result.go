// Package result holds a two-variant success/failure value used in place of
// bare (value, error) pairs across the repository and domain layers.
package result

// Result is either a success holding a T or a failure holding an E.
// Build it with Ok or Err; the zero value is not meaningful.
type Result[T, E any] struct {
	value T
	err   E
	ok    bool
}

func Ok[T, E any](value T) Result[T, E] {
	return Result[T, E]{value: value, ok: true}
}

// Err panics when handed a nil interface: a failure must carry something.
func Err[T, E any](err E) Result[T, E] {
	if any(err) == nil {
		panic("result: Err called with nil failure value")
	}
	return Result[T, E]{err: err}
}

func (r Result[T, E]) IsOk() bool {
	return r.ok
}

func (r Result[T, E]) IsErr() bool {
	return !r.ok
}

// Unwrap returns the success value. Calling it on a failure is a programming
// error and panics.
func (r Result[T, E]) Unwrap() T {
	if !r.ok {
		panic("result: Unwrap called on failure")
	}
	return r.value
}

// UnwrapErr returns the failure value and panics on a success.
func (r Result[T, E]) UnwrapErr() E {
	if r.ok {
		panic("result: UnwrapErr called on success")
	}
	return r.err
}

func (r Result[T, E]) UnwrapOr(fallback T) T {
	if r.ok {
		return r.value
	}
	return fallback
}

// Map transforms the success value. Failures pass through untouched and fn is
// not called.
func Map[T, U, E any](r Result[T, E], fn func(T) U) Result[U, E] {
	if !r.ok {
		return Result[U, E]{err: r.err}
	}
	return Ok[U, E](fn(r.value))
}

// MapErr transforms the failure value. Successes pass through untouched.
func MapErr[T, E, F any](r Result[T, E], fn func(E) F) Result[T, F] {
	if r.ok {
		return Ok[T, F](r.value)
	}
	return Result[T, F]{err: fn(r.err)}
}

// AndThen calls fn with the success value and returns its Result. A failure is
// propagated without calling fn.
func AndThen[T, U, E any](r Result[T, E], fn func(T) Result[U, E]) Result[U, E] {
	if !r.ok {
		return Result[U, E]{err: r.err}
	}
	return fn(r.value)
}
