package reactive

import (
	"fmt"
	"reflect"
)

// Status describes the load state of a single state record field.
type Status uint8

const (
	// StatusNotLoaded marks a field no loader has written yet. It is the zero
	// value so freshly declared records start out not loaded.
	StatusNotLoaded Status = iota
	// StatusUnavailable marks a field whose loader checked its inputs and
	// decided there is nothing to fetch.
	StatusUnavailable
	// StatusLoaded marks a field holding a fetched value. Empty collections are
	// loaded values.
	StatusLoaded
	// StatusFailed marks a field whose most recent fetch failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotLoaded:
		return "not_loaded"
	case StatusUnavailable:
		return "unavailable"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Value is the content of one state record field.
type Value[T any] struct {
	Status Status
	Data   T
	Err    error
}

// NotLoaded returns the "not yet loaded" sentinel.
func NotLoaded[T any]() Value[T] {
	return Value[T]{}
}

// Unavailable returns the "checked, not applicable" sentinel.
func Unavailable[T any]() Value[T] {
	return Value[T]{Status: StatusUnavailable}
}

// Loaded wraps a fetched value.
func Loaded[T any](data T) Value[T] {
	return Value[T]{Status: StatusLoaded, Data: data}
}

// Failed records a failed fetch.
func Failed[T any](err error) Value[T] {
	return Value[T]{Status: StatusFailed, Err: err}
}

// Get returns the data and whether the value is loaded.
func (v Value[T]) Get() (T, bool) {
	if v.Status != StatusLoaded {
		var zero T
		return zero, false
	}
	return v.Data, true
}

// IsLoaded reports whether the value holds fetched data.
func (v Value[T]) IsLoaded() bool {
	return v.Status == StatusLoaded
}

// Ready reports whether the field has been settled one way or another.
func (v Value[T]) Ready() bool {
	return v.Status != StatusNotLoaded
}

// EqualTo compares status and error by identity and data shallowly.
func (v Value[T]) EqualTo(other any) bool {
	o, ok := other.(Value[T])
	if !ok {
		return false
	}
	if v.Status != o.Status || !sameError(v.Err, o.Err) {
		return false
	}
	return ShallowEqual(v.Data, o.Data)
}

func (v Value[T]) String() string {
	switch v.Status {
	case StatusLoaded:
		return fmt.Sprintf("loaded(%v)", v.Data)
	case StatusFailed:
		return fmt.Sprintf("failed(%v)", v.Err)
	default:
		return v.Status.String()
	}
}

// Both combines two values with strict conjunctive readiness: a not loaded
// input yields not loaded, then failures and unavailability propagate in that
// order, and fn only runs when both inputs are loaded.
func Both[A, B, T any](a Value[A], b Value[B], fn func(A, B) T) Value[T] {
	switch {
	case a.Status == StatusNotLoaded || b.Status == StatusNotLoaded:
		return NotLoaded[T]()
	case a.Status == StatusFailed:
		return Failed[T](a.Err)
	case b.Status == StatusFailed:
		return Failed[T](b.Err)
	case a.Status == StatusUnavailable || b.Status == StatusUnavailable:
		return Unavailable[T]()
	}
	return Loaded(fn(a.Data, b.Data))
}

// sameError compares errors by identity. Errors of a type that cannot be
// compared with == are only equal to themselves when they share storage.
func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return identical(reflect.ValueOf(a), reflect.ValueOf(b))
}
