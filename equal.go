package reactive

import "reflect"

// Equaler lets a type provide its own shallow comparison.
type Equaler interface {
	EqualTo(other any) bool
}

// ShallowEqual reports whether a and b are equal one level deep: structs,
// arrays, slices and maps are compared element by element, while nested
// references (pointers, slices, maps, channels) must be identical. Functions
// never compare equal.
func ShallowEqual(a, b any) bool {
	if eq, ok := a.(Equaler); ok {
		return eq.EqualTo(b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Slice:
		if va.IsNil() != vb.IsNil() || va.Len() != vb.Len() {
			return false
		}
		if va.Len() == 0 || va.Pointer() == vb.Pointer() {
			return true
		}
		for i := 0; i < va.Len(); i++ {
			if !identical(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.IsNil() != vb.IsNil() || va.Len() != vb.Len() {
			return false
		}
		if va.Pointer() == vb.Pointer() {
			return true
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !identical(iter.Value(), other) {
				return false
			}
		}
		return true
	default:
		return identical(va, vb)
	}
}

// EqualFunc adapts ShallowEqual to a typed comparator.
func EqualFunc[T any]() func(a, b T) bool {
	return func(a, b T) bool {
		return ShallowEqual(a, b)
	}
}

// NeverEqual treats every value as new.
func NeverEqual[T any]() func(a, b T) bool {
	return func(T, T) bool { return false }
}

func identical(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Slice:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return a.Len() == b.Len() && (a.Len() == 0 || a.Pointer() == b.Pointer())
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return identical(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !identical(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !identical(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	default:
		return a.Equal(b)
	}
}
