package state

import "reflect"

// Clone returns a deep copy of value. Pointers, maps, slices and arrays are
// copied recursively, as are non-pointer values held in interfaces (decoded
// JSON). Pointers held in interfaces, such as errors, keep their identity;
// unexported struct fields, funcs and channels are shared with the original.
func Clone[T any](value T) T {
	rv := reflect.ValueOf(&value).Elem()
	cloned := cloneValue(rv)
	if !cloned.IsValid() {
		var zero T
		return zero
	}
	out := reflect.New(rv.Type()).Elem()
	out.Set(cloned)
	return out.Interface().(T)
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		switch v.Elem().Kind() {
		case reflect.Map, reflect.Slice, reflect.Struct, reflect.Array:
			clone := reflect.New(v.Type()).Elem()
			clone.Set(cloneValue(v.Elem()))
			return clone
		}
		return v
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return v
	}
}
