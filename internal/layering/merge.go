// Package layering merges configuration payloads where stronger layers keep
// their explicit settings and weaker layers fill the gaps.
package layering

import (
	"reflect"

	"github.com/goliatone/go-reactive/pkg/state"
)

// Merge composes layers ordered from strongest to weakest and returns a new
// value. Nested maps and structs merge key by key, slices are taken whole
// from the strongest layer that sets them. Inputs are never mutated.
func Merge[T any](layers ...T) T {
	var zero T
	if len(layers) == 0 {
		return zero
	}

	merged := clone(reflect.ValueOf(layers[len(layers)-1]))
	for i := len(layers) - 2; i >= 0; i-- {
		merged = merge(reflect.ValueOf(layers[i]), merged)
	}
	if !merged.IsValid() {
		return zero
	}
	if target := reflect.TypeOf(zero); target != nil && merged.Type() != target {
		return merged.Convert(target).Interface().(T)
	}
	return merged.Interface().(T)
}

// Payloads merges decoded JSON objects. Nil layers are skipped.
func Payloads(layers ...map[string]any) map[string]any {
	present := make([]map[string]any, 0, len(layers))
	for _, layer := range layers {
		if layer != nil {
			present = append(present, layer)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return Merge(present...)
}

func merge(strong, weak reflect.Value) reflect.Value {
	if !strong.IsValid() {
		return clone(weak)
	}

	switch strong.Kind() {
	case reflect.Pointer:
		if strong.IsNil() {
			return clone(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Pointer && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		result := reflect.New(strong.Type().Elem())
		result.Elem().Set(merge(strong.Elem(), weakElem))
		return result
	case reflect.Interface:
		if strong.IsNil() {
			return clone(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Interface && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		return merge(strong.Elem(), weakElem)
	case reflect.Struct:
		result := reflect.New(strong.Type()).Elem()
		var weakStruct reflect.Value
		if weak.IsValid() && weak.Type() == strong.Type() {
			weakStruct = weak
		}
		for i := 0; i < strong.NumField(); i++ {
			field := result.Field(i)
			if !field.CanSet() {
				continue
			}
			var weakField reflect.Value
			if weakStruct.IsValid() {
				weakField = weakStruct.Field(i)
			}
			field.Set(merge(strong.Field(i), weakField))
		}
		return result
	case reflect.Map:
		if strong.IsNil() {
			return clone(weak)
		}
		result := reflect.MakeMapWithSize(strong.Type(), strong.Len())
		if weak.IsValid() && weak.Type() == strong.Type() && !weak.IsNil() {
			iter := weak.MapRange()
			for iter.Next() {
				result.SetMapIndex(iter.Key(), clone(iter.Value()))
			}
		}
		iter := strong.MapRange()
		for iter.Next() {
			key := iter.Key()
			if existing := result.MapIndex(key); existing.IsValid() {
				result.SetMapIndex(key, merge(iter.Value(), existing))
				continue
			}
			result.SetMapIndex(key, clone(iter.Value()))
		}
		return result
	default:
		return clone(strong)
	}
}

func clone(v reflect.Value) reflect.Value {
	if !v.IsValid() || !v.CanInterface() {
		return v
	}
	out := reflect.ValueOf(state.Clone(v.Interface()))
	if !out.IsValid() {
		return reflect.Zero(v.Type())
	}
	return out
}
