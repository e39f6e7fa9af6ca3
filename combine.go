package reactive

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Args is the latest tuple of a combined set of named upstream values.
type Args map[string]any

// ArgAs returns the named value converted to T, or the zero value when it is
// missing or has another type.
func ArgAs[T any](args Args, name string) T {
	value, _ := args[name].(T)
	return value
}

// Present reports whether every named value is set: not nil, not a nil
// reference and not the zero value of a scalar type.
func (a Args) Present(names ...string) bool {
	for _, name := range names {
		if !isPresent(a[name]) {
			return false
		}
	}
	return true
}

// Names returns the bound names in sorted order.
func (a Args) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a Args) clone() Args {
	out := make(Args, len(a))
	for key, value := range a {
		out[key] = value
	}
	return out
}

// Binding names one upstream observable inside a Combine call.
type Binding struct {
	Name      string
	subscribe func(func(any)) Subscription
	merge     bool
}

// Bind names source so its values appear under name in the combined Args.
func Bind[T any](name string, source Observable[T]) Binding {
	return Binding{
		Name: name,
		subscribe: func(fn func(any)) Subscription {
			return source.Subscribe(func(value T) {
				fn(value)
			})
		},
	}
}

// BindAll merges every entry of the tuples emitted by source into the
// combined Args. Use it when several arguments are projected from the same
// upstream value so they change together in a single tuple.
func BindAll(source Observable[Args]) Binding {
	return Binding{
		merge: true,
		subscribe: func(fn func(any)) Subscription {
			return source.Subscribe(func(value Args) {
				fn(value)
			})
		},
	}
}

// Combine returns an observable emitting the latest value of every binding
// once all of them have produced a value, then again whenever any of them
// emits. Each subscriber gets its own upstream subscriptions.
func Combine(bindings ...Binding) Observable[Args] {
	return combined{bindings: append([]Binding(nil), bindings...)}
}

type combined struct {
	bindings []Binding
}

func (c combined) Subscribe(fn func(Args)) Subscription {
	if fn == nil {
		return SubscriptionFunc(nil)
	}

	var (
		mu       sync.Mutex
		latest   = make(Args, len(c.bindings))
		seen     = make([]bool, len(c.bindings))
		merged   = make([]Args, len(c.bindings))
		ready    int
		pending  []Args
		draining bool
		stopped  atomic.Bool
	)
	// Tuples are queued under mu and handed to fn outside it, one at a time
	// and in order, so fn may push into any of the bound sources.
	flush := func() {
		mu.Lock()
		if draining {
			mu.Unlock()
			return
		}
		draining = true
		for len(pending) > 0 && !stopped.Load() {
			tuple := pending[0]
			pending = pending[1:]
			mu.Unlock()
			fn(tuple)
			mu.Lock()
		}
		pending = nil
		draining = false
		mu.Unlock()
	}
	expected := 0
	for _, binding := range c.bindings {
		if binding.subscribe != nil {
			expected++
		}
	}
	subs := make(Subscriptions, 0, expected)
	for i, binding := range c.bindings {
		if binding.subscribe == nil {
			continue
		}
		index, name, merge := i, binding.Name, binding.merge
		subs = append(subs, binding.subscribe(func(value any) {
			if stopped.Load() {
				return
			}
			mu.Lock()
			if merge {
				for key := range merged[index] {
					delete(latest, key)
				}
				tuple, _ := value.(Args)
				for key, v := range tuple {
					latest[key] = v
				}
				merged[index] = tuple
			} else {
				latest[name] = value
			}
			if !seen[index] {
				seen[index] = true
				ready++
			}
			if ready < expected {
				mu.Unlock()
				return
			}
			pending = append(pending, latest.clone())
			mu.Unlock()
			flush()
		}))
	}
	return SubscriptionFunc(func() {
		stopped.Store(true)
		subs.Unsubscribe()
	})
}

func isPresent(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	case reflect.Struct, reflect.Array:
		return true
	default:
		return !rv.IsZero()
	}
}
