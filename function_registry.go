package reactive

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions. Lookups ignore case; engines
// expose functions under the name they were registered with.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
	names     map[string]string
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
		names:     make(map[string]string),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("reactive: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("reactive: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
		r.names = make(map[string]string)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("reactive: function %q already registered", name)
	}
	r.functions[key] = fn
	r.names[key] = name
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
		names:     make(map[string]string, len(r.names)),
	}
	for key, fn := range r.functions {
		clone.functions[key] = fn
		clone.names[key] = r.names[key]
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("reactive: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("reactive: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns the registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for _, name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFunctionRegistry returns a registry preloaded with the helpers guard
// expressions commonly need:
//
//	present(x)  true when x is set (not nil and not a zero scalar)
//	absent(x)   negation of present
//	oneOf(x, values...)  true when x equals one of values
func DefaultFunctionRegistry() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("present", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("reactive: present expects 1 argument, got %d", len(args))
		}
		return isPresent(args[0]), nil
	})
	_ = registry.Register("absent", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("reactive: absent expects 1 argument, got %d", len(args))
		}
		return !isPresent(args[0]), nil
	})
	_ = registry.Register("oneOf", func(args ...any) (any, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("reactive: oneOf expects a value and at least one candidate")
		}
		for _, candidate := range flattenCandidates(args[1:]) {
			if ShallowEqual(args[0], candidate) {
				return true, nil
			}
		}
		return false, nil
	})
	return registry
}

// flattenCandidates expands a single list argument so engines that cannot
// pass variadic calls may hand over the candidates as one list.
func flattenCandidates(args []any) []any {
	if len(args) != 1 {
		return args
	}
	if list, ok := args[0].([]any); ok {
		return list
	}
	return args
}
