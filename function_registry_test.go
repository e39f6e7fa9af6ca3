package reactive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFunctionRegistryNamesAndLookup(t *testing.T) {
	registry := DefaultFunctionRegistry()
	if diff := cmp.Diff([]string{"absent", "oneOf", "present"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	got, err := registry.Call("ONEOF", "NEW", []any{"MERGED", "NEW"})
	if err != nil || got != true {
		t.Fatalf("expected case-insensitive call to match, got %v err=%v", got, err)
	}
	if err := registry.Register("Present", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected unknown function error")
	}
}

func TestFunctionRegistryCloneIsIndependent(t *testing.T) {
	registry := NewFunctionRegistry()
	clone := registry.Clone()
	if err := clone.Register("topicOf", func(args ...any) (any, error) { return args[0], nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(registry.Names()) != 0 {
		t.Fatalf("expected original registry untouched, got %v", registry.Names())
	}
	if _, err := (&FunctionRegistry{}).Call("x"); err == nil {
		t.Fatalf("expected error from empty registry")
	}
	if err := (&FunctionRegistry{}).Register("x", func(...any) (any, error) { return 1, nil }); err != nil {
		t.Fatalf("expected zero registry to accept registrations, got %v", err)
	}
}
