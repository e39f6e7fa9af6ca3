package state

import (
	"errors"
	"testing"
)

type cloneSample struct {
	Name    string
	Count   *int
	Labels  map[string]string
	Items   []cloneItem
	Err     error
	private []string
}

type cloneItem struct {
	ID   string
	Tags []string
}

func TestCloneDeepCopiesReferences(t *testing.T) {
	count := 5
	original := cloneSample{
		Name:   "default",
		Count:  &count,
		Labels: map[string]string{"env": "prod"},
		Items:  []cloneItem{{ID: "a", Tags: []string{"x"}}},
	}

	cloned := Clone(original)
	*cloned.Count = 7
	cloned.Labels["env"] = "qa"
	cloned.Items[0].Tags[0] = "y"

	if *original.Count != 5 {
		t.Fatalf("pointer should be copied, original now %d", *original.Count)
	}
	if original.Labels["env"] != "prod" {
		t.Fatalf("map should be copied, original now %q", original.Labels["env"])
	}
	if original.Items[0].Tags[0] != "x" {
		t.Fatalf("nested slice should be copied, original now %q", original.Items[0].Tags[0])
	}
}

func TestCloneKeepsInterfacesAndUnexportedFields(t *testing.T) {
	boom := errors.New("boom")
	original := cloneSample{Err: boom, private: []string{"p"}}

	cloned := Clone(original)
	if cloned.Err != boom {
		t.Fatalf("expected interface value shared, got %v", cloned.Err)
	}
	if len(cloned.private) != 1 || cloned.private[0] != "p" {
		t.Fatalf("expected unexported field preserved, got %v", cloned.private)
	}
}

func TestCloneCopiesDecodedPayloads(t *testing.T) {
	original := map[string]any{
		"change": map[string]any{"update_delay": 300},
		"tags":   []any{"a"},
		"err":    errors.New("kept"),
	}
	cloned := Clone(original)
	cloned["change"].(map[string]any)["update_delay"] = 1
	cloned["tags"].([]any)[0] = "b"
	if original["change"].(map[string]any)["update_delay"] != 300 || original["tags"].([]any)[0] != "a" {
		t.Fatalf("expected nested payload copied, original now %v", original)
	}
	if cloned["err"] != original["err"] {
		t.Fatalf("expected error identity kept")
	}
}

func TestClonePreservesNil(t *testing.T) {
	var sample cloneSample
	cloned := Clone(sample)
	if cloned.Count != nil || cloned.Labels != nil || cloned.Items != nil {
		t.Fatalf("expected nil references to stay nil, got %+v", cloned)
	}
	if got := Clone[[]int](nil); got != nil {
		t.Fatalf("expected nil slice, got %v", got)
	}
}
