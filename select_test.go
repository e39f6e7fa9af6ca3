package reactive

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type change struct {
	ID     string
	Number int
}

type related struct {
	ChangeID string
}

func TestSelectDeduplicatesProjection(t *testing.T) {
	source := NewSubject(change{ID: "a", Number: 1})
	ids := Select[change, string](source, func(c change) string { return c.ID })
	seen, sub := record[string](ids)
	defer sub.Unsubscribe()

	source.Next(change{ID: "a", Number: 2})
	source.Next(change{ID: "b", Number: 2})

	if diff := cmp.Diff([]string{"a", "b"}, seen.all()); diff != "" {
		t.Fatalf("emissions mismatch (-want +got):\n%s", diff)
	}

	ids.Close()
	source.Next(change{ID: "c"})
	if ids.Get() != "b" || seen.len() != 2 {
		t.Fatalf("expected closed projection to stop, got %q %v", ids.Get(), seen.all())
	}
}

func hasParent(c *change, list Value[[]related]) Value[bool] {
	if c == nil {
		return NotLoaded[bool]()
	}
	return Both(Loaded(c), list, func(c *change, items []related) bool {
		if len(items) == 0 {
			return false
		}
		return items[len(items)-1].ChangeID != c.ID
	})
}

func TestSelect2CompositeReadiness(t *testing.T) {
	current := NewSubject[*change](nil)
	list := NewSubject(NotLoaded[[]related]())
	parent := Select2[*change, Value[[]related], Value[bool]](current, list, hasParent)
	seen, sub := record[Value[bool]](parent)
	defer sub.Unsubscribe()
	defer parent.Close()

	if parent.Get().Ready() {
		t.Fatalf("expected not loaded without inputs, got %v", parent.Get())
	}

	c := &change{ID: "I1"}
	current.Next(c)
	if parent.Get().Ready() {
		t.Fatalf("expected not loaded while list is pending, got %v", parent.Get())
	}

	list.Next(Loaded([]related{}))
	if got, ok := parent.Get().Get(); !ok || got {
		t.Fatalf("expected loaded false for empty list, got %v", parent.Get())
	}

	list.Next(Loaded([]related{{ChangeID: "I0"}, {ChangeID: "I1"}}))
	if got, _ := parent.Get().Get(); got {
		t.Fatalf("expected false when the change is last, got %v", parent.Get())
	}

	list.Next(Loaded([]related{{ChangeID: "I1"}, {ChangeID: "I0"}}))
	if got, _ := parent.Get().Get(); !got {
		t.Fatalf("expected true when another change is last, got %v", parent.Get())
	}

	boom := errors.New("boom")
	list.Next(Failed[[]related](boom))
	if parent.Get().Err != boom {
		t.Fatalf("expected failure to propagate, got %v", parent.Get())
	}

	// Initial not loaded, false, then true, then failed. The second false is
	// suppressed.
	if seen.len() != 4 {
		t.Fatalf("expected 4 distinct emissions, got %v", seen.all())
	}
}

func TestSelect2SubscriberMayWriteUpstream(t *testing.T) {
	a := NewSubject(1)
	b := NewSubject(10)
	sum := Select2[int, int, int](a, b, func(x, y int) int { return x + y })
	defer sum.Close()

	var got []int
	sub := sum.Subscribe(func(v int) {
		got = append(got, v)
		if v == 11 {
			a.Next(2)
		}
	})
	defer sub.Unsubscribe()

	if diff := cmp.Diff([]int{11, 12}, got); diff != "" {
		t.Fatalf("emissions mismatch (-want +got):\n%s", diff)
	}
}
