package reactive

import (
	"errors"
	"testing"
)

func TestValueSentinels(t *testing.T) {
	var zero Value[int]
	if zero.Status != StatusNotLoaded || zero.Ready() {
		t.Fatalf("expected zero value to be not loaded, got %v", zero)
	}
	if v := Unavailable[int](); v.IsLoaded() || !v.Ready() {
		t.Fatalf("unexpected unavailable value %v", v)
	}
	if v := Loaded([]int{}); !v.IsLoaded() {
		t.Fatalf("expected empty slice to be a loaded value")
	}
	if _, ok := Failed[int](errors.New("x")).Get(); ok {
		t.Fatalf("expected failed value to have no data")
	}
}

type fieldErrors struct {
	fields []string
}

func (e fieldErrors) Error() string { return "invalid fields" }

func TestValueEqualTo(t *testing.T) {
	err := errors.New("x")
	shared := []string{"a"}
	listed := fieldErrors{fields: []string{"topic"}}
	cases := []struct {
		name string
		a, b Value[[]string]
		want bool
	}{
		{"both not loaded", NotLoaded[[]string](), NotLoaded[[]string](), true},
		{"loaded same elements", Loaded([]string{"a"}), Loaded([]string{"a"}), true},
		{"loaded shared slice", Loaded(shared), Loaded(shared), true},
		{"loaded different elements", Loaded([]string{"a"}), Loaded([]string{"b"}), false},
		{"status differs", Loaded([]string{}), Unavailable[[]string](), false},
		{"same error", Failed[[]string](err), Failed[[]string](err), true},
		{"distinct errors", Failed[[]string](err), Failed[[]string](errors.New("x")), false},
		{"uncomparable error shared", Failed[[]string](listed), Failed[[]string](listed), true},
		{"uncomparable error copied", Failed[[]string](listed), Failed[[]string](fieldErrors{fields: []string{"topic"}}), false},
		{"uncomparable against comparable", Failed[[]string](listed), Failed[[]string](err), false},
	}
	for _, tc := range cases {
		if got := tc.a.EqualTo(tc.b); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestBothReadiness(t *testing.T) {
	sum := func(a, b int) int { return a + b }
	boom := errors.New("boom")

	if got := Both(NotLoaded[int](), Failed[int](boom), sum); got.Status != StatusNotLoaded {
		t.Fatalf("expected not loaded to dominate, got %v", got)
	}
	if got := Both(Unavailable[int](), Failed[int](boom), sum); got.Status != StatusFailed || got.Err != boom {
		t.Fatalf("expected failure to propagate, got %v", got)
	}
	if got := Both(Loaded(1), Unavailable[int](), sum); got.Status != StatusUnavailable {
		t.Fatalf("expected unavailable, got %v", got)
	}
	if got := Both(Loaded(1), Loaded(2), sum); got.Data != 3 || !got.IsLoaded() {
		t.Fatalf("expected loaded 3, got %v", got)
	}
}

func TestStatusString(t *testing.T) {
	if StatusFailed.String() != "failed" || Status(9).String() != "status(9)" {
		t.Fatalf("unexpected status strings")
	}
	if got := Loaded(4).String(); got != "loaded(4)" {
		t.Fatalf("unexpected value string %q", got)
	}
}
