package reactive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTraceJSONRoundTrip(t *testing.T) {
	trace := Trace{
		Model:   "m-1",
		Name:    "related",
		Version: 3,
		Loaders: []LoaderTrace{
			{Field: "relatedChanges", Generation: 2, Started: 2, Written: 1, Stale: 1, LastVerdict: "proceed", LastStatus: "loaded"},
			{Field: "cherryPicks", LastVerdict: "hold"},
		},
	}
	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if diff := cmp.Diff(trace, decoded); diff != "" {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
	if entry, ok := decoded.Loader("cherryPicks"); !ok || entry.LastVerdict != "hold" {
		t.Fatalf("expected loader lookup, got %+v", entry)
	}
	if _, ok := decoded.Loader("missing"); ok {
		t.Fatalf("expected missing loader lookup to fail")
	}
}

func TestTraceFromJSONRejectsGarbage(t *testing.T) {
	if _, err := TraceFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}
