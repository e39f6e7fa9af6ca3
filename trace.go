package reactive

import (
	"encoding/json"
)

// Trace captures the per-loader bookkeeping of a model at one point in time.
type Trace struct {
	Model   string        `json:"model"`
	Name    string        `json:"name,omitempty"`
	Version uint64        `json:"version"`
	Loaders []LoaderTrace `json:"loaders"`
}

// LoaderTrace details how one loader has behaved so far.
type LoaderTrace struct {
	Field       string `json:"field"`
	Generation  uint64 `json:"generation"`
	Started     uint64 `json:"started"`
	Written     uint64 `json:"written"`
	Stale       uint64 `json:"stale"`
	Failed      uint64 `json:"failed"`
	LastVerdict string `json:"last_verdict,omitempty"`
	LastStatus  string `json:"last_status,omitempty"`
}

// Loader returns the trace entry for field.
func (t Trace) Loader(field string) (LoaderTrace, bool) {
	for _, entry := range t.Loaders {
		if entry.Field == field {
			return entry, true
		}
	}
	return LoaderTrace{}, false
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
