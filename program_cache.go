package reactive

import "sync"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns an unbounded concurrency-safe ProgramCache. Guards
// are declared once per loader, so the key space stays small.
func NewProgramCache() ProgramCache {
	return &syncProgramCache{}
}

type syncProgramCache struct {
	programs sync.Map
}

func (c *syncProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *syncProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}
