package state

import (
	"fmt"
	"sort"
	"sync"
)

// Container owns a record of type S and serializes writes to it.
type Container[S any] struct {
	mu      sync.RWMutex
	record  S
	version uint64
	owners  map[string]string
	sealed  bool
}

// NewContainer seeds a container with initial. The initial record is version 0.
func NewContainer[S any](initial S) *Container[S] {
	return &Container[S]{
		record: initial,
		owners: map[string]string{},
	}
}

// Claim registers owner as the only writer of field.
func (c *Container[S]) Claim(field, owner string) error {
	if field == "" {
		return ErrFieldRequired
	}
	if owner == "" {
		return ErrOwnerRequired
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.owners[field]; ok && existing != owner {
		return fmt.Errorf("%w: %q", ErrFieldClaimed, field)
	}
	c.owners[field] = owner
	return nil
}

// Owner returns the owner of field, if claimed.
func (c *Container[S]) Owner(field string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, ok := c.owners[field]
	return owner, ok
}

// Fields returns the claimed field names sorted alphabetically.
func (c *Container[S]) Fields() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fields := make([]string, 0, len(c.owners))
	for field := range c.owners {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Write applies mutate on behalf of owner. A mutator error leaves the record
// and version untouched. The mutator runs on a copy outside the lock and is
// run again if another write lands first, so it must only depend on the
// record it is given. Writes to a sealed container fail with ErrSealed.
func (c *Container[S]) Write(owner, field string, mutate Mutator[S]) (S, Meta, error) {
	if mutate == nil {
		var zero S
		return zero, Meta{}, ErrMutatorRequired
	}
	for {
		c.mu.RLock()
		base, version, err := c.writable(owner, field)
		c.mu.RUnlock()
		if err != nil {
			return base, Meta{Version: version}, err
		}

		next := base
		if err := mutate(&next); err != nil {
			return base, Meta{Version: version}, fmt.Errorf("state: write %q: %w", field, err)
		}

		c.mu.Lock()
		if current, currentVersion, err := c.writable(owner, field); err != nil {
			c.mu.Unlock()
			return current, Meta{Version: currentVersion}, err
		}
		if c.version != version {
			c.mu.Unlock()
			continue
		}
		c.record = next
		c.version++
		record, meta := c.record, Meta{Version: c.version, Field: field, Owner: owner}
		c.mu.Unlock()
		return record, meta, nil
	}
}

// writable must be called with the lock held.
func (c *Container[S]) writable(owner, field string) (S, uint64, error) {
	if c.sealed {
		return c.record, c.version, ErrSealed
	}
	if existing, ok := c.owners[field]; !ok || existing != owner {
		return c.record, c.version, fmt.Errorf("%w: %q", ErrNotOwner, field)
	}
	return c.record, c.version, nil
}

// Seal rejects every later write and returns the final record and version.
// Sealing twice returns the same record.
func (c *Container[S]) Seal() (S, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
	return c.record, c.version
}

// Sealed reports whether Seal was called.
func (c *Container[S]) Sealed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sealed
}

// Load returns the current record and version. Reference fields in the record
// are shared with the container; use Snapshot for an isolated copy.
func (c *Container[S]) Load() (S, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.record, c.version
}

// Snapshot returns a deep copy of the current record.
func (c *Container[S]) Snapshot() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Clone(c.record)
}

// Version returns the number of successful writes.
func (c *Container[S]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
