package state

import "errors"

var (
	// ErrFieldClaimed indicates a second owner tried to claim a field.
	ErrFieldClaimed = errors.New("state: field already claimed")
	// ErrNotOwner indicates a write from something other than the field owner.
	ErrNotOwner = errors.New("state: writer does not own field")
	// ErrFieldRequired indicates an empty field name.
	ErrFieldRequired = errors.New("state: field name is required")
	// ErrOwnerRequired indicates an empty owner token.
	ErrOwnerRequired = errors.New("state: owner is required")
	// ErrSealed indicates a write to a sealed container.
	ErrSealed = errors.New("state: container sealed")
	// ErrMutatorRequired indicates a nil mutator.
	ErrMutatorRequired = errors.New("state: mutator is required")
)

// Mutator applies a change to the record in place.
type Mutator[S any] func(*S) error

// Meta describes the record version produced by a write.
type Meta struct {
	Version uint64 `json:"version"`
	Field   string `json:"field,omitempty"`
	Owner   string `json:"owner,omitempty"`
}
