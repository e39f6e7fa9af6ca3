// Package state holds the mutable record behind a reactive model.
//
// Responsibilities:
//   - Container[S] exclusively owns one record value of type S.
//   - Every field of the record has at most one owner. Owners claim fields
//     up front; writes from anyone else fail with ErrNotOwner.
//   - Writes are serialized and bump a monotonic version so readers can tell
//     snapshots apart.
//   - Snapshot returns a deep copy so consumers cannot mutate the record.
//
// Data flow:
//
//	loader -> Container.Write(owner, field, mutate) -> (record, version) -> subscribers
//
// The container knows nothing about streams or fetching; the root package
// drives it.
package state
