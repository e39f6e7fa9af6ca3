// Package change holds the upstream collaborators of the related changes
// model: the currently viewed change and the server configuration.
package change

import (
	"sync"

	reactive "github.com/goliatone/go-reactive"
	"github.com/goliatone/go-reactive/gerrit"
)

// Model publishes the current change and the identifiers derived from it.
// Every stream only emits when its value changes.
type Model struct {
	change *reactive.Subject[*gerrit.ChangeInfo]
	reload *reactive.Subject[uint64]

	mu      sync.Mutex
	reloads uint64

	loaded         *reactive.Derived[bool]
	changeNum      *reactive.Derived[gerrit.NumericChangeID]
	changeID       *reactive.Derived[gerrit.ChangeID]
	latestPatchNum *reactive.Derived[gerrit.PatchSetNum]
	repo           *reactive.Derived[gerrit.RepoName]
	status         *reactive.Derived[gerrit.ChangeStatus]
	mergeable      *reactive.Derived[bool]
	topic          *reactive.Derived[gerrit.TopicName]
}

// NewModel returns a model with no change loaded.
func NewModel() *Model {
	m := &Model{
		change: reactive.NewSubject[*gerrit.ChangeInfo](nil),
		reload: reactive.NewSubject[uint64](0),
	}
	m.loaded = project(m, func(c *gerrit.ChangeInfo) bool { return c != nil })
	m.changeNum = project(m, func(c *gerrit.ChangeInfo) gerrit.NumericChangeID {
		if c == nil {
			return 0
		}
		return c.Number
	})
	m.changeID = project(m, func(c *gerrit.ChangeInfo) gerrit.ChangeID {
		if c == nil {
			return ""
		}
		return c.ChangeID
	})
	m.latestPatchNum = project(m, (*gerrit.ChangeInfo).LatestPatchNum)
	m.repo = project(m, func(c *gerrit.ChangeInfo) gerrit.RepoName {
		if c == nil {
			return ""
		}
		return c.Project
	})
	m.status = project(m, func(c *gerrit.ChangeInfo) gerrit.ChangeStatus {
		if c == nil {
			return ""
		}
		return c.Status
	})
	m.mergeable = project(m, (*gerrit.ChangeInfo).IsMergeable)
	m.topic = project(m, func(c *gerrit.ChangeInfo) gerrit.TopicName {
		if c == nil {
			return ""
		}
		return c.Topic
	})
	return m
}

func project[T any](m *Model, fn func(*gerrit.ChangeInfo) T) *reactive.Derived[T] {
	return reactive.Select[*gerrit.ChangeInfo, T](m.change, fn)
}

// SetChange replaces the current change. nil unloads it.
func (m *Model) SetChange(c *gerrit.ChangeInfo) {
	m.change.Next(c)
}

// Reload asks every dependent loader to fetch again.
func (m *Model) Reload() {
	m.mu.Lock()
	m.reloads++
	next := m.reloads
	m.mu.Unlock()
	m.reload.Next(next)
}

// Args projects the current change into a tuple of named arguments. The
// identifiers are read from the same change, so the stream emits once per
// distinct set instead of once per identifier. pick receives nil while no
// change is loaded. The caller closes the result.
func (m *Model) Args(pick func(*gerrit.ChangeInfo) reactive.Args) *reactive.Derived[reactive.Args] {
	return project(m, pick)
}

// Close stops every stream.
func (m *Model) Close() {
	for _, d := range []interface{ Close() }{
		m.loaded, m.changeNum, m.changeID, m.latestPatchNum,
		m.repo, m.status, m.mergeable, m.topic,
	} {
		d.Close()
	}
	m.change.Close()
	m.reload.Close()
}

// Change is the loaded change, nil while none is loaded.
func (m *Model) Change() reactive.Field[*gerrit.ChangeInfo] { return m.change }

// ReloadSignal counts Reload calls.
func (m *Model) ReloadSignal() reactive.Field[uint64] { return m.reload }

// Loaded reports whether a change is loaded.
func (m *Model) Loaded() reactive.Field[bool] { return m.loaded }

// ChangeNum is the numeric id of the change.
func (m *Model) ChangeNum() reactive.Field[gerrit.NumericChangeID] { return m.changeNum }

// ChangeID is the Change-Id of the change.
func (m *Model) ChangeID() reactive.Field[gerrit.ChangeID] { return m.changeID }

// LatestPatchNum is the newest patch set number.
func (m *Model) LatestPatchNum() reactive.Field[gerrit.PatchSetNum] { return m.latestPatchNum }

// Repo is the project the change belongs to.
func (m *Model) Repo() reactive.Field[gerrit.RepoName] { return m.repo }

// Status is the change status.
func (m *Model) Status() reactive.Field[gerrit.ChangeStatus] { return m.status }

// Mergeable reports whether the change can be merged as is.
func (m *Model) Mergeable() reactive.Field[bool] { return m.mergeable }

// Topic is the change topic, empty when unset.
func (m *Model) Topic() reactive.Field[gerrit.TopicName] { return m.topic }
