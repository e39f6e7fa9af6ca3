// Package related loads the lists shown next to a change: its relation
// chain, the changes submitted together with it, cherry-picks, conflicting
// changes and changes sharing its topic.
package related

import (
	"context"
	"errors"

	reactive "github.com/goliatone/go-reactive"
	"github.com/goliatone/go-reactive/change"
	"github.com/goliatone/go-reactive/gerrit"
)

// Field names, also used in logs, traces and activity events.
const (
	FieldRelatedChanges     = "relatedChanges"
	FieldSubmittedTogether  = "submittedTogether"
	FieldCherryPicks        = "cherryPicks"
	FieldConflictingChanges = "conflictingChanges"
	FieldSameTopicChanges   = "sameTopicChanges"
)

const (
	argReload    = "reload"
	argLoaded    = "loaded"
	argChangeNum = "changeNum"
	argPatchNum  = "latestPatchNum"
	argChangeID  = "changeId"
	argRepo      = "repo"
	argStatus    = "status"
	argMergeable = "mergeable"
	argTopic     = "topic"
	argConfig    = "serverConfig"
)

// ErrMissingDependency is returned by New when a collaborator is nil.
var ErrMissingDependency = errors.New("related: change model, config model and rest api are required")

// State is the record owned by the model.
type State struct {
	RelatedChanges     reactive.Value[[]gerrit.RelatedChangeAndCommitInfo]
	SubmittedTogether  reactive.Value[*gerrit.SubmittedTogetherInfo]
	CherryPicks        reactive.Value[[]gerrit.ChangeInfo]
	ConflictingChanges reactive.Value[[]gerrit.ChangeInfo]
	SameTopicChanges   reactive.Value[[]gerrit.ChangeInfo]
}

// Model derives the related changes of the current change.
type Model struct {
	model *reactive.Model[State]

	relatedChanges     *reactive.Derived[reactive.Value[[]gerrit.RelatedChangeAndCommitInfo]]
	submittedTogether  *reactive.Derived[reactive.Value[*gerrit.SubmittedTogetherInfo]]
	cherryPicks        *reactive.Derived[reactive.Value[[]gerrit.ChangeInfo]]
	conflictingChanges *reactive.Derived[reactive.Value[[]gerrit.ChangeInfo]]
	sameTopicChanges   *reactive.Derived[reactive.Value[[]gerrit.ChangeInfo]]
	hasParent          *reactive.Derived[reactive.Value[bool]]
}

// New builds and starts the model. Loaders follow the current change of
// changes and the server configuration of config and fetch through api.
func New(changes *change.Model, config *change.ConfigModel, api gerrit.RestAPI, opts ...reactive.Option) (*Model, error) {
	if changes == nil || config == nil || api == nil {
		return nil, ErrMissingDependency
	}
	l := &loaders{changes: changes, config: config, api: api}
	specs := []reactive.LoaderSpec[State]{
		l.relatedChanges(),
		l.submittedTogether(),
		l.cherryPicks(),
		l.conflictingChanges(),
		l.sameTopicChanges(),
	}
	opts = append([]reactive.Option{reactive.WithName("related-changes")}, opts...)

	m := reactive.New(State{}, opts...)
	m.Own(l.owned...)
	if err := m.Register(specs...); err != nil {
		m.Dispose()
		return nil, err
	}

	r := &Model{
		model: m,
		relatedChanges: reactive.Project(m, func(s State) reactive.Value[[]gerrit.RelatedChangeAndCommitInfo] {
			return s.RelatedChanges
		}),
		submittedTogether: reactive.Project(m, func(s State) reactive.Value[*gerrit.SubmittedTogetherInfo] {
			return s.SubmittedTogether
		}),
		cherryPicks:        reactive.Project(m, func(s State) reactive.Value[[]gerrit.ChangeInfo] { return s.CherryPicks }),
		conflictingChanges: reactive.Project(m, func(s State) reactive.Value[[]gerrit.ChangeInfo] { return s.ConflictingChanges }),
		sameTopicChanges:   reactive.Project(m, func(s State) reactive.Value[[]gerrit.ChangeInfo] { return s.SameTopicChanges }),
	}
	r.hasParent = reactive.Select2[*gerrit.ChangeInfo, reactive.Value[[]gerrit.RelatedChangeAndCommitInfo], reactive.Value[bool]](
		changes.Change(), r.relatedChanges, HasParent)
	m.Own(r.hasParent)

	if err := m.Start(); err != nil {
		m.Dispose()
		return nil, err
	}
	return r, nil
}

// HasParent reports whether c has a parent in its relation chain. The chain
// is ordered from descendant to ancestor, so c has a parent unless it is the
// last entry. It is not loaded until both the change and the chain are.
func HasParent(c *gerrit.ChangeInfo, chain reactive.Value[[]gerrit.RelatedChangeAndCommitInfo]) reactive.Value[bool] {
	if c == nil {
		return reactive.NotLoaded[bool]()
	}
	return reactive.Both(reactive.Loaded(c), chain, func(c *gerrit.ChangeInfo, items []gerrit.RelatedChangeAndCommitInfo) bool {
		if len(items) == 0 {
			return false
		}
		return items[len(items)-1].ChangeID != c.ChangeID
	})
}

// RelatedChanges is the relation chain of the current patch set, ordered from
// descendant to ancestor.
func (r *Model) RelatedChanges() reactive.Field[reactive.Value[[]gerrit.RelatedChangeAndCommitInfo]] {
	return r.relatedChanges
}

// SubmittedTogether lists the changes that would be submitted with this one.
func (r *Model) SubmittedTogether() reactive.Field[reactive.Value[*gerrit.SubmittedTogetherInfo]] {
	return r.submittedTogether
}

// CherryPicks lists cherry-picks of the change to other branches.
func (r *Model) CherryPicks() reactive.Field[reactive.Value[[]gerrit.ChangeInfo]] {
	return r.cherryPicks
}

// ConflictingChanges lists open changes that conflict with this one.
func (r *Model) ConflictingChanges() reactive.Field[reactive.Value[[]gerrit.ChangeInfo]] {
	return r.conflictingChanges
}

// SameTopicChanges lists other changes sharing the change topic.
func (r *Model) SameTopicChanges() reactive.Field[reactive.Value[[]gerrit.ChangeInfo]] {
	return r.sameTopicChanges
}

// HasParent reports whether the change has a parent in its relation chain.
func (r *Model) HasParent() reactive.Field[reactive.Value[bool]] {
	return r.hasParent
}

// ID returns the underlying model identifier.
func (r *Model) ID() string { return r.model.ID() }

// Snapshot returns a copy of the whole record.
func (r *Model) Snapshot() State { return r.model.Snapshot() }

// Trace reports per-loader bookkeeping.
func (r *Model) Trace() reactive.Trace { return r.model.Trace() }

// Settle waits until every started fetch has been applied or dropped.
func (r *Model) Settle(ctx context.Context) error { return r.model.Settle(ctx) }

// Done is closed once the model is disposed.
func (r *Model) Done() <-chan struct{} { return r.model.Done() }

// Dispose stops every loader and derived field. It is idempotent.
func (r *Model) Dispose() { r.model.Dispose() }
