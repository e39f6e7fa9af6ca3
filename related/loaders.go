package related

import (
	"context"

	reactive "github.com/goliatone/go-reactive"
	"github.com/goliatone/go-reactive/change"
	"github.com/goliatone/go-reactive/gerrit"
)

type loaders struct {
	changes *change.Model
	config  *change.ConfigModel
	api     gerrit.RestAPI
	owned   []reactive.Closer
}

// ready clears a field while no change is loaded.
var ready = reactive.RequireArgs(reactive.Reset, argLoaded)

// openChange is evaluated against the conflicting changes tuple.
const openChange = `status == "NEW" && mergeable`

// source combines the reload signal with identifiers picked from the current
// change, plus any extra bindings.
func (l *loaders) source(pick func(c *gerrit.ChangeInfo) reactive.Args, extra ...reactive.Binding) reactive.Observable[reactive.Args] {
	identity := l.changes.Args(func(c *gerrit.ChangeInfo) reactive.Args {
		if c == nil {
			return reactive.Args{argLoaded: false}
		}
		args := pick(c)
		args[argLoaded] = true
		return args
	})
	l.owned = append(l.owned, identity)

	bindings := append([]reactive.Binding{
		reactive.Bind[uint64](argReload, l.changes.ReloadSignal()),
		reactive.BindAll(identity),
	}, extra...)
	return reactive.Combine(bindings...)
}

func (l *loaders) relatedChanges() reactive.LoaderSpec[State] {
	source := l.source(func(c *gerrit.ChangeInfo) reactive.Args {
		return reactive.Args{argChangeNum: c.Number, argPatchNum: c.LatestPatchNum()}
	})
	guard := reactive.AllOf(ready, reactive.RequireArgs(reactive.MarkUnavailable, argChangeNum, argPatchNum))
	fetch := func(ctx context.Context, args reactive.Args) ([]gerrit.RelatedChangeAndCommitInfo, error) {
		info, err := l.api.GetRelatedChanges(ctx,
			reactive.ArgAs[gerrit.NumericChangeID](args, argChangeNum),
			reactive.ArgAs[gerrit.PatchSetNum](args, argPatchNum))
		if err != nil {
			return nil, err
		}
		if info == nil || info.Changes == nil {
			return []gerrit.RelatedChangeAndCommitInfo{}, nil
		}
		return info.Changes, nil
	}
	return reactive.NewLoader(FieldRelatedChanges, source, guard, fetch,
		func(s *State, v reactive.Value[[]gerrit.RelatedChangeAndCommitInfo]) { s.RelatedChanges = v })
}

func (l *loaders) submittedTogether() reactive.LoaderSpec[State] {
	source := l.source(func(c *gerrit.ChangeInfo) reactive.Args {
		return reactive.Args{argChangeNum: c.Number}
	})
	guard := reactive.AllOf(ready, reactive.RequireArgs(reactive.MarkUnavailable, argChangeNum))
	fetch := func(ctx context.Context, args reactive.Args) (*gerrit.SubmittedTogetherInfo, error) {
		return l.api.GetChangesSubmittedTogether(ctx, reactive.ArgAs[gerrit.NumericChangeID](args, argChangeNum))
	}
	return reactive.NewLoader(FieldSubmittedTogether, source, guard, fetch,
		func(s *State, v reactive.Value[*gerrit.SubmittedTogetherInfo]) { s.SubmittedTogether = v })
}

func (l *loaders) cherryPicks() reactive.LoaderSpec[State] {
	source := l.source(func(c *gerrit.ChangeInfo) reactive.Args {
		return reactive.Args{argChangeNum: c.Number, argChangeID: c.ChangeID, argRepo: c.Project}
	})
	guard := reactive.AllOf(ready, reactive.RequireArgs(reactive.MarkUnavailable, argChangeNum, argChangeID, argRepo))
	fetch := func(ctx context.Context, args reactive.Args) ([]gerrit.ChangeInfo, error) {
		return l.api.GetChangeCherryPicks(ctx,
			reactive.ArgAs[gerrit.RepoName](args, argRepo),
			reactive.ArgAs[gerrit.ChangeID](args, argChangeID),
			reactive.ArgAs[gerrit.NumericChangeID](args, argChangeNum))
	}
	return reactive.NewLoader(FieldCherryPicks, source, guard, fetch,
		func(s *State, v reactive.Value[[]gerrit.ChangeInfo]) { s.CherryPicks = v })
}

func (l *loaders) conflictingChanges() reactive.LoaderSpec[State] {
	source := l.source(func(c *gerrit.ChangeInfo) reactive.Args {
		return reactive.Args{argChangeNum: c.Number, argStatus: c.Status, argMergeable: c.IsMergeable()}
	})
	guard := reactive.AllOf(
		ready,
		reactive.RequireArgs(reactive.MarkUnavailable, argChangeNum, argStatus),
		reactive.MustExprGuard(openChange, reactive.MarkUnavailable, reactive.GuardWithField(FieldConflictingChanges)),
	)
	fetch := func(ctx context.Context, args reactive.Args) ([]gerrit.ChangeInfo, error) {
		return l.api.GetChangeConflicts(ctx, reactive.ArgAs[gerrit.NumericChangeID](args, argChangeNum))
	}
	return reactive.NewLoader(FieldConflictingChanges, source, guard, fetch,
		func(s *State, v reactive.Value[[]gerrit.ChangeInfo]) { s.ConflictingChanges = v })
}

func (l *loaders) sameTopicChanges() reactive.LoaderSpec[State] {
	source := l.source(func(c *gerrit.ChangeInfo) reactive.Args {
		return reactive.Args{argChangeNum: c.Number, argTopic: c.Topic}
	}, reactive.Bind[*gerrit.ServerInfo](argConfig, l.config.ServerConfig()))
	guard := reactive.AllOf(
		ready,
		reactive.RequireArgs(reactive.MarkUnavailable, argChangeNum, argTopic),
		reactive.GuardFunc(func(args reactive.Args) reactive.Verdict {
			config := reactive.ArgAs[*gerrit.ServerInfo](args, argConfig)
			switch {
			case config == nil:
				return reactive.Hold
			case config.Change.SubmitWholeTopic:
				// Whole-topic submission already lists the topic as
				// submitted together.
				return reactive.MarkUnavailable
			}
			return reactive.Proceed
		}),
	)
	fetch := func(ctx context.Context, args reactive.Args) ([]gerrit.ChangeInfo, error) {
		return l.api.GetChangesWithSameTopic(ctx, reactive.ArgAs[gerrit.TopicName](args, argTopic), gerrit.SameTopicQuery{
			OpenChangesOnly: true,
			ChangeToExclude: reactive.ArgAs[gerrit.NumericChangeID](args, argChangeNum),
		})
	}
	return reactive.NewLoader(FieldSameTopicChanges, source, guard, fetch,
		func(s *State, v reactive.Value[[]gerrit.ChangeInfo]) { s.SameTopicChanges = v })
}
