package gerrit

import "context"

// SameTopicQuery narrows a topic lookup.
type SameTopicQuery struct {
	OpenChangesOnly bool
	ChangeToExclude NumericChangeID
}

// RestAPI is the read side of the review server the related changes model
// depends on. Implementations own transport, authentication and retries.
type RestAPI interface {
	GetRelatedChanges(ctx context.Context, change NumericChangeID, patchSet PatchSetNum) (*RelatedChangesInfo, error)
	GetChangesSubmittedTogether(ctx context.Context, change NumericChangeID) (*SubmittedTogetherInfo, error)
	GetChangeCherryPicks(ctx context.Context, repo RepoName, changeID ChangeID, change NumericChangeID) ([]ChangeInfo, error)
	GetChangeConflicts(ctx context.Context, change NumericChangeID) ([]ChangeInfo, error)
	GetChangesWithSameTopic(ctx context.Context, topic TopicName, query SameTopicQuery) ([]ChangeInfo, error)
}
