// Package gerrit holds the REST payload types and the API surface the
// related changes model reads from.
package gerrit

// ChangeStatus is the lifecycle state of a change.
type ChangeStatus string

const (
	StatusNew       ChangeStatus = "NEW"
	StatusMerged    ChangeStatus = "MERGED"
	StatusAbandoned ChangeStatus = "ABANDONED"
)

// NumericChangeID is the server-assigned change number.
type NumericChangeID int64

// PatchSetNum numbers the patch sets of a change starting at 1.
type PatchSetNum int

// ChangeID is the Change-Id footer key shared by every cherry-pick of a change.
type ChangeID string

// RepoName names a repository (project).
type RepoName string

// TopicName groups changes that are meant to be submitted together.
type TopicName string

// ChangeInfo is the subset of a change entity the related changes views use.
type ChangeInfo struct {
	ID              string                  `json:"id,omitempty"`
	Project         RepoName                `json:"project"`
	Branch          string                  `json:"branch,omitempty"`
	Topic           TopicName               `json:"topic,omitempty"`
	ChangeID        ChangeID                `json:"change_id"`
	Subject         string                  `json:"subject,omitempty"`
	Status          ChangeStatus            `json:"status"`
	Mergeable       *bool                   `json:"mergeable,omitempty"`
	Number          NumericChangeID         `json:"_number"`
	CurrentRevision string                  `json:"current_revision,omitempty"`
	Revisions       map[string]RevisionInfo `json:"revisions,omitempty"`
}

// RevisionInfo describes one patch set.
type RevisionInfo struct {
	Number PatchSetNum `json:"_number"`
	Ref    string      `json:"ref,omitempty"`
}

// LatestPatchNum returns the highest patch set number known for the change,
// or 0 when no revision was returned.
func (c *ChangeInfo) LatestPatchNum() PatchSetNum {
	if c == nil {
		return 0
	}
	var latest PatchSetNum
	for _, rev := range c.Revisions {
		if rev.Number > latest {
			latest = rev.Number
		}
	}
	return latest
}

// IsMergeable reports the mergeable flag, treating an unknown value as false.
func (c *ChangeInfo) IsMergeable() bool {
	return c != nil && c.Mergeable != nil && *c.Mergeable
}

// CommitInfo is the commit part of a relation chain entry.
type CommitInfo struct {
	Commit  string       `json:"commit,omitempty"`
	Parents []CommitInfo `json:"parents,omitempty"`
	Subject string       `json:"subject,omitempty"`
}

// RelatedChangeAndCommitInfo is one entry of a relation chain. Entries are
// ordered from the descendant to the ancestor.
type RelatedChangeAndCommitInfo struct {
	Project               RepoName        `json:"project"`
	ChangeID              ChangeID        `json:"change_id,omitempty"`
	Commit                CommitInfo      `json:"commit"`
	Number                NumericChangeID `json:"_change_number,omitempty"`
	RevisionNumber        PatchSetNum     `json:"_revision_number,omitempty"`
	CurrentRevisionNumber PatchSetNum     `json:"_current_revision_number,omitempty"`
	Status                ChangeStatus    `json:"status,omitempty"`
}

// RelatedChangesInfo wraps the relation chain of a patch set.
type RelatedChangesInfo struct {
	Changes []RelatedChangeAndCommitInfo `json:"changes"`
}

// SubmittedTogetherInfo lists the changes that would be submitted along with
// a change.
type SubmittedTogetherInfo struct {
	Changes           []ChangeInfo `json:"changes"`
	NonVisibleChanges int          `json:"non_visible_changes,omitempty"`
}

// ServerInfo is the subset of the server configuration the model reads.
type ServerInfo struct {
	Change ChangeConfigInfo `json:"change"`
}

// ChangeConfigInfo holds change-related server settings.
type ChangeConfigInfo struct {
	SubmitWholeTopic bool `json:"submit_whole_topic,omitempty"`
	UpdateDelay      int  `json:"update_delay,omitempty"`
	LargeChange      int  `json:"large_change,omitempty"`
}
