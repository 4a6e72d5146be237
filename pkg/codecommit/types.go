package codecommit

import (
	"fmt"
	"strings"
	"time"
)

// PullRequestStatus values accepted by ListPullRequests. StatusAny lists
// both open and closed PRs.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
	StatusAny    = "any"
)

// Merge strategies accepted by MergePullRequest.
const (
	MergeSquash      = "squash"
	MergeFastForward = "fast_forward"
	MergeThreeWay    = "three_way"
)

// Target is the source/destination pair of a pull request.
type Target struct {
	RepositoryName       string
	SourceReference      string
	DestinationReference string
	SourceCommit         string
	DestinationCommit    string
	Merged               bool
}

// Evaluation is the approval rule evaluation for a PR revision.
type Evaluation struct {
	Approved     bool
	Satisfied    []string
	NotSatisfied []string
}

// Status renders the evaluation as shown in PR tables, either "Approved"
// or "N of M rules satisfied".
func (e *Evaluation) Status() string {
	if e == nil {
		return ""
	}
	if e.Approved {
		return "Approved"
	}
	satisfied := len(e.Satisfied)
	return fmt.Sprintf("%d of %d rules satisfied", satisfied, satisfied+len(e.NotSatisfied))
}

// PullRequest is the detail view of a CodeCommit pull request. Evaluation
// is populated by callers that join in the approval rule state.
type PullRequest struct {
	ID           string
	Title        string
	AuthorArn    string
	Status       string
	RevisionID   string
	LastActivity time.Time
	Target       Target
	Evaluation   *Evaluation
}

// Author returns the trailing segment of the author ARN, which for IAM
// users and assumed roles is the human-readable name.
func (pr *PullRequest) Author() string {
	parts := strings.Split(pr.AuthorArn, "/")
	return parts[len(parts)-1]
}

// IsClosed reports whether the PR has been closed or merged.
func (pr *PullRequest) IsClosed() bool {
	return pr.Status == StatusClosed
}

// IsApproved reports whether all approval rules are satisfied.
func (pr *PullRequest) IsApproved() bool {
	return pr.Evaluation != nil && pr.Evaluation.Approved
}

// FileChange is one changed file between two commits.
type FileChange struct {
	Path         string
	ChangeType   string // "A", "M" or "D"
	BeforeBlobID string
	AfterBlobID  string
}

// Change spells out the change type.
func (fc FileChange) Change() string {
	switch fc.ChangeType {
	case "A":
		return "added"
	case "D":
		return "deleted"
	default:
		return "modified"
	}
}

// Comment is a single review comment.
type Comment struct {
	Author  string
	Content string
}

// CommentSet groups a PR's comments into general discussion and per-file
// threads keyed by path and new-side line number. Only comments anchored
// to the AFTER version of a file are tracked per line.
type CommentSet struct {
	General []Comment
	ByFile  map[string]map[int][]Comment
}

// FileComments returns the line-keyed comments for path, or nil.
func (cs *CommentSet) FileComments(path string) map[int][]Comment {
	if cs == nil {
		return nil
	}
	return cs.ByFile[path]
}

// FileCommentCount returns the number of comments on any line of path.
func (cs *CommentSet) FileCommentCount(path string) int {
	n := 0
	for _, comments := range cs.FileComments(path) {
		n += len(comments)
	}
	return n
}

// CommentInput describes a comment to post. FilePath and LineNumber are
// set together for file comments and left zero for general PR comments.
type CommentInput struct {
	PullRequestID  string
	RepositoryName string
	BeforeCommitID string
	AfterCommitID  string
	Content        string
	FilePath       string
	LineNumber     int
}

// FolderFile is a file entry within a repository folder.
type FolderFile struct {
	Path   string
	BlobID string
	Mode   string
}

// Folder is one level of a repository tree.
type Folder struct {
	SubFolders []string
	Files      []FolderFile
}
