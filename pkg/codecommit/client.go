// Package codecommit wraps the AWS CodeCommit API behind a small client
// interface with response caching and retries on throttled reads.
package codecommit

import (
	"context"
)

// Client defines the CodeCommit operations used by the CLI.
type Client interface {
	// ListRepositories returns all repository names in the account.
	ListRepositories(ctx context.Context) ([]string, error)

	// ListPullRequests returns PR IDs for a repository, filtered by
	// status unless status is StatusAny.
	ListPullRequests(ctx context.Context, repo, status string) ([]string, error)

	// GetPullRequest retrieves a pull request without its approval
	// evaluation.
	GetPullRequest(ctx context.Context, id string) (*PullRequest, error)

	// EvaluateApprovalRules evaluates the approval rules for a PR
	// revision.
	EvaluateApprovalRules(ctx context.Context, id, revisionID string) (*Evaluation, error)

	// GetDifferences lists changed files between two commit specifiers.
	GetDifferences(ctx context.Context, repo, beforeSpec, afterSpec string) ([]FileChange, error)

	// GetBlob returns raw blob content. Results are cached with the
	// longer blob TTL since blob IDs are content-addressed.
	GetBlob(ctx context.Context, repo, blobID string) ([]byte, error)

	// GetComments retrieves all comments on a pull request.
	GetComments(ctx context.Context, id string) (*CommentSet, error)

	// PostComment posts a general or file comment on a pull request.
	PostComment(ctx context.Context, input CommentInput) error

	// ApprovePullRequest records an approval for a PR revision.
	ApprovePullRequest(ctx context.Context, id, revisionID string) error

	// ClosePullRequest closes a pull request without merging.
	ClosePullRequest(ctx context.Context, id string) error

	// MergePullRequest merges a PR with the given strategy.
	MergePullRequest(ctx context.Context, id, repo, strategy string) error

	// CreatePullRequest opens a PR from branch onto the repository
	// default branch and returns the new PR ID.
	CreatePullRequest(ctx context.Context, repo, branch, title string) (string, error)

	// ListBranches returns all branch names in a repository.
	ListBranches(ctx context.Context, repo string) ([]string, error)

	// GetFolder lists one level of the repository tree at path on the
	// given commit specifier.
	GetFolder(ctx context.Context, repo, commitSpec, path string) (*Folder, error)

	// Region returns the resolved AWS region, used for console links.
	Region() string
}

// Compile-time check that APIClient implements Client.
var _ Client = (*APIClient)(nil)
