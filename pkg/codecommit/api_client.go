package codecommit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscc "github.com/aws/aws-sdk-go-v2/service/codecommit"
	cctypes "github.com/aws/aws-sdk-go-v2/service/codecommit/types"
	"github.com/google/uuid"

	"github.com/rog555/ccpr/pkg/cache"
	"github.com/rog555/ccpr/pkg/config"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

// APIClient implements Client using the AWS SDK. Read responses are cached
// for a short TTL so that chained commands within a few seconds of each
// other do not repeat identical API calls. Mutating calls never touch the
// cache.
type APIClient struct {
	api     *awscc.Client
	cache   *cache.Cache
	ttl     time.Duration
	blobTTL time.Duration
	retry   ccerrors.RetryConfig
	region  string
	logger  *slog.Logger
}

// APIClientOption is a functional option for configuring APIClient.
type APIClientOption func(*APIClient)

// WithLogger sets a custom logger for the API client.
func WithLogger(logger *slog.Logger) APIClientOption {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// NewClient creates a CodeCommit client from the application config. The
// AWS credential chain applies as usual; config values only override the
// profile and region when set.
func NewClient(ctx context.Context, cfg *config.Config, opts ...APIClientOption) (*APIClient, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.AWS.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, ccerrors.NewCodeCommitErrorWithCause("NewClient", "failed to load AWS config", err)
	}

	client := &APIClient{
		api:     awscc.NewFromConfig(awsCfg),
		cache:   cache.New(cfg.Cache.Dir),
		ttl:     time.Duration(cfg.CacheTTLSeconds()) * time.Second,
		blobTTL: time.Duration(cfg.Cache.BlobTTLSeconds) * time.Second,
		retry:   ccerrors.DefaultRetryConfig(),
		region:  awsCfg.Region,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.cache.Prune()
	return client, nil
}

// Region returns the resolved AWS region.
func (c *APIClient) Region() string {
	return c.region
}

// ListRepositories returns all repository names in the account.
func (c *APIClient) ListRepositories(ctx context.Context) ([]string, error) {
	key := cache.Key("ListRepositories", nil)
	var names []string
	if c.cached(key, &names) {
		return names, nil
	}

	var token *string
	for {
		out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.ListRepositoriesOutput, error) {
			return c.api.ListRepositories(ctx, &awscc.ListRepositoriesInput{NextToken: token})
		})
		if err != nil {
			return nil, toAPIError("ListRepositories", err)
		}
		for _, repo := range out.Repositories {
			names = append(names, aws.ToString(repo.RepositoryName))
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}

	c.store(key, names, c.ttl)
	return names, nil
}

// ListPullRequests returns PR IDs for a repository.
func (c *APIClient) ListPullRequests(ctx context.Context, repo, status string) ([]string, error) {
	key := cache.Key("ListPullRequests", map[string]string{"repo": repo, "status": status})
	var ids []string
	if c.cached(key, &ids) {
		return ids, nil
	}

	input := &awscc.ListPullRequestsInput{RepositoryName: aws.String(repo)}
	if status != StatusAny {
		input.PullRequestStatus = cctypes.PullRequestStatusEnum(status)
	}
	for {
		out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.ListPullRequestsOutput, error) {
			return c.api.ListPullRequests(ctx, input)
		})
		if err != nil {
			return nil, toAPIError("ListPullRequests", err)
		}
		ids = append(ids, out.PullRequestIds...)
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	c.store(key, ids, c.ttl)
	return ids, nil
}

// GetPullRequest retrieves a pull request by ID.
func (c *APIClient) GetPullRequest(ctx context.Context, id string) (*PullRequest, error) {
	key := cache.Key("GetPullRequest", map[string]string{"id": id})
	var pr PullRequest
	if c.cached(key, &pr) {
		return &pr, nil
	}

	out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.GetPullRequestOutput, error) {
		return c.api.GetPullRequest(ctx, &awscc.GetPullRequestInput{PullRequestId: aws.String(id)})
	})
	if err != nil {
		return nil, toAPIError("GetPullRequest", err)
	}

	converted := fromSDKPullRequest(out.PullRequest)
	c.store(key, converted, c.ttl)
	return converted, nil
}

// EvaluateApprovalRules evaluates the approval rules for a PR revision.
func (c *APIClient) EvaluateApprovalRules(ctx context.Context, id, revisionID string) (*Evaluation, error) {
	key := cache.Key("EvaluateApprovalRules", map[string]string{"id": id, "revision": revisionID})
	var eval Evaluation
	if c.cached(key, &eval) {
		return &eval, nil
	}

	out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.EvaluatePullRequestApprovalRulesOutput, error) {
		return c.api.EvaluatePullRequestApprovalRules(ctx, &awscc.EvaluatePullRequestApprovalRulesInput{
			PullRequestId: aws.String(id),
			RevisionId:    aws.String(revisionID),
		})
	})
	if err != nil {
		return nil, toAPIError("EvaluateApprovalRules", err)
	}

	converted := &Evaluation{
		Approved:     out.Evaluation.Approved,
		Satisfied:    out.Evaluation.ApprovalRulesSatisfied,
		NotSatisfied: out.Evaluation.ApprovalRulesNotSatisfied,
	}
	c.store(key, converted, c.ttl)
	return converted, nil
}

// GetDifferences lists changed files between two commit specifiers.
func (c *APIClient) GetDifferences(ctx context.Context, repo, beforeSpec, afterSpec string) ([]FileChange, error) {
	key := cache.Key("GetDifferences", map[string]string{
		"repo": repo, "before": beforeSpec, "after": afterSpec,
	})
	var changes []FileChange
	if c.cached(key, &changes) {
		return changes, nil
	}

	input := &awscc.GetDifferencesInput{
		RepositoryName:        aws.String(repo),
		BeforeCommitSpecifier: aws.String(beforeSpec),
		AfterCommitSpecifier:  aws.String(afterSpec),
	}
	for {
		out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.GetDifferencesOutput, error) {
			return c.api.GetDifferences(ctx, input)
		})
		if err != nil {
			return nil, toAPIError("GetDifferences", err)
		}
		for _, d := range out.Differences {
			fc := FileChange{ChangeType: string(d.ChangeType)}
			if d.BeforeBlob != nil {
				fc.Path = aws.ToString(d.BeforeBlob.Path)
				fc.BeforeBlobID = aws.ToString(d.BeforeBlob.BlobId)
			}
			if d.AfterBlob != nil {
				fc.Path = aws.ToString(d.AfterBlob.Path)
				fc.AfterBlobID = aws.ToString(d.AfterBlob.BlobId)
			}
			changes = append(changes, fc)
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	c.store(key, changes, c.ttl)
	return changes, nil
}

// GetBlob returns raw blob content. Blob IDs are content-addressed so the
// cache TTL is longer than for other reads.
func (c *APIClient) GetBlob(ctx context.Context, repo, blobID string) ([]byte, error) {
	key := cache.Key("GetBlob", map[string]string{"repo": repo, "blob": blobID})
	var content []byte
	if c.cached(key, &content) {
		return content, nil
	}

	out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.GetBlobOutput, error) {
		return c.api.GetBlob(ctx, &awscc.GetBlobInput{
			RepositoryName: aws.String(repo),
			BlobId:         aws.String(blobID),
		})
	})
	if err != nil {
		return nil, toAPIError("GetBlob", err)
	}

	c.store(key, out.Content, c.blobTTL)
	return out.Content, nil
}

// GetComments retrieves all comments on a pull request, grouped into
// general discussion and per-file threads.
func (c *APIClient) GetComments(ctx context.Context, id string) (*CommentSet, error) {
	set := &CommentSet{ByFile: map[string]map[int][]Comment{}}

	input := &awscc.GetCommentsForPullRequestInput{PullRequestId: aws.String(id)}
	for {
		out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.GetCommentsForPullRequestOutput, error) {
			return c.api.GetCommentsForPullRequest(ctx, input)
		})
		if err != nil {
			return nil, toAPIError("GetComments", err)
		}
		for _, thread := range out.CommentsForPullRequestData {
			comments := make([]Comment, 0, len(thread.Comments))
			for _, cm := range thread.Comments {
				comments = append(comments, Comment{
					Author:  arnName(aws.ToString(cm.AuthorArn)),
					Content: aws.ToString(cm.Content),
				})
			}
			loc := thread.Location
			if loc == nil {
				set.General = append(set.General, comments...)
				continue
			}
			if loc.RelativeFileVersion != cctypes.RelativeFileVersionEnumAfter {
				continue
			}
			path := aws.ToString(loc.FilePath)
			line := int(aws.ToInt64(loc.FilePosition))
			if set.ByFile[path] == nil {
				set.ByFile[path] = map[int][]Comment{}
			}
			set.ByFile[path][line] = append(set.ByFile[path][line], comments...)
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	return set, nil
}

// PostComment posts a general or file comment on a pull request.
func (c *APIClient) PostComment(ctx context.Context, in CommentInput) error {
	input := &awscc.PostCommentForPullRequestInput{
		PullRequestId:      aws.String(in.PullRequestID),
		RepositoryName:     aws.String(in.RepositoryName),
		BeforeCommitId:     aws.String(in.BeforeCommitID),
		AfterCommitId:      aws.String(in.AfterCommitID),
		Content:            aws.String(in.Content),
		ClientRequestToken: aws.String(uuid.NewString()),
	}
	if in.FilePath != "" {
		input.Location = &cctypes.Location{
			FilePath:            aws.String(in.FilePath),
			FilePosition:        aws.Int64(int64(in.LineNumber)),
			RelativeFileVersion: cctypes.RelativeFileVersionEnumAfter,
		}
	}
	if _, err := c.api.PostCommentForPullRequest(ctx, input); err != nil {
		return toAPIError("PostComment", err)
	}
	return nil
}

// ApprovePullRequest records an approval for a PR revision.
func (c *APIClient) ApprovePullRequest(ctx context.Context, id, revisionID string) error {
	_, err := c.api.UpdatePullRequestApprovalState(ctx, &awscc.UpdatePullRequestApprovalStateInput{
		PullRequestId: aws.String(id),
		RevisionId:    aws.String(revisionID),
		ApprovalState: cctypes.ApprovalStateApprove,
	})
	if err != nil {
		return toAPIError("ApprovePullRequest", err)
	}
	return nil
}

// ClosePullRequest closes a pull request without merging.
func (c *APIClient) ClosePullRequest(ctx context.Context, id string) error {
	_, err := c.api.UpdatePullRequestStatus(ctx, &awscc.UpdatePullRequestStatusInput{
		PullRequestId:     aws.String(id),
		PullRequestStatus: cctypes.PullRequestStatusEnumClosed,
	})
	if err != nil {
		return toAPIError("ClosePullRequest", err)
	}
	return nil
}

// MergePullRequest merges a PR with the given strategy.
func (c *APIClient) MergePullRequest(ctx context.Context, id, repo, strategy string) error {
	var err error
	switch strategy {
	case MergeFastForward:
		_, err = c.api.MergePullRequestByFastForward(ctx, &awscc.MergePullRequestByFastForwardInput{
			PullRequestId:  aws.String(id),
			RepositoryName: aws.String(repo),
		})
	case MergeThreeWay:
		_, err = c.api.MergePullRequestByThreeWay(ctx, &awscc.MergePullRequestByThreeWayInput{
			PullRequestId:  aws.String(id),
			RepositoryName: aws.String(repo),
		})
	case MergeSquash:
		_, err = c.api.MergePullRequestBySquash(ctx, &awscc.MergePullRequestBySquashInput{
			PullRequestId:  aws.String(id),
			RepositoryName: aws.String(repo),
		})
	default:
		return ccerrors.NewCodeCommitError("MergePullRequest", "unknown merge strategy "+strategy)
	}
	if err != nil {
		return toAPIError("MergePullRequest", err)
	}
	return nil
}

// CreatePullRequest opens a PR from branch and returns the new PR ID.
func (c *APIClient) CreatePullRequest(ctx context.Context, repo, branch, title string) (string, error) {
	out, err := c.api.CreatePullRequest(ctx, &awscc.CreatePullRequestInput{
		Title: aws.String(title),
		Targets: []cctypes.Target{{
			RepositoryName:  aws.String(repo),
			SourceReference: aws.String(branch),
		}},
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return "", toAPIError("CreatePullRequest", err)
	}
	return aws.ToString(out.PullRequest.PullRequestId), nil
}

// ListBranches returns all branch names in a repository.
func (c *APIClient) ListBranches(ctx context.Context, repo string) ([]string, error) {
	key := cache.Key("ListBranches", map[string]string{"repo": repo})
	var branches []string
	if c.cached(key, &branches) {
		return branches, nil
	}

	input := &awscc.ListBranchesInput{RepositoryName: aws.String(repo)}
	for {
		out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.ListBranchesOutput, error) {
			return c.api.ListBranches(ctx, input)
		})
		if err != nil {
			return nil, toAPIError("ListBranches", err)
		}
		branches = append(branches, out.Branches...)
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	c.store(key, branches, c.ttl)
	return branches, nil
}

// GetFolder lists one level of the repository tree.
func (c *APIClient) GetFolder(ctx context.Context, repo, commitSpec, path string) (*Folder, error) {
	key := cache.Key("GetFolder", map[string]string{
		"repo": repo, "commit": commitSpec, "path": path,
	})
	var folder Folder
	if c.cached(key, &folder) {
		return &folder, nil
	}

	out, err := ccerrors.RetryWithResult(ctx, c.retry, func() (*awscc.GetFolderOutput, error) {
		return c.api.GetFolder(ctx, &awscc.GetFolderInput{
			RepositoryName:  aws.String(repo),
			CommitSpecifier: aws.String(commitSpec),
			FolderPath:      aws.String(path),
		})
	})
	if err != nil {
		return nil, toAPIError("GetFolder", err)
	}

	converted := &Folder{}
	for _, sub := range out.SubFolders {
		converted.SubFolders = append(converted.SubFolders, aws.ToString(sub.AbsolutePath))
	}
	for _, f := range out.Files {
		converted.Files = append(converted.Files, FolderFile{
			Path:   aws.ToString(f.AbsolutePath),
			BlobID: aws.ToString(f.BlobId),
			Mode:   string(f.FileMode),
		})
	}

	c.store(key, converted, c.ttl)
	return converted, nil
}

// cached loads a cache entry when caching is enabled.
func (c *APIClient) cached(key string, out any) bool {
	if c.ttl <= 0 {
		return false
	}
	hit := c.cache.Get(key, out)
	if hit {
		c.logger.Debug("cache hit", "key", key)
	}
	return hit
}

// store writes a cache entry, logging but otherwise ignoring failures.
func (c *APIClient) store(key string, val any, ttl time.Duration) {
	if c.ttl <= 0 {
		return
	}
	if err := c.cache.Put(key, val, ttl); err != nil {
		c.logger.Debug("cache write failed", "key", key, "error", err)
	}
}

// fromSDKPullRequest converts the SDK pull request to the domain type.
func fromSDKPullRequest(pr *cctypes.PullRequest) *PullRequest {
	converted := &PullRequest{
		ID:         aws.ToString(pr.PullRequestId),
		Title:      aws.ToString(pr.Title),
		AuthorArn:  aws.ToString(pr.AuthorArn),
		Status:     string(pr.PullRequestStatus),
		RevisionID: aws.ToString(pr.RevisionId),
	}
	if pr.LastActivityDate != nil {
		converted.LastActivity = *pr.LastActivityDate
	}
	if len(pr.PullRequestTargets) > 0 {
		t := pr.PullRequestTargets[0]
		converted.Target = Target{
			RepositoryName:       aws.ToString(t.RepositoryName),
			SourceReference:      aws.ToString(t.SourceReference),
			DestinationReference: aws.ToString(t.DestinationReference),
			SourceCommit:         aws.ToString(t.SourceCommit),
			DestinationCommit:    aws.ToString(t.DestinationCommit),
		}
		if t.MergeMetadata != nil {
			converted.Target.Merged = t.MergeMetadata.IsMerged
		}
	}
	return converted
}

// arnName returns the trailing segment of an IAM ARN.
func arnName(arn string) string {
	if i := strings.LastIndexByte(arn, '/'); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

// toAPIError converts an SDK error into a CodeCommitError, extracting the
// HTTP status code when the failure came from a service response.
func toAPIError(operation string, err error) error {
	var respErr *awshttp.ResponseError
	if ccerrors.As(err, &respErr) {
		return ccerrors.NewCodeCommitErrorWithStatus(operation, respErr.HTTPStatusCode(), err.Error())
	}
	return ccerrors.NewCodeCommitErrorWithCause(operation, "request failed", err)
}
