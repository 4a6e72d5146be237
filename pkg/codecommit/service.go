package codecommit

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// joinWorkers bounds concurrent API calls when joining PR details.
const joinWorkers = 5

// LoadPullRequest fetches a PR and joins in its approval rule evaluation.
func LoadPullRequest(ctx context.Context, client Client, id string) (*PullRequest, error) {
	pr, err := client.GetPullRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	eval, err := client.EvaluateApprovalRules(ctx, id, pr.RevisionID)
	if err != nil {
		return nil, err
	}
	pr.Evaluation = eval
	return pr, nil
}

// LoadPullRequests fetches full PR details for a list of IDs concurrently,
// preserving input order.
func LoadPullRequests(ctx context.Context, client Client, ids []string) ([]*PullRequest, error) {
	prs := make([]*PullRequest, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(joinWorkers)
	for i, id := range ids {
		g.Go(func() error {
			pr, err := LoadPullRequest(ctx, client, id)
			if err != nil {
				return err
			}
			prs[i] = pr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prs, nil
}

// Differences lists the changed files for a PR using its first target.
func Differences(ctx context.Context, client Client, pr *PullRequest) ([]FileChange, error) {
	return client.GetDifferences(ctx, pr.Target.RepositoryName,
		pr.Target.DestinationCommit, pr.Target.SourceCommit)
}
