package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

var (
	prsAny    bool
	prsClosed bool
)

// prsCmd lists pull requests for a repository.
var prsCmd = &cobra.Command{
	Use:     "prs [repo]",
	Aliases: []string{"ls"},
	Short:   "List PRs for repo - OPEN by default",
	Long: `List pull requests for a repository with author, activity and
approval rule status. The repo argument defaults to the current git
checkout.

Examples:
  ccpr prs              # Open PRs for the current repo
  ccpr prs myrepo -a    # All PRs regardless of state
  ccpr prs myrepo -c    # Closed PRs only`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeRepos,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := resolveRepo(args)
		if err != nil {
			return reportError(os.Stderr, err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client, err := newCodeCommitClient(ctx, cfg)
		if err != nil {
			return reportError(os.Stderr, err)
		}
		return runPRs(ctx, os.Stdout, client, repo, prsState())
	},
}

func init() {
	rootCmd.AddCommand(prsCmd)

	prsCmd.Flags().BoolVarP(&prsAny, "any", "a", false, "show PRs with any state")
	prsCmd.Flags().BoolVarP(&prsClosed, "closed", "c", false, "show PRs with CLOSED state")
}

func prsState() string {
	switch {
	case prsClosed:
		return codecommit.StatusClosed
	case prsAny:
		return codecommit.StatusAny
	default:
		return codecommit.StatusOpen
	}
}

func runPRs(ctx context.Context, w io.Writer, client codecommit.Client, repo, state string) error {
	ids, err := client.ListPullRequests(ctx, repo, state)
	if err != nil {
		return reportError(w, err)
	}
	if len(ids) == 0 {
		return reportError(w, ccerrors.Newf("no PRs with %s state in repo %s", state, repo))
	}

	prs, err := codecommit.LoadPullRequests(ctx, client, ids)
	if err != nil {
		return reportError(w, err)
	}

	prTable(w, prs...)
	return nil
}
