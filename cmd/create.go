package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/console"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
	"github.com/rog555/ccpr/pkg/git"
)

var (
	createTitle  string
	createBranch string
)

// promptTitle asks for the PR title, defaulting to the last commit
// message. Overridable in tests.
var promptTitle = func(defaultTitle string) (string, error) {
	prompt := promptui.Prompt{
		Label:   "Enter PR title",
		Default: defaultTitle,
	}
	return prompt.Run()
}

// createCmd opens a pull request from the current branch.
var createCmd = &cobra.Command{
	Use:     "create [repo]",
	Aliases: []string{"c"},
	Short:   "Create PR",
	Long: `Create a pull request from the current branch. The repo argument
defaults to the current git checkout, the title to the last commit
message on the branch.

Examples:
  ccpr create                      # PR for current repo and branch
  ccpr create myrepo -t "Fix bug"  # Explicit repo and title`,
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
		return runCreate(ctx, os.Stdout, client, repo, createTitle, createBranch)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createTitle, "title", "t", "", "title of PR, defaults to last commit message on branch")
	createCmd.Flags().StringVarP(&createBranch, "branch", "b", "", "source branch, defaults to current branch")
}

func runCreate(ctx context.Context, w io.Writer, client codecommit.Client, repo, title, branch string) error {
	if branch == "" {
		var err error
		branch, err = git.SourceBranch()
		if err != nil {
			return reportError(w, err)
		}
	}

	branches, err := client.ListBranches(ctx, repo)
	if err != nil {
		return reportError(w, err)
	}
	if !slices.Contains(branches, branch) {
		return reportError(w, ccerrors.Newf("current branch %s not in repo %s", branch, repo))
	}

	if title == "" {
		title, err = promptTitle(git.LastCommitMessage())
		if err != nil {
			return reportError(w, err)
		}
	}

	id, err := client.CreatePullRequest(ctx, repo, branch, title)
	if err != nil {
		return reportError(w, err)
	}

	fmt.Fprintln(w, cyan.Sprintf("created PR %s", boldWhite.Sprint(id)))
	console.PrintLink(w, client.Region(),
		fmt.Sprintf("/codecommit/repositories/%s/pull-requests/%s/changes", repo, id))
	return nil
}
