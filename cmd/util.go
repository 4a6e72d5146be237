package cmd

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/codepipeline"
	"github.com/rog555/ccpr/pkg/config"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
	"github.com/rog555/ccpr/pkg/git"
	"github.com/rog555/ccpr/pkg/table"
)

// Client factories, overridable in tests.
var (
	newCodeCommitClient = func(ctx context.Context, cfg *config.Config) (codecommit.Client, error) {
		return codecommit.NewClient(ctx, cfg)
	}
	newPipelineClient = func(ctx context.Context, cfg *config.Config) (codepipeline.Client, error) {
		return codepipeline.NewClient(ctx, cfg)
	}
)

var (
	boldWhite = color.New(color.FgWhite, color.Bold)
	boldRed   = color.New(color.FgRed, color.Bold)
	cyan      = color.New(color.FgCyan)
	green     = color.New(color.FgGreen)
	red       = color.New(color.FgRed)
	boldGreen = color.New(color.FgGreen, color.Bold)
)

// loadConfig returns the bootstrapped configuration.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return config.Load()
}

// resolveRepo returns the repo from args or falls back to the current git
// checkout (or CCPR_REPO).
func resolveRepo(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if repo := git.CurrentRepo(); repo != "" {
		return repo, nil
	}
	return "", ccerrors.NewGitError("resolveRepo",
		"repo not specified and none detected from current directory")
}

// completeRepos offers repository names for [repo] arguments and flags.
func completeRepos(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := context.Background()
	client, err := newCodeCommitClient(ctx, cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	repos, err := client.ListRepositories(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return repos, cobra.ShellCompDirectiveNoFileComp
}

// reportError prints the user-facing explanation and returns err so the
// process exits non-zero.
func reportError(w io.Writer, err error) error {
	fmt.Fprintln(w, ccerrors.FormatUserError(err))
	return err
}

// containsMatch reports whether s matches ".*pattern.*".
func containsMatch(pattern, s string) bool {
	ok, err := regexp.MatchString(".*"+pattern+".*", s)
	return err == nil && ok
}

// prTable renders one or more PRs in the standard listing layout.
func prTable(w io.Writer, prs ...*codecommit.PullRequest) {
	tbl := table.New(
		table.Column{Header: "id"},
		table.Column{Header: "title"},
		table.Column{Header: "author"},
		table.Column{Header: "activity", TimeAgo: true},
		table.Column{Header: "status"},
		table.Column{Header: "approvals", Rules: []table.Rule{
			table.MustRule("^Approved$", color.FgCyan),
			table.MustRule(".*", color.FgRed),
		}},
	)
	for _, pr := range prs {
		tbl.AddRow(pr.ID, pr.Title, pr.Author(), pr.LastActivity,
			pr.Status, pr.Evaluation.Status())
	}
	tbl.Render(w)
}

// commentTable renders review comments, all cyan.
func commentTable(w io.Writer, title string, comments []codecommit.Comment) {
	tbl := table.New(
		table.Column{Header: "author", Rules: []table.Rule{table.MustRule(".*", color.FgCyan)}},
		table.Column{Header: "comment", Rules: []table.Rule{table.MustRule(".*", color.FgCyan)}},
	)
	tbl.Title = title
	for _, c := range comments {
		tbl.AddRow(c.Author, c.Content)
	}
	tbl.Render(w)
}
