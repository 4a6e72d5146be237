package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/table"
)

var reposFilter string

// reposCmd lists CodeCommit repositories.
var reposCmd = &cobra.Command{
	Use:     "repos",
	Aliases: []string{"r"},
	Short:   "List repositories",
	Long: `List CodeCommit repositories in the account.

Examples:
  ccpr repos                # List all repositories
  ccpr repos -f billing     # Only repos with "billing" in the name`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client, err := newCodeCommitClient(ctx, cfg)
		if err != nil {
			return reportError(os.Stderr, err)
		}
		return runRepos(ctx, os.Stdout, client, reposFilter)
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)

	reposCmd.Flags().StringVarP(&reposFilter, "filter", "f", "", "filter repos on pattern")
}

func runRepos(ctx context.Context, w io.Writer, client codecommit.Client, filter string) error {
	names, err := client.ListRepositories(ctx)
	if err != nil {
		return reportError(w, err)
	}

	tbl := table.New(table.Column{Header: "name"})
	for _, name := range names {
		if filter != "" && !containsMatch(filter, name) {
			continue
		}
		tbl.AddRow(name)
	}
	tbl.Render(w)
	return nil
}
