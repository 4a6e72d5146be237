package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/git"
	"github.com/rog555/ccpr/pkg/grep"
)

var (
	grepBranch      string
	grepRepo        string
	grepRecursive   bool
	grepInsensitive bool
	grepShowMisses  bool
)

// grepCmd searches file contents in remote repositories.
var grepCmd = &cobra.Command{
	Use:     "grep <str> <path>",
	Aliases: []string{"g"},
	Short:   "Grep the remote repo(s)",
	Long: `Search file contents across remote repositories without cloning.
The path may end in a glob pattern; matching lines are printed with the
search string highlighted.

Examples:
  ccpr grep TODO /                    # Root of the current repo
  ccpr grep TODO '/src/*.go' -R       # Recurse under /src
  ccpr grep timeout / -r 'billing-*'  # Across matching repos`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		repo := grepRepo
		if repo == "" {
			repo = git.CurrentRepo()
		}
		branch := grepBranch
		if branch == "" {
			branch = cfg.Git.DefaultBranch
		}

		ctx := context.Background()
		client, err := newCodeCommitClient(ctx, cfg)
		if err != nil {
			return reportError(os.Stderr, err)
		}

		g := grep.New(client, os.Stdout)
		err = g.Run(ctx, grep.Options{
			Term:        args[0],
			Path:        args[1],
			Repos:       repo,
			Branch:      branch,
			Recursive:   grepRecursive,
			Insensitive: grepInsensitive,
			Verbose:     grepShowMisses || verbose,
			Workers:     cfg.Grep.Workers,
		})
		if err != nil {
			return reportError(os.Stderr, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(grepCmd)

	grepCmd.Flags().StringVarP(&grepBranch, "branch", "b", "", "branch to search, defaults to master")
	grepCmd.Flags().StringVarP(&grepRepo, "repo", "r", "", "comma sep list or current")
	grepCmd.Flags().BoolVarP(&grepRecursive, "recursive", "R", false, "recursive search")
	grepCmd.Flags().BoolVarP(&grepInsensitive, "insensitive", "i", false, "case insensitive")
	grepCmd.Flags().BoolVar(&grepShowMisses, "show-misses", false, "also list files without matches")

	_ = grepCmd.RegisterFlagCompletionFunc("repo", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		repos, directive := completeRepos(cmd, nil, toComplete)
		return repos, directive
	})
}
