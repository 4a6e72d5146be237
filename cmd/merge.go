package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/config"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

var mergeStrategy string

// mergeCmd merges an approved pull request.
var mergeCmd = &cobra.Command{
	Use:     "merge <id>",
	Aliases: []string{"m"},
	Short:   "Merge PR",
	Long: `Merge an approved pull request.

Strategies: squash (default), fast_forward, three_way.`,
	Args: cobra.ExactArgs(1),
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
		return runMerge(ctx, os.Stdout, client, cfg, args[0], mergeStrategy)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&mergeStrategy, "strategy", "s", "", "merge strategy (squash, fast_forward, three_way)")
}

func runMerge(ctx context.Context, w io.Writer, client codecommit.Client, cfg *config.Config, id, strategy string) error {
	if strategy == "" {
		strategy = cfg.Merge.DefaultStrategy
	}
	if err := config.ValidateMergeStrategy(strategy); err != nil {
		return reportError(w, err)
	}

	pr, err := showPR(ctx, w, client, cfg, id, prViewOptions{})
	if err != nil {
		return err
	}
	if pr.IsClosed() {
		return reportError(w, ccerrors.New("PR already closed"))
	}
	if !pr.IsApproved() {
		return reportError(w, ccerrors.New("PR not approved"))
	}

	if err := client.MergePullRequest(ctx, id, pr.Target.RepositoryName, strategy); err != nil {
		return reportError(w, err)
	}
	fmt.Fprintln(w, cyan.Sprint("PR merged"))
	return nil
}
