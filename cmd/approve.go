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

// approveCmd approves a pull request.
var approveCmd = &cobra.Command{
	Use:     "approve <id>",
	Aliases: []string{"a"},
	Short:   "Approve PR",
	Args:    cobra.ExactArgs(1),
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
		return runApprove(ctx, os.Stdout, client, cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
}

func runApprove(ctx context.Context, w io.Writer, client codecommit.Client, cfg *config.Config, id string) error {
	pr, err := showPR(ctx, w, client, cfg, id, prViewOptions{})
	if err != nil {
		return err
	}
	if pr.IsClosed() {
		return reportError(w, ccerrors.New("PR already closed, unable to approve"))
	}
	if err := client.ApprovePullRequest(ctx, id, pr.RevisionID); err != nil {
		return reportError(w, err)
	}
	fmt.Fprintln(w, boldGreen.Sprint("PR approved"))
	return nil
}
