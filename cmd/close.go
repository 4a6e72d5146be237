package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/config"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

var closeConfirm bool

// confirmClose prompts before closing. Overridable in tests.
var confirmClose = func() bool {
	prompt := promptui.Prompt{
		Label:     "Close PR",
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

// closeCmd closes a pull request without merging.
var closeCmd = &cobra.Command{
	Use:     "close <id>",
	Aliases: []string{"x"},
	Short:   "Close PR",
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
		return runClose(ctx, os.Stdout, client, cfg, args[0], closeConfirm)
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().BoolVar(&closeConfirm, "confirm", false, "close without prompting")
}

func runClose(ctx context.Context, w io.Writer, client codecommit.Client, cfg *config.Config, id string, confirmed bool) error {
	pr, err := showPR(ctx, w, client, cfg, id, prViewOptions{})
	if err != nil {
		return err
	}
	if pr.IsClosed() {
		return reportError(w, ccerrors.New("PR already closed"))
	}
	if !confirmed && !confirmClose() {
		return nil
	}
	if err := client.ClosePullRequest(ctx, id); err != nil {
		return reportError(w, err)
	}
	fmt.Fprintln(w, cyan.Sprint("PR closed"))
	return nil
}
