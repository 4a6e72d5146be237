package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/diff"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

// diffCmd diffs two local files with the same renderer used for PRs.
var diffCmd = &cobra.Command{
	Use:     "diff <file1> <file2>",
	Aliases: []string{"d"},
	Short:   "Diff two local files",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		from, err := os.ReadFile(args[0])
		if err != nil {
			return reportError(os.Stderr, ccerrors.Wrapf(err, "unable to read %s", args[0]))
		}
		to, err := os.ReadFile(args[1])
		if err != nil {
			return reportError(os.Stderr, ccerrors.Wrapf(err, "unable to read %s", args[1]))
		}

		renderer := &diff.Renderer{Context: cfg.Diff.Context}
		renderer.Render(os.Stdout, string(from), string(to))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
