package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

var (
	commentFile   string
	commentLineNo int
)

// commentCmd posts a comment on a pull request.
var commentCmd = &cobra.Command{
	Use:     "comment <id> <content>",
	Aliases: []string{"C"},
	Short:   "Comment on PR, general if file and lineno not specified",
	Long: `Post a comment on a pull request. Without --file the comment is
attached to the PR itself; with --file and --lineno it is anchored to a
line of the new file version.

Examples:
  ccpr comment 123 "looks good"
  ccpr comment 123 "rename this" -f src/main.go -l 14`,
	Args: cobra.ExactArgs(2),
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
		return runComment(ctx, os.Stdout, client, args[0], args[1], commentFile, commentLineNo)
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)

	commentCmd.Flags().StringVarP(&commentFile, "file", "f", "", "file comment")
	commentCmd.Flags().IntVarP(&commentLineNo, "lineno", "l", 0, "line number of file")
}

func runComment(ctx context.Context, w io.Writer, client codecommit.Client, id, content, file string, lineNo int) error {
	if (file == "") != (lineNo == 0) {
		return reportError(w, ccerrors.New("--lineno required with --file"))
	}

	pr, err := codecommit.LoadPullRequest(ctx, client, id)
	if err != nil {
		return reportError(w, err)
	}
	changes, err := codecommit.Differences(ctx, client, pr)
	if err != nil {
		return reportError(w, err)
	}

	if file != "" {
		// Comments anchor to the AFTER version, so deleted files are not
		// commentable.
		var files []string
		found := false
		for _, fc := range changes {
			if fc.AfterBlobID == "" {
				continue
			}
			files = append(files, fmt.Sprintf("%d] %s", len(files)+1, fc.Path))
			if fc.Path == file {
				found = true
			}
		}
		if !found {
			return reportError(w, ccerrors.Newf("file %q not in list of PR files:\n%s",
				file, strings.Join(files, "\n")))
		}
	}

	input := codecommit.CommentInput{
		PullRequestID:  id,
		RepositoryName: pr.Target.RepositoryName,
		BeforeCommitID: pr.Target.DestinationCommit,
		AfterCommitID:  pr.Target.SourceCommit,
		Content:        content,
		FilePath:       file,
		LineNumber:     lineNo,
	}
	if err := client.PostComment(ctx, input); err != nil {
		return reportError(w, err)
	}

	msg := "general comment added"
	if file != "" {
		msg = "file comment added"
	}
	fmt.Fprintln(w, cyan.Sprint(msg))
	return nil
}
