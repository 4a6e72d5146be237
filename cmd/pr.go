package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/config"
	"github.com/rog555/ccpr/pkg/diff"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
	"github.com/rog555/ccpr/pkg/git"
	"github.com/rog555/ccpr/pkg/table"
)

var (
	prDiffs       bool
	prComments    bool
	prFilePattern string
)

// prCmd shows the detail view of one pull request.
var prCmd = &cobra.Command{
	Use:   "pr <id>",
	Short: "Show details for specific PR (colorized diffs with comments etc)",
	Long: `Show a pull request: title, author, approval rule status and the
changed files. With --diffs the changes are rendered as colorized diffs,
optionally interleaved with review comments.

Examples:
  ccpr pr 123              # Summary and changed file list
  ccpr pr 123 -d           # Colorized diffs
  ccpr pr 123 -d -c        # Diffs with review comments
  ccpr pr 123 -f handler   # Only files matching "handler"`,
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
		opts := prViewOptions{
			diffs:       prDiffs,
			comments:    prComments,
			filePattern: prFilePattern,
		}
		_, err = showPR(ctx, os.Stdout, client, cfg, args[0], opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(prCmd)

	prCmd.Flags().BoolVarP(&prDiffs, "diffs", "d", false, "show differences")
	prCmd.Flags().BoolVarP(&prComments, "comments", "c", false, "show diff comments")
	prCmd.Flags().StringVarP(&prFilePattern, "file", "f", "", "filter diff files on matching file pattern")
}

type prViewOptions struct {
	diffs       bool
	comments    bool
	filePattern string
}

// showPR prints the PR detail view and returns the loaded PR so mutating
// commands can reuse it.
func showPR(ctx context.Context, w io.Writer, client codecommit.Client, cfg *config.Config, id string, opts prViewOptions) (*codecommit.PullRequest, error) {
	// Comment and file filtering only make sense on diffs.
	if opts.comments || opts.filePattern != "" {
		opts.diffs = true
	}

	pr, err := codecommit.LoadPullRequest(ctx, client, id)
	if err != nil {
		return nil, reportError(w, err)
	}

	repo := pr.Target.RepositoryName
	if repo != git.CurrentRepo() {
		fmt.Fprintf(w, "repo: %s\n", boldRed.Sprint(repo))
	}
	prTable(w, pr)

	changes, err := codecommit.Differences(ctx, client, pr)
	if err != nil {
		return nil, reportError(w, err)
	}

	if !opts.diffs {
		tbl := table.New(
			table.Column{Header: "file"},
			table.Column{Header: "change", Rules: []table.Rule{
				table.MustRule("deleted", color.FgRed),
				table.MustRule(".*", color.FgGreen),
			}},
		)
		tbl.Title = "changes:"
		tbl.Counter = true
		for _, fc := range changes {
			tbl.AddRow(fc.Path, fc.Change())
		}
		tbl.Render(w)
		return pr, nil
	}

	if err := printDiffs(ctx, w, client, cfg, pr, changes, opts); err != nil {
		return nil, err
	}
	return pr, nil
}

// printDiffs renders each changed file as a colorized diff.
func printDiffs(ctx context.Context, w io.Writer, client codecommit.Client, cfg *config.Config, pr *codecommit.PullRequest, changes []codecommit.FileChange, opts prViewOptions) error {
	repo := pr.Target.RepositoryName

	var comments *codecommit.CommentSet
	if opts.comments {
		var err error
		comments, err = client.GetComments(ctx, pr.ID)
		if err != nil {
			return reportError(w, err)
		}
		if len(comments.General) > 0 {
			commentTable(w, "PR comments", comments.General)
		}
	}

	getContent := func(blobID string) (string, error) {
		if blobID == "" {
			return "", nil
		}
		content, err := client.GetBlob(ctx, repo, blobID)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}

	renderer := &diff.Renderer{Context: cfg.Diff.Context}

	matches := 0
	for _, fc := range changes {
		if slices.Contains(cfg.Diff.BinaryExtensions, filepath.Ext(fc.Path)) {
			fmt.Fprintln(w, boldWhite.Sprintf("%s (binary)", fc.Path))
			continue
		}
		if opts.filePattern != "" && !containsMatch(opts.filePattern, fc.Path) {
			continue
		}
		matches++

		commentCount := comments.FileCommentCount(fc.Path)
		commentMsg := ""
		if commentCount > 0 {
			commentMsg = cyan.Sprintf(" %d comment(s)", commentCount)
		}

		switch {
		case fc.BeforeBlobID == "":
			fmt.Fprintf(w, "%s %s%s\n", boldWhite.Sprint(fc.Path), green.Sprint("+added+"), commentMsg)
		case fc.AfterBlobID == "":
			fmt.Fprintf(w, "%s %s%s\n", boldWhite.Sprint(fc.Path), red.Sprint("-deleted-"), commentMsg)
		default:
			fmt.Fprintf(w, "%s %s%s\n", boldWhite.Sprint(fc.Path), green.Sprint("+modified+"), commentMsg)
		}

		// Modified files always get a diff. Added file contents are only
		// printed when a file filter asked for them, deleted files never.
		renderDiff := fc.BeforeBlobID != "" && fc.AfterBlobID != "" ||
			opts.filePattern != "" && fc.AfterBlobID != ""
		if !renderDiff {
			continue
		}

		before, err := getContent(fc.BeforeBlobID)
		if err != nil {
			return reportError(w, err)
		}
		after, err := getContent(fc.AfterBlobID)
		if err != nil {
			return reportError(w, err)
		}

		fileComments := comments.FileComments(fc.Path)
		renderer.AfterLine = nil
		if len(fileComments) > 0 {
			renderer.AfterLine = func(cw io.Writer, toLine int) {
				if cd, ok := fileComments[toLine]; ok {
					commentTable(cw, "", cd)
				}
			}
		}
		renderer.Render(w, before, after)
	}

	if opts.filePattern != "" && matches == 0 {
		return reportError(w, ccerrors.Newf("no files matching pattern %q in PR", opts.filePattern))
	}
	return nil
}
