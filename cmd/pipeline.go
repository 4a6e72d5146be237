package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rog555/ccpr/pkg/codepipeline"
	"github.com/rog555/ccpr/pkg/config"
	"github.com/rog555/ccpr/pkg/console"
	"github.com/rog555/ccpr/pkg/git"
	"github.com/rog555/ccpr/pkg/table"
)

var (
	pipelineBranch   string
	pipelineName     string
	pipelineMaster   bool
	pipelineCommits  bool
	pipelineAbsolute bool
)

// approvedByArn matches manual approval summaries so the IAM ARN can be
// replaced with the plain user name.
var approvedByArn = regexp.MustCompile(`Approved by arn:aws:\S+`)

// pipelineCmd shows CodePipeline status for a repository's pipeline.
var pipelineCmd = &cobra.Command{
	Use:     "pipeline [repo]",
	Aliases: []string{"p"},
	Short:   "Show codepipeline status",
	Long: `Show the stage-by-stage status of the CodePipeline for a repo and
branch. The pipeline name defaults to <repo>_<branch>; stages from older
executions are dimmed.

Examples:
  ccpr pipeline             # Pipeline for current repo and branch
  ccpr pipeline myrepo -m   # The master pipeline
  ccpr pipeline -c          # Include recent commit history`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeRepos,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client, err := newPipelineClient(ctx, cfg)
		if err != nil {
			return reportError(os.Stderr, err)
		}

		name := pipelineName
		if name == "" {
			repo, err := resolveRepo(args)
			if err != nil {
				return reportError(os.Stderr, err)
			}
			branch := pipelineBranch
			if pipelineMaster {
				branch = cfg.Git.DefaultBranch
			}
			if branch == "" {
				branch, err = git.CurrentBranch()
				if err != nil {
					return reportError(os.Stderr, err)
				}
			}
			name = fmt.Sprintf(cfg.Pipeline.NameFormat, repo, branch)
		}

		opts := pipelineOptions{
			name:     name,
			commits:  pipelineCommits,
			absolute: pipelineAbsolute,
		}
		return runPipeline(ctx, os.Stdout, client, cfg, opts)
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)

	pipelineCmd.Flags().StringVarP(&pipelineBranch, "branch", "b", "", "branch, defaults to current")
	pipelineCmd.Flags().StringVarP(&pipelineName, "name", "n", "", "pipeline name")
	pipelineCmd.Flags().BoolVarP(&pipelineMaster, "master", "m", false, "use master branch")
	pipelineCmd.Flags().BoolVarP(&pipelineCommits, "commits", "c", false, "show commit history")
	pipelineCmd.Flags().BoolVarP(&pipelineAbsolute, "absolute", "a", false, "show absolute dates")
}

type pipelineOptions struct {
	name     string
	commits  bool
	absolute bool
}

// pipelineExecutions indexes action executions by pipeline execution,
// stage and action.
type pipelineExecutions struct {
	typeIDs map[string]map[string]map[string]string
	sources map[string]codepipeline.ActionExecution
	builds  map[string]codepipeline.ActionExecution
}

func runPipeline(ctx context.Context, w io.Writer, client codepipeline.Client, cfg *config.Config, opts pipelineOptions) error {
	stages, err := client.GetPipelineState(ctx, opts.name)
	if err != nil {
		return reportError(w, err)
	}

	execs, err := loadExecutions(ctx, client, opts.name, stages)
	if err != nil {
		return reportError(w, err)
	}

	console.PrintLink(w, client.Region(), "/codepipeline/pipelines/"+opts.name+"/view")

	statusRules := []table.Rule{
		table.MustRule("Succeeded", color.FgGreen),
		table.MustRule("InProgress", color.FgCyan),
		table.MustRule("Failed", color.FgRed),
	}

	hasError := false
	for _, stage := range stages {
		if stage.ErrorMessage != "" {
			hasError = true
			break
		}
	}

	columns := []table.Column{
		{Header: "stage"},
		{Header: "status", Rules: statusRules},
		{Header: "updated", TimeAgo: !opts.absolute},
		{Header: "commit"},
		{Header: "summary"},
	}
	if hasError {
		columns = append(columns, table.Column{
			Header: "error",
			Rules:  []table.Rule{table.MustRule(".*", color.FgRed)},
		})
	}
	tbl := table.New(columns...)

	dim := false
	lastCommit := ""
	for _, stage := range stages {
		summary := rewriteSummary(stage, execs)

		commit := ""
		source, hasSource := execs.sources[stage.ExecutionID]
		if hasSource {
			commit = commitLink(source)
		}

		errCell := ""
		if stage.ErrorMessage != "" {
			errCell = console.Hyperlink(stage.ExternalURL, stage.ErrorMessage)
		}

		row := []any{stage.Name, stage.Status, stage.Updated, commit, summary}
		if hasError {
			row = append(row, errCell)
		}
		tbl.AddRow(row...)

		// Stages still running an older revision are dimmed.
		if hasSource {
			if lastCommit != "" && source.ExternalID != lastCommit {
				dim = true
			}
			lastCommit = source.ExternalID
		}
		if dim {
			tbl.DimLastRow()
		}
	}
	tbl.Render(w)

	if opts.commits {
		printCommits(w, stages, execs, opts.absolute)
	}
	return nil
}

// loadExecutions fetches action executions for every pipeline execution
// seen in the stage states, concurrently.
func loadExecutions(ctx context.Context, client codepipeline.Client, name string, stages []codepipeline.StageState) (*pipelineExecutions, error) {
	ids := make([]string, 0, len(stages))
	seen := map[string]bool{}
	for _, stage := range stages {
		if stage.ExecutionID == "" || seen[stage.ExecutionID] {
			continue
		}
		seen[stage.ExecutionID] = true
		ids = append(ids, stage.ExecutionID)
	}

	execs := &pipelineExecutions{
		typeIDs: map[string]map[string]map[string]string{},
		sources: map[string]codepipeline.ActionExecution{},
		builds:  map[string]codepipeline.ActionExecution{},
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for _, id := range ids {
		g.Go(func() error {
			actions, err := client.ListActionExecutions(ctx, name, id)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, ae := range actions {
				if execs.typeIDs[id] == nil {
					execs.typeIDs[id] = map[string]map[string]string{}
				}
				if execs.typeIDs[id][ae.StageName] == nil {
					execs.typeIDs[id][ae.StageName] = map[string]string{}
				}
				execs.typeIDs[id][ae.StageName][ae.ActionName] = ae.TypeID()
				if ae.IsSource() {
					execs.sources[id] = ae
				} else if ae.IsBuild() {
					execs.builds[id] = ae
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return execs, nil
}

// rewriteSummary cleans up a stage summary: IAM ARNs become user names and
// pending or rejected manual approvals are annotated.
func rewriteSummary(stage codepipeline.StageState, execs *pipelineExecutions) string {
	summary := strings.TrimSpace(stage.Summary)
	summary = approvedByArn.ReplaceAllStringFunc(summary, func(m string) string {
		parts := strings.Split(m, "/")
		return "Approved by " + green.Sprint(parts[len(parts)-1])
	})

	if stage.Status == "InProgress" || stage.Status == "Failed" {
		typeID := execs.typeIDs[stage.ExecutionID][stage.Name][stage.ActionName]
		if typeID == "AWS Approval Manual" {
			annotation := color.New(color.FgCyan, color.Italic).Sprint("InProgress...")
			if stage.Status == "Failed" {
				annotation = color.New(color.FgRed, color.Italic).Sprint("Rejected")
			}
			if summary != "" {
				summary += " "
			}
			summary += annotation
		}
	}
	return summary
}

// commitLink renders "#<short id>" hyperlinked to the source revision.
func commitLink(ae codepipeline.ActionExecution) string {
	id := ae.ExternalID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return console.Hyperlink(ae.ExternalURL, "#"+id)
}

// printCommits renders the commit history table, one row per pipeline
// execution in stage order.
func printCommits(w io.Writer, stages []codepipeline.StageState, execs *pipelineExecutions, absolute bool) {
	fmt.Fprintln(w, "commits:")
	tbl := table.New(
		table.Column{Header: "commit"},
		table.Column{Header: "updated", TimeAgo: !absolute},
		table.Column{Header: "build"},
		table.Column{Header: "summary"},
	)
	tbl.Counter = true

	seen := map[string]bool{}
	for _, stage := range stages {
		source, ok := execs.sources[stage.ExecutionID]
		if !ok || seen[stage.ExecutionID] {
			continue
		}
		seen[stage.ExecutionID] = true

		buildCell := ""
		if build, ok := execs.builds[stage.ExecutionID]; ok {
			buildCell = commitLink(build)
		}
		tbl.AddRow(commitLink(source), source.Updated, buildCell, source.ExternalSummary)
	}
	tbl.Render(w)
}
