package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/config"
	"github.com/rog555/ccpr/pkg/git"
)

func testConfig() *config.Config {
	return &config.Config{
		Git:      config.GitConfig{DefaultBranch: "master"},
		Diff:     config.DiffConfig{Context: 3, BinaryExtensions: []string{".zip", ".docx", ".pptx"}},
		Merge:    config.MergeConfig{DefaultStrategy: "squash"},
		Grep:     config.GrepConfig{Workers: 5},
		Pipeline: config.PipelineConfig{NameFormat: "%s_%s"},
	}
}

func TestShowPRChangesTable(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	var buf bytes.Buffer
	pr, err := showPR(context.Background(), &buf, newMockCCClient(), testConfig(), "7", prViewOptions{})
	if err != nil {
		t.Fatalf("showPR: %v", err)
	}
	if pr.ID != "7" || !pr.IsApproved() {
		t.Errorf("unexpected PR returned: %+v", pr)
	}

	out := buf.String()
	for _, want := range []string{"changes:", "src/main.go", "modified", "docs/new.md", "added", "old.txt", "deleted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "repo:") {
		t.Errorf("repo banner should be suppressed for current repo:\n%s", out)
	}
}

func TestShowPRRepoBanner(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "other")

	var buf bytes.Buffer
	if _, err := showPR(context.Background(), &buf, newMockCCClient(), testConfig(), "7", prViewOptions{}); err != nil {
		t.Fatalf("showPR: %v", err)
	}
	if !strings.Contains(buf.String(), "repo: web") {
		t.Errorf("expected repo banner:\n%s", buf.String())
	}
}

func TestShowPRDiffs(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	var buf bytes.Buffer
	_, err := showPR(context.Background(), &buf, newMockCCClient(), testConfig(), "7", prViewOptions{diffs: true})
	if err != nil {
		t.Fatalf("showPR: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "src/main.go +modified+") {
		t.Errorf("missing modified header:\n%s", out)
	}
	if !strings.Contains(out, "- \treturn nil") || !strings.Contains(out, "+ \treturn retry()") {
		t.Errorf("missing diff rows:\n%s", out)
	}
	if !strings.Contains(out, "docs/new.md +added+") {
		t.Errorf("missing added header:\n%s", out)
	}
	// Added file contents only print with a file filter.
	if strings.Contains(out, "# new") {
		t.Errorf("added file contents should not print without filter:\n%s", out)
	}
	if !strings.Contains(out, "old.txt -deleted-") {
		t.Errorf("missing deleted header:\n%s", out)
	}
}

func TestShowPRFileFilter(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	var buf bytes.Buffer
	_, err := showPR(context.Background(), &buf, newMockCCClient(), testConfig(), "7",
		prViewOptions{filePattern: "new.md"})
	if err != nil {
		t.Fatalf("showPR: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "src/main.go") {
		t.Errorf("filter should exclude src/main.go:\n%s", out)
	}
	if !strings.Contains(out, "# new") {
		t.Errorf("added file contents should print with filter:\n%s", out)
	}
}

func TestShowPRFileFilterNoMatch(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	var buf bytes.Buffer
	_, err := showPR(context.Background(), &buf, newMockCCClient(), testConfig(), "7",
		prViewOptions{filePattern: "nothing"})
	if err == nil {
		t.Fatal("expected error for unmatched file pattern")
	}
}

func TestShowPRBinaryFile(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	client := newMockCCClient()
	client.changes = []codecommit.FileChange{
		{Path: "assets/archive.zip", ChangeType: "M", BeforeBlobID: "b1", AfterBlobID: "b2"},
	}

	var buf bytes.Buffer
	if _, err := showPR(context.Background(), &buf, client, testConfig(), "7", prViewOptions{diffs: true}); err != nil {
		t.Fatalf("showPR: %v", err)
	}
	if !strings.Contains(buf.String(), "assets/archive.zip (binary)") {
		t.Errorf("missing binary marker:\n%s", buf.String())
	}
}

func TestShowPRComments(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	client := newMockCCClient()
	client.comments = &codecommit.CommentSet{
		General: []codecommit.Comment{{Author: "carol", Content: "ship it"}},
		ByFile: map[string]map[int][]codecommit.Comment{
			"src/main.go": {4: {{Author: "dave", Content: "use backoff"}}},
		},
	}

	var buf bytes.Buffer
	_, err := showPR(context.Background(), &buf, client, testConfig(), "7", prViewOptions{comments: true})
	if err != nil {
		t.Fatalf("showPR: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "PR comments") || !strings.Contains(out, "ship it") {
		t.Errorf("missing general comments:\n%s", out)
	}
	if !strings.Contains(out, "src/main.go +modified+") || !strings.Contains(out, "1 comment(s)") {
		t.Errorf("missing file comment count:\n%s", out)
	}
	if !strings.Contains(out, "use backoff") {
		t.Errorf("missing inline comment:\n%s", out)
	}
}
