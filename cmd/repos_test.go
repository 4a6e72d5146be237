package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunRepos(t *testing.T) {
	var buf bytes.Buffer
	if err := runRepos(context.Background(), &buf, newMockCCClient(), ""); err != nil {
		t.Fatalf("runRepos: %v", err)
	}
	out := buf.String()
	for _, repo := range []string{"billing-api", "web", "infra"} {
		if !strings.Contains(out, repo) {
			t.Errorf("output missing %q:\n%s", repo, out)
		}
	}
}

func TestRunReposFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := runRepos(context.Background(), &buf, newMockCCClient(), "bill"); err != nil {
		t.Fatalf("runRepos: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "billing-api") {
		t.Errorf("filtered output missing billing-api:\n%s", out)
	}
	if strings.Contains(out, "infra") {
		t.Errorf("filter should exclude infra:\n%s", out)
	}
}
