package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rog555/ccpr/pkg/codecommit"
	"github.com/rog555/ccpr/pkg/git"
)

func TestRunMergeDefaultStrategy(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	client := newMockCCClient()
	var buf bytes.Buffer
	if err := runMerge(context.Background(), &buf, client, testConfig(), "7", ""); err != nil {
		t.Fatalf("runMerge: %v", err)
	}
	if len(client.merged) != 1 || client.merged[0] != "7:squash" {
		t.Errorf("merged = %v, want [7:squash]", client.merged)
	}
	if !strings.Contains(buf.String(), "PR merged") {
		t.Errorf("missing confirmation:\n%s", buf.String())
	}
}

func TestRunMergeExplicitStrategy(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	client := newMockCCClient()
	var buf bytes.Buffer
	if err := runMerge(context.Background(), &buf, client, testConfig(), "7", "three_way"); err != nil {
		t.Fatalf("runMerge: %v", err)
	}
	if client.merged[0] != "7:three_way" {
		t.Errorf("merged = %v", client.merged)
	}
}

func TestRunMergeInvalidStrategy(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	var buf bytes.Buffer
	if err := runMerge(context.Background(), &buf, newMockCCClient(), testConfig(), "7", "rebase"); err == nil {
		t.Fatal("expected error for invalid strategy")
	}
}

func TestRunMergeUnapproved(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	client := newMockCCClient()
	client.evals["7"] = &codecommit.Evaluation{NotSatisfied: []string{"min-approvers"}}

	var buf bytes.Buffer
	err := runMerge(context.Background(), &buf, client, testConfig(), "7", "")
	if err == nil {
		t.Fatal("expected error merging unapproved PR")
	}
	if len(client.merged) != 0 {
		t.Errorf("unapproved PR should not merge: %v", client.merged)
	}
}

func TestRunMergeClosed(t *testing.T) {
	t.Setenv(git.RepoEnvVar, "web")

	var buf bytes.Buffer
	if err := runMerge(context.Background(), &buf, newMockCCClient(), testConfig(), "8", ""); err == nil {
		t.Fatal("expected error merging closed PR")
	}
}
