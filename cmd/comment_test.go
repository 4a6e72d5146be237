package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunCommentGeneral(t *testing.T) {
	client := newMockCCClient()
	var buf bytes.Buffer
	err := runComment(context.Background(), &buf, client, "7", "looks good", "", 0)
	if err != nil {
		t.Fatalf("runComment: %v", err)
	}
	if len(client.posted) != 1 {
		t.Fatalf("posted = %v", client.posted)
	}

	input := client.posted[0]
	if input.Content != "looks good" || input.FilePath != "" {
		t.Errorf("unexpected input: %+v", input)
	}
	if input.RepositoryName != "web" || input.BeforeCommitID != "c-dst" || input.AfterCommitID != "c-src" {
		t.Errorf("commit context wrong: %+v", input)
	}
	if !strings.Contains(buf.String(), "general comment added") {
		t.Errorf("missing confirmation:\n%s", buf.String())
	}
}

func TestRunCommentFile(t *testing.T) {
	client := newMockCCClient()
	var buf bytes.Buffer
	err := runComment(context.Background(), &buf, client, "7", "rename this", "src/main.go", 14)
	if err != nil {
		t.Fatalf("runComment: %v", err)
	}

	input := client.posted[0]
	if input.FilePath != "src/main.go" || input.LineNumber != 14 {
		t.Errorf("unexpected input: %+v", input)
	}
	if !strings.Contains(buf.String(), "file comment added") {
		t.Errorf("missing confirmation:\n%s", buf.String())
	}
}

func TestRunCommentFileRequiresLineNo(t *testing.T) {
	client := newMockCCClient()
	var buf bytes.Buffer
	if err := runComment(context.Background(), &buf, client, "7", "x", "src/main.go", 0); err == nil {
		t.Fatal("expected error without --lineno")
	}
	if err := runComment(context.Background(), &buf, client, "7", "x", "", 3); err == nil {
		t.Fatal("expected error without --file")
	}
}

func TestRunCommentUnknownFile(t *testing.T) {
	client := newMockCCClient()
	var buf bytes.Buffer
	err := runComment(context.Background(), &buf, client, "7", "x", "nope.go", 3)
	if err == nil {
		t.Fatal("expected error for file outside PR")
	}
	if !strings.Contains(err.Error(), "not in list of PR files") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(client.posted) != 0 {
		t.Errorf("comment should not be posted: %v", client.posted)
	}
}

func TestRunCommentDeletedFile(t *testing.T) {
	client := newMockCCClient()
	var buf bytes.Buffer
	err := runComment(context.Background(), &buf, client, "7", "x", "old.txt", 1)
	if err == nil {
		t.Fatal("expected error for deleted file")
	}
	if !strings.Contains(err.Error(), "not in list of PR files") {
		t.Errorf("unexpected error: %v", err)
	}
	// Deleted files have no after version to anchor to, so the listing
	// excludes them.
	if strings.Contains(err.Error(), "] old.txt") {
		t.Errorf("deleted file offered as commentable: %v", err)
	}
	if !strings.Contains(err.Error(), "1] src/main.go") || !strings.Contains(err.Error(), "2] docs/new.md") {
		t.Errorf("commentable files not listed: %v", err)
	}
	if len(client.posted) != 0 {
		t.Errorf("comment should not be posted: %v", client.posted)
	}
}
