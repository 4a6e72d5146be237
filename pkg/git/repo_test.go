package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	ccprerrors "github.com/rog555/ccpr/pkg/errors"
)

// initTestRepo creates a repository with a single commit and returns its path.
func initTestRepo(t *testing.T, message string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	_, err = wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func checkoutBranch(t *testing.T, dir, branch string) {
	t.Helper()

	repo, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}))
}

func TestCurrentRepoEnvOverride(t *testing.T) {
	t.Setenv(RepoEnvVar, "override-repo")
	if got := CurrentRepo(); got != "override-repo" {
		t.Errorf("CurrentRepo() = %q, want override from env", got)
	}
}

func TestCurrentRepoFromWorkingDirectory(t *testing.T) {
	t.Setenv(RepoEnvVar, "")
	dir := initTestRepo(t, "initial commit")

	// Detection must also work from a subdirectory.
	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	if got := CurrentRepo(); got != filepath.Base(dir) {
		t.Errorf("CurrentRepo() = %q, want %q", got, filepath.Base(dir))
	}
}

func TestCurrentRepoOutsideRepository(t *testing.T) {
	t.Setenv(RepoEnvVar, "")
	t.Chdir(t.TempDir())

	if got := CurrentRepo(); got != "" {
		t.Errorf("CurrentRepo() = %q, want empty outside a repository", got)
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := initTestRepo(t, "initial commit")
	checkoutBranch(t, dir, "feature-login")
	t.Chdir(dir)

	branch, err := CurrentBranch()
	require.NoError(t, err)
	if branch != "feature-login" {
		t.Errorf("CurrentBranch() = %q, want feature-login", branch)
	}
}

func TestSourceBranchRejectsMainline(t *testing.T) {
	dir := initTestRepo(t, "initial commit")
	t.Chdir(dir)

	// PlainInit leaves us on master.
	_, err := SourceBranch()
	if !ccprerrors.IsGitError(err) {
		t.Fatalf("SourceBranch() on master: got %v, want GitError", err)
	}

	checkoutBranch(t, dir, "fix-typo")
	branch, err := SourceBranch()
	require.NoError(t, err)
	if branch != "fix-typo" {
		t.Errorf("SourceBranch() = %q, want fix-typo", branch)
	}
}

func TestLastCommitMessageSubjectOnly(t *testing.T) {
	dir := initTestRepo(t, "add login endpoint\n\nlonger body text\n")
	t.Chdir(dir)

	if got := LastCommitMessage(); got != "add login endpoint" {
		t.Errorf("LastCommitMessage() = %q, want subject line only", got)
	}
}

func TestLastCommitMessageOutsideRepository(t *testing.T) {
	t.Chdir(t.TempDir())

	if got := LastCommitMessage(); got != "" {
		t.Errorf("LastCommitMessage() = %q, want empty outside a repository", got)
	}
}

func TestIsMainline(t *testing.T) {
	for branch, want := range map[string]bool{"main": true, "master": true, "develop": false, "": false} {
		if got := IsMainline(branch); got != want {
			t.Errorf("IsMainline(%q) = %v, want %v", branch, got, want)
		}
	}
}
