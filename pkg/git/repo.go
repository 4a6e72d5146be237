// Package git derives the implicit repository context from the local working
// directory: repository name, current branch, and last commit subject.
package git

import (
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	ccprerrors "github.com/rog555/ccpr/pkg/errors"
)

// RepoEnvVar overrides repository detection when set.
const RepoEnvVar = "CCPR_REPO"

// Mainline branches that must not be used as a PR source.
var mainlineBranches = map[string]bool{"main": true, "master": true}

// IsMainline reports whether branch is a mainline branch (main or master).
func IsMainline(branch string) bool {
	return mainlineBranches[branch]
}

// CurrentRepo returns the repository name for the current working directory.
// The CCPR_REPO environment variable takes precedence; otherwise the name of
// the git toplevel directory is used. Returns "" when not in a repository.
func CurrentRepo() string {
	if repo := os.Getenv(RepoEnvVar); repo != "" {
		return repo
	}

	root, err := worktreeRoot()
	if err != nil {
		return ""
	}
	return filepath.Base(root)
}

// CurrentBranch returns the branch checked out in the current repository.
func CurrentBranch() (string, error) {
	repo, err := open()
	if err != nil {
		return "", ccprerrors.NewGitErrorWithCause("CurrentBranch", "must be in a repo directory", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", ccprerrors.NewGitErrorWithCause("CurrentBranch", "no HEAD found", err)
	}
	if !head.Name().IsBranch() {
		return "", ccprerrors.NewGitError("CurrentBranch", "not on a branch (detached HEAD state)")
	}

	return head.Name().Short(), nil
}

// SourceBranch returns the current branch, rejecting mainline branches.
// PRs are created from feature branches only.
func SourceBranch() (string, error) {
	branch, err := CurrentBranch()
	if err != nil {
		return "", err
	}
	if IsMainline(branch) {
		return "", ccprerrors.NewGitError("SourceBranch", "branch must not be main or master")
	}
	return branch, nil
}

// LastCommitMessage returns the subject line of the last commit on the
// current branch, or "" when it cannot be determined.
func LastCommitMessage() string {
	repo, err := open()
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return ""
	}

	subject, _, _ := strings.Cut(commit.Message, "\n")
	return strings.TrimSpace(subject)
}

// open opens the repository containing the current working directory,
// searching parent directories for the .git directory.
func open() (*gogit.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return gogit.PlainOpenWithOptions(cwd, &gogit.PlainOpenOptions{DetectDotGit: true})
}

// worktreeRoot returns the absolute path of the git toplevel directory.
func worktreeRoot() (string, error) {
	repo, err := open()
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}
