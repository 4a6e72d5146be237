// Package grep searches file contents across remote CodeCommit
// repositories without cloning them.
package grep

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/rog555/ccpr/pkg/codecommit"
	ccerrors "github.com/rog555/ccpr/pkg/errors"
)

var (
	matchColor  = color.New(color.FgGreen)
	repoColor   = color.New(color.FgCyan)
	noMatchText = color.New(color.Faint)
)

// Options configures a search.
type Options struct {
	// Term is the substring to search for.
	Term string
	// Path is the path within the repo, optionally ending in a glob
	// file pattern ("/src/*.go"). "/", "." and ".*" mean everything.
	Path string
	// Repos is the comma separated repo list, possibly with glob
	// patterns expanded against the account's repositories.
	Repos string
	// Branch is the commit specifier to search.
	Branch string
	// Recursive descends into subfolders.
	Recursive bool
	// Insensitive lowercases both term and content before matching.
	Insensitive bool
	// Verbose also reports files without matches.
	Verbose bool
	// Workers bounds concurrent blob fetches.
	Workers int
}

// Grepper runs remote greps against a CodeCommit client.
type Grepper struct {
	client codecommit.Client
	out    io.Writer
	mu     sync.Mutex
}

// New returns a Grepper writing results to out.
func New(client codecommit.Client, out io.Writer) *Grepper {
	return &Grepper{client: client, out: out}
}

// Run performs the search across all matching repositories.
func (g *Grepper) Run(ctx context.Context, opts Options) error {
	if opts.Term == "" {
		return ccerrors.New("search string is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 5
	}

	dir, pattern := SplitPath(opts.Path)

	repos, err := g.expandRepos(ctx, opts.Repos)
	if err != nil {
		return err
	}
	// Repo prefixes only add noise for a single-repo search.
	multi := len(repos) > 1

	for _, repo := range repos {
		if err := g.grepFolder(ctx, opts, repo, dir, pattern, multi); err != nil {
			return err
		}
	}
	return nil
}

// SplitPath normalizes a search path into a folder and a file glob.
func SplitPath(p string) (dir, pattern string) {
	switch p {
	case "", "/", ".", ".*":
		p = "/*"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	dir, pattern = path.Split(p)
	if dir != "/" {
		dir = strings.TrimSuffix(dir, "/")
	}
	if pattern == "" {
		pattern = "*"
	}
	return dir, pattern
}

// expandRepos resolves glob patterns and comma separated lists against the
// account's repositories.
func (g *Grepper) expandRepos(ctx context.Context, repoArg string) ([]string, error) {
	if repoArg == "" {
		return nil, ccerrors.New("repo must be specified")
	}
	if !strings.ContainsAny(repoArg, "*?,") {
		return []string{repoArg}, nil
	}

	all, err := g.client.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	var repos []string
	for _, pat := range strings.Split(repoArg, ",") {
		for _, name := range all {
			if name == pat {
				repos = append(repos, name)
				continue
			}
			if ok, _ := path.Match(pat, name); ok {
				repos = append(repos, name)
			}
		}
	}
	if len(repos) == 0 {
		return nil, ccerrors.Newf("no repos matching %q", repoArg)
	}
	return repos, nil
}

// grepFolder searches one folder level, fanning blob fetches out across
// workers, then recurses into subfolders when requested.
func (g *Grepper) grepFolder(ctx context.Context, opts Options, repo, dir, pattern string, multi bool) error {
	folder, err := g.client.GetFolder(ctx, repo, opts.Branch, dir)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for _, file := range folder.Files {
		if file.Mode != "NORMAL" {
			continue
		}
		if ok, _ := path.Match(pattern, path.Base(file.Path)); !ok {
			g.noMatch(opts, repo, "/"+file.Path, multi)
			continue
		}
		eg.Go(func() error {
			return g.grepFile(ctx, opts, repo, file, multi)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if opts.Recursive {
		for _, sub := range folder.SubFolders {
			if err := g.grepFolder(ctx, opts, repo, sub, pattern, multi); err != nil {
				return err
			}
		}
	}
	return nil
}

// grepFile fetches one blob and prints each line containing the term.
func (g *Grepper) grepFile(ctx context.Context, opts Options, repo string, file codecommit.FolderFile, multi bool) error {
	content, err := g.client.GetBlob(ctx, repo, file.BlobID)
	if err != nil {
		return err
	}

	term := opts.Term
	if opts.Insensitive {
		term = strings.ToLower(term)
	}

	name := "/" + file.Path
	matched := false
	for _, line := range strings.Split(string(content), "\n") {
		haystack := line
		if opts.Insensitive {
			haystack = strings.ToLower(haystack)
		}
		if !strings.Contains(haystack, term) {
			continue
		}
		matched = true
		g.printMatch(opts, repo, name, strings.TrimSpace(line), multi)
	}
	if !matched {
		g.noMatch(opts, repo, name, multi)
	}
	return nil
}

func (g *Grepper) printMatch(opts Options, repo, file, line string, multi bool) {
	highlighted := strings.ReplaceAll(line, opts.Term, matchColor.Sprint(opts.Term))

	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(g.out, "%s%s:    %s\n", g.repoPrefix(repo, multi), file, highlighted)
}

func (g *Grepper) noMatch(opts Options, repo, file string, multi bool) {
	if !opts.Verbose {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(g.out, "%s%s\n", g.repoPrefix(repo, multi), noMatchText.Sprintf("%s:    no match", file))
}

func (g *Grepper) repoPrefix(repo string, multi bool) string {
	if !multi {
		return ""
	}
	return repoColor.Sprint(repo) + ": "
}
