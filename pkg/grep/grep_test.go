package grep

import (
	"bytes"
	"context"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rog555/ccpr/pkg/codecommit"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// fakeClient serves a small in-memory repository tree.
type fakeClient struct {
	codecommit.Client

	repos   []string
	folders map[string]map[string]*codecommit.Folder // repo -> folder path
	blobs   map[string][]byte
}

func (f *fakeClient) ListRepositories(ctx context.Context) ([]string, error) {
	return f.repos, nil
}

func (f *fakeClient) GetFolder(ctx context.Context, repo, commitSpec, path string) (*codecommit.Folder, error) {
	folder, ok := f.folders[repo][path]
	if !ok {
		return &codecommit.Folder{}, nil
	}
	return folder, nil
}

func (f *fakeClient) GetBlob(ctx context.Context, repo, blobID string) ([]byte, error) {
	return f.blobs[blobID], nil
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		repos: []string{"billing-api", "billing-web", "infra"},
		folders: map[string]map[string]*codecommit.Folder{
			"billing-api": {
				"/": &codecommit.Folder{
					SubFolders: []string{"/src"},
					Files: []codecommit.FolderFile{
						{Path: "README.md", BlobID: "b1", Mode: "NORMAL"},
						{Path: "link", BlobID: "b4", Mode: "SYMLINK"},
					},
				},
				"/src": &codecommit.Folder{
					Files: []codecommit.FolderFile{
						{Path: "src/main.go", BlobID: "b2", Mode: "NORMAL"},
						{Path: "src/util.go", BlobID: "b3", Mode: "NORMAL"},
					},
				},
			},
			"billing-web": {
				"/": &codecommit.Folder{
					Files: []codecommit.FolderFile{
						{Path: "index.js", BlobID: "b5", Mode: "NORMAL"},
					},
				},
			},
		},
		blobs: map[string][]byte{
			"b1": []byte("# Billing\nuses TODO markers\n"),
			"b2": []byte("package main\n// TODO: retry\nfunc main() {}\n"),
			"b3": []byte("package main\n"),
			"b5": []byte("// todo later\n"),
		},
	}
}

func runGrep(t *testing.T, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	g := New(newFakeClient(), &buf)
	require.NoError(t, g.Run(context.Background(), opts))
	return buf.String()
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in, dir, pattern string
	}{
		{"/", "/", "*"},
		{".", "/", "*"},
		{".*", "/", "*"},
		{"/src/*.go", "/src", "*.go"},
		{"src/*.go", "/src", "*.go"},
		{"/README.md", "/", "README.md"},
	}
	for _, tt := range tests {
		dir, pattern := SplitPath(tt.in)
		assert.Equal(t, tt.dir, dir, "dir for %q", tt.in)
		assert.Equal(t, tt.pattern, pattern, "pattern for %q", tt.in)
	}
}

func TestRunMatchesWholeLines(t *testing.T) {
	out := runGrep(t, Options{Term: "TODO", Path: "/", Repos: "billing-api"})
	assert.Contains(t, out, "/README.md:    uses TODO markers")
	assert.NotContains(t, out, "billing-api:")
}

func TestRunRecursive(t *testing.T) {
	out := runGrep(t, Options{Term: "TODO", Path: "/", Repos: "billing-api", Recursive: true})
	assert.Contains(t, out, "/src/main.go:    // TODO: retry")
}

func TestRunFilePattern(t *testing.T) {
	out := runGrep(t, Options{Term: "package", Path: "/src/*.go", Repos: "billing-api"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{
		"/src/main.go:    package main",
		"/src/util.go:    package main",
	}, lines)
}

func TestRunCaseInsensitive(t *testing.T) {
	out := runGrep(t, Options{Term: "TODO", Path: "/", Repos: "billing-web"})
	assert.Empty(t, out)

	out = runGrep(t, Options{Term: "TODO", Path: "/", Repos: "billing-web", Insensitive: true})
	assert.Contains(t, out, "/index.js")
}

func TestRunRepoGlobAddsPrefix(t *testing.T) {
	out := runGrep(t, Options{Term: "TODO", Path: "/", Repos: "billing-*", Insensitive: true})
	assert.Contains(t, out, "billing-api: /README.md")
	assert.Contains(t, out, "billing-web: /index.js")
}

func TestRunVerboseReportsNoMatch(t *testing.T) {
	out := runGrep(t, Options{
		Term: "TODO", Path: "/src/*.go", Repos: "billing-api", Verbose: true,
	})
	assert.Contains(t, out, "/src/util.go:    no match")
}

func TestRunUnknownRepoPattern(t *testing.T) {
	var buf bytes.Buffer
	g := New(newFakeClient(), &buf)
	err := g.Run(context.Background(), Options{Term: "x", Path: "/", Repos: "nothing-*"})
	require.Error(t, err)
}

func TestRunSkipsSymlinks(t *testing.T) {
	out := runGrep(t, Options{Term: "TODO", Path: "/", Repos: "billing-api", Verbose: true})
	assert.NotContains(t, out, "/link")
}
