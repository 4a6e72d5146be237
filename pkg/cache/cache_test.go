package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestKeyStableAndDistinct(t *testing.T) {
	k1 := Key("ListRepositories", map[string]string{"filter": "infra"})
	k2 := Key("ListRepositories", map[string]string{"filter": "infra"})
	k3 := Key("ListRepositories", map[string]string{"filter": "web"})

	if k1 != k2 {
		t.Errorf("same params produced different keys: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("different params produced the same key")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New(t.TempDir())
	key := Key("GetPullRequest", "42")

	in := payload{Name: "fix-login", Count: 2}
	if err := c.Put(key, in, time.Minute); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	var out payload
	if !c.Get(key, &out) {
		t.Fatal("Get() = false, want hit")
	}
	if out != in {
		t.Errorf("Get() = %+v, want %+v", out, in)
	}
}

func TestGetMissesOnZeroTTL(t *testing.T) {
	c := New(t.TempDir())
	key := Key("GetBlob", "abc")

	if err := c.Put(key, payload{Name: "x"}, 0); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	var out payload
	if c.Get(key, &out) {
		t.Error("Get() = true, want miss for zero-TTL Put")
	}
}

func TestExpiredEntryRemoved(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	key := Key("ListPullRequests", "repo")

	if err := c.Put(key, payload{Name: "pr"}, time.Minute); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	// Move the clock past expiry.
	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	var out payload
	if c.Get(key, &out) {
		t.Error("Get() = true, want miss for expired entry")
	}
	if _, err := os.Stat(filepath.Join(dir, key+fileSuffix)); !os.IsNotExist(err) {
		t.Error("expired entry should be removed on access")
	}
}

func TestPruneRemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	fresh := Key("GetFolder", "keep")
	stale := Key("GetFolder", "drop")
	if err := c.Put(fresh, payload{}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(stale, payload{}, time.Millisecond); err != nil {
		t.Fatal(err)
	}

	// Unrelated files are left alone.
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	c.Prune()

	if _, err := os.Stat(filepath.Join(dir, fresh+fileSuffix)); err != nil {
		t.Error("fresh entry should survive Prune()")
	}
	if _, err := os.Stat(filepath.Join(dir, stale+fileSuffix)); !os.IsNotExist(err) {
		t.Error("stale entry should be removed by Prune()")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("non-cache file should survive Prune()")
	}
}
