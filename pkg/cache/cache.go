// Package cache implements the short-lived API response cache.
//
// Responses are stored as JSON files under a cache directory (by default
// $TMPDIR/ccpr), keyed by operation name and a digest of the request
// parameters. Entries carry their own expiry; expired files are pruned
// opportunistically on access. A zero TTL bypasses the cache entirely, which
// is how mutating calls opt out.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const fileSuffix = ".cache"

// Cache handles persistence of API responses.
type Cache struct {
	dir string
	now func() time.Time
}

// entry is the on-disk envelope around a cached payload.
type entry struct {
	Expires time.Time       `json:"expires"`
	Payload json.RawMessage `json:"payload"`
}

// New creates a cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{dir: dir, now: time.Now}
}

// Key derives the cache key for an operation and its request parameters.
func Key(operation string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(operation)
	}
	sum := sha256.Sum256(data)
	return operation + "-" + hex.EncodeToString(sum[:])
}

// Get loads a cached response into out. It returns false when the entry is
// missing, expired, or unreadable.
func (c *Cache) Get(key string, out any) bool {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if c.now().After(e.Expires) {
		_ = os.Remove(c.path(key))
		return false
	}

	return json.Unmarshal(e.Payload, out) == nil
}

// Put stores a response with the given TTL. A TTL of zero or less is a no-op.
func (c *Cache) Put(key string, val any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(val)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{Expires: c.now().Add(ttl), Payload: payload})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path(key), data, 0o644)
}

// Prune removes expired cache files. Removal races with concurrent
// invocations are ignored.
func (c *Cache) Prune() {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != fileSuffix {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil || c.now().After(e.Expires) {
			_ = os.Remove(path)
		}
	}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+fileSuffix)
}
