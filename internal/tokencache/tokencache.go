// Package tokencache persists bearer tokens per username so a successful
// browser login can be reused across runs. The backing store is a single
// JSON object mapping username -> {token, timestamp}; the whole file is
// rewritten on every change and swapped in with a rename.
package tokencache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const fileName = "trackman_tokens.json"

// Record is one cached token. Timestamp is Unix seconds at save time,
// kept as a float so files written by older tooling stay readable.
type Record struct {
	Token     string  `json:"token"`
	Timestamp float64 `json:"timestamp"`
}

// IssuedAt converts the stored timestamp back to a time.Time.
func (r Record) IssuedAt() time.Time {
	sec := int64(r.Timestamp)
	nsec := int64((r.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// Cache reads and writes the token file. Expired records are filtered on
// load, not deleted; a record only disappears from disk via Invalidate
// or by being overwritten.
type Cache struct {
	dir string
	ttl time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func New(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl, now: time.Now}
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, fileName)
}

// Load returns every fresh record keyed by username. Any read or parse
// problem degrades to an empty map; callers never see an error here.
func (c *Cache) Load() map[string]Record {
	data, err := os.ReadFile(c.path())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("token cache unreadable, treating as empty", "path", c.path(), "error", err)
		}
		return map[string]Record{}
	}

	var all map[string]Record
	if err := json.Unmarshal(data, &all); err != nil {
		slog.Warn("token cache malformed, treating as empty", "path", c.path(), "error", err)
		return map[string]Record{}
	}

	fresh := make(map[string]Record, len(all))
	cutoff := c.now().Add(-c.ttl)
	for username, rec := range all {
		if rec.Token == "" {
			continue
		}
		if rec.IssuedAt().Before(cutoff) {
			continue
		}
		fresh[username] = rec
	}
	return fresh
}

// Lookup returns the fresh record for username, if any.
func (c *Cache) Lookup(username string) (Record, bool) {
	rec, ok := c.Load()[username]
	return rec, ok
}

// Usernames lists users with a fresh token, sorted for stable display.
func (c *Cache) Usernames() []string {
	records := c.Load()
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save upserts the token for username with the current timestamp,
// preserving every other entry. The file is replaced atomically.
func (c *Cache) Save(username, token string) error {
	if username == "" || token == "" {
		return fmt.Errorf("save token: username and token required")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	// Re-read raw (without freshness filtering) so stale entries are
	// preserved rather than silently dropped on an unrelated save.
	all := map[string]Record{}
	if data, err := os.ReadFile(c.path()); err == nil {
		_ = json.Unmarshal(data, &all)
	}

	all[username] = Record{
		Token:     token,
		Timestamp: float64(c.now().UnixNano()) / float64(time.Second),
	}
	return c.writeAll(all)
}

// Invalidate removes one user's token, or the entire store when username
// is empty. It reports whether anything was actually removed; a missing
// username is not an error.
func (c *Cache) Invalidate(username string) (bool, error) {
	if username == "" {
		err := os.Remove(c.path())
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("remove token file: %w", err)
		}
		return true, nil
	}

	data, err := os.ReadFile(c.path())
	if err != nil {
		return false, nil
	}
	all := map[string]Record{}
	if err := json.Unmarshal(data, &all); err != nil {
		return false, nil
	}
	if _, ok := all[username]; !ok {
		return false, nil
	}
	delete(all, username)
	if err := c.writeAll(all); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) writeAll(all map[string]Record) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, fileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close token file: %w", err)
	}
	if err := os.Rename(tmpName, c.path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}
