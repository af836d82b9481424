package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// metaCache persists packuments on disk so repeated installs skip the
// registry round trip. Entries older than maxAge are refetched.
type metaCache struct {
	dir    string
	maxAge time.Duration
}

type metaEntry struct {
	FetchedAt time.Time  `json:"fetchedAt"`
	Packument *packument `json:"packument"`
}

func newMetaCache(dir string, maxAge time.Duration) (*metaCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, zerr.Wrap(err, "failed to create metadata cache directory")
	}
	return &metaCache{dir: dir, maxAge: maxAge}, nil
}

// path hashes the package name so scoped names like @scope/pkg never turn
// into nested directories.
func (m *metaCache) path(name string) string {
	return filepath.Join(m.dir, fmt.Sprintf("%x.json", xxhash.Sum64String(name)))
}

func (m *metaCache) get(name string) (*packument, bool) {
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		return nil, false
	}

	var entry metaEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Packument == nil || time.Since(entry.FetchedAt) > m.maxAge {
		return nil, false
	}
	return entry.Packument, true
}

// put writes through a temp file so a crashed process never leaves a torn
// entry behind. Failures are swallowed, the cache is an optimization.
func (m *metaCache) put(name string, doc *packument) {
	data, err := json.Marshal(metaEntry{FetchedAt: time.Now(), Packument: doc})
	if err != nil {
		return
	}

	path := m.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
	}
}
