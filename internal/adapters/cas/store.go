// Package cas implements the content-addressed store of extracted package
// payloads.
package cas

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/lode/internal/core/domain"
	"go.trai.ch/lode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ContentStore = (*Store)(nil)

const stagingDirName = ".tmp"

// Store implements ports.ContentStore on a flat directory: one sub-directory
// per content key, plus a staging area for in-progress writes.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory, creating the root
// and staging area if needed.
func NewStore(root string) (*Store, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(filepath.Join(root, stagingDirName), 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create store root")
	}
	return &Store{root: root}, nil
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the store path for a content key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.root, key)
}

// Has reports whether a payload is present under the key.
func (s *Store) Has(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Extract makes the payload for the key available at targetPath. The payload
// is cloned with hard links where possible so the store copy can never be
// mutated through a write that replaces files, and extraction of an
// already-present target is idempotent.
func (s *Store) Extract(targetPath, key string) error {
	src := s.Path(key)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrNotFound, "store entry absent"), "key", key)
		}
		return zerr.With(zerr.Wrap(err, "failed to stat store entry"), "key", key)
	}

	if filepath.Clean(targetPath) == src {
		return nil
	}
	return clone(src, targetPath)
}

// clone replicates a payload directory using hard links, falling back to a
// byte copy across filesystems. Existing files at the destination are reused.
func clone(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.Wrap(err, "failed to walk store entry")
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zerr.Wrap(err, "failed to relativize store path")
		}
		dest := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return zerr.Wrap(err, "failed to stat store directory")
			}
			if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
				return zerr.Wrap(err, "failed to create directory")
			}
			return nil
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return zerr.Wrap(err, "failed to read payload symlink")
			}
			if err := os.Symlink(target, dest); err != nil && !errors.Is(err, fs.ErrExist) {
				return zerr.Wrap(err, "failed to clone payload symlink")
			}
			return nil
		default:
			if err := os.Link(path, dest); err == nil || errors.Is(err, fs.ErrExist) {
				return nil
			}
			return copyFile(path, dest)
		}
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return zerr.Wrap(err, "failed to stat source file")
	}

	in, err := os.Open(src) //nolint:gosec // Path is inside the store root
	if err != nil {
		return zerr.Wrap(err, "failed to open source file")
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // Destination is caller-controlled
	if err != nil {
		return zerr.Wrap(err, "failed to create destination file")
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.Wrap(err, "failed to copy file contents")
	}
	if err := out.Close(); err != nil {
		return zerr.Wrap(err, "failed to close destination file")
	}
	return nil
}

// Stage opens a staging directory for a new payload write.
func (s *Store) Stage() (ports.Staging, error) {
	dir, err := os.MkdirTemp(filepath.Join(s.root, stagingDirName), "stage-")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create staging directory")
	}
	return &staging{store: s, dir: dir}, nil
}

type staging struct {
	store *Store
	dir   string
}

// Dir returns the staging directory to populate.
func (st *staging) Dir() string {
	return st.dir
}

// Commit atomically publishes the staged payload under the key. Concurrent
// duplicate downloads race to commit under the same digest key; the loser
// discards its copy and reports success, so commits are idempotent.
func (st *staging) Commit(key string) (string, error) {
	dest := st.store.Path(key)

	if st.store.Has(key) {
		return dest, st.Discard()
	}

	if err := os.Rename(st.dir, dest); err != nil {
		// Rename over an existing directory fails; a concurrent commit of
		// the same key got there first.
		if st.store.Has(key) {
			return dest, st.Discard()
		}
		return "", zerr.With(zerr.Wrap(err, "failed to commit store entry"), "key", key)
	}
	return dest, nil
}

// Discard removes the staged payload.
func (st *staging) Discard() error {
	if err := os.RemoveAll(st.dir); err != nil {
		return zerr.Wrap(err, "failed to discard staging directory")
	}
	return nil
}
