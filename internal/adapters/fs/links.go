// Package fs implements the filesystem primitives the pipeline relies on:
// relative symlinks, manifest reads and executable permission bits.
package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/lode/internal/core/domain"
	"go.trai.ch/zerr"
)

// Symlink creates a symlink at linkPath pointing to targetPath. The stored
// link target is relative to the link's own directory so the tree stays
// relocatable. An existing link at linkPath is replaced.
func Symlink(linkPath, targetPath string) error {
	dir := filepath.Dir(linkPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerr.Wrap(err, "failed to create link directory")
	}

	rel, err := filepath.Rel(dir, targetPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to relativize link target"), "target", targetPath)
	}

	if err := os.Remove(linkPath); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to replace existing link"), "link", linkPath)
	}

	if err := os.Symlink(rel, linkPath); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create symlink"), "link", linkPath)
	}
	return nil
}

// ReadLink resolves the symlink at linkPath to an absolute target path.
// Returns an error matching domain.ErrNotFound when no link exists there.
func ReadLink(linkPath string) (string, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrNotFound, "link absent"), "link", linkPath)
		}
		return "", zerr.With(zerr.Wrap(err, "failed to read link"), "link", linkPath)
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(linkPath), target)
	}
	return filepath.Clean(target), nil
}
