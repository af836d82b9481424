package fs

import (
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/lode/internal/core/domain"
	"go.trai.ch/zerr"
)

// ManifestFilename is the manifest document inside every package directory.
const ManifestFilename = "package.json"

// ReadManifest reads and decodes the manifest of the package installed at
// dir. Returns an error matching domain.ErrNotFound when no manifest exists
// and domain.ErrMalformedManifest when it cannot be decoded.
func ReadManifest(dir string) (*domain.Manifest, error) {
	path := filepath.Join(dir, ManifestFilename)
	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from an install location
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "manifest absent"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMalformedManifest.Error()), "path", path)
	}
	return &m, nil
}
