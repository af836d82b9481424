package domain

import "go.trai.ch/zerr"

var (
	// ErrNotFound signals an expected miss: a local dependency link, a content
	// store entry, or an install path that does not exist yet. Callers match it
	// with errors.Is and fall back (registry lookup, download, fresh extraction).
	ErrNotFound = zerr.New("not found")

	// ErrCorruptedPackage is returned when a downloaded archive's checksum does
	// not match the checksum declared by the registry. Fatal for that fetch.
	ErrCorruptedPackage = zerr.New("corrupted package")

	// ErrMalformedManifest is returned when a package.json document cannot be
	// decoded into a Manifest.
	ErrMalformedManifest = zerr.New("malformed manifest")

	// ErrMissingDist is returned when a registry manifest lacks the distribution
	// descriptor (tarball URL or checksum) needed to fetch it.
	ErrMissingDist = zerr.New("missing distribution metadata")

	// ErrNoMatchingVersion is returned when no published version of a package
	// satisfies the requested constraint.
	ErrNoMatchingVersion = zerr.New("no matching version")
)
