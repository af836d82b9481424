// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/lode/internal/core/domain"
)

// Registry resolves a package name and version constraint to the manifest of
// the best matching published version.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// Match returns the manifest of the best published match for the
	// constraint. The returned manifest includes the distribution descriptor
	// (archive URL + checksum). Returns domain.ErrNoMatchingVersion when no
	// version satisfies the constraint and domain.ErrNotFound when the package
	// does not exist.
	Match(ctx context.Context, name, constraint string) (*domain.Manifest, error)
}
