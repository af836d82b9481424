// Package domain contains the core domain models for dependency resolution
// and installation.
package domain

// DependencyRequest represents an edge to resolve: a package name and version
// constraint declared by some consumer's manifest.
type DependencyRequest struct {
	// Name is the package name as declared (e.g., "left-pad").
	Name InternedString

	// Constraint is the declared version constraint (e.g., "1.0.0", "^2.1.0").
	Constraint InternedString
}

// ResolvedDependency represents a resolved edge: the package a request points
// to, together with the location of the consumer that requested it. It is
// immutable after creation.
type ResolvedDependency struct {
	// Name is the import name the package is exposed under inside its parent's
	// dependency directory.
	Name InternedString

	// ParentDir is the install directory of the consumer. The direct link for
	// this dependency lives in ParentDir's local node_modules.
	ParentDir string

	// Target is the content key addressing the physical payload: the registry
	// checksum for registry-sourced packages, or the reused on-disk identity
	// when an existing local installation was followed.
	Target InternedString

	// Manifest is the package's parsed manifest document.
	Manifest *Manifest

	// Local reports whether the dependency was resolved from an existing local
	// installation rather than a registry lookup.
	Local bool
}
