package domain

import "path/filepath"

// NodeModulesDirName is the local dependency directory created under every
// consumer location.
const NodeModulesDirName = "node_modules"

// BinDirName is the executable-lookup directory created inside a consumer's
// local dependency directory.
const BinDirName = ".bin"

// Layout computes the filesystem topology of an installation: where the
// content-addressed store lives and where a consumer's local dependency
// directory and executable links go. All methods are pure path math.
type Layout struct {
	// StoreDir is the root of the content-addressed store.
	StoreDir string
}

// EntryPath returns the content store path for a content key.
func (l Layout) EntryPath(key string) string {
	return filepath.Join(l.StoreDir, key)
}

// NodeModulesDir returns the local dependency directory for a consumer
// located at parentDir.
func (l Layout) NodeModulesDir(parentDir string) string {
	return filepath.Join(parentDir, NodeModulesDirName)
}

// BinDir returns the executable-link directory for a consumer located at
// parentDir.
func (l Layout) BinDir(parentDir string) string {
	return filepath.Join(parentDir, NodeModulesDirName, BinDirName)
}

// DirectLinkPath returns where the direct link for a dependency name lives
// inside the consumer at parentDir.
func (l Layout) DirectLinkPath(parentDir, name string) string {
	return filepath.Join(l.NodeModulesDir(parentDir), name)
}

// BinLinkPath returns where the bin link for an executable name lives inside
// the consumer at parentDir.
func (l Layout) BinLinkPath(parentDir, exeName string) string {
	return filepath.Join(l.BinDir(parentDir), exeName)
}
