package domain

import "time"

// Settings holds the static, process-wide configuration the pipeline reads:
// the store root and HTTP transport options. Read-only after load.
type Settings struct {
	// StoreDir is the root directory of the content-addressed store.
	StoreDir string

	// MetaCacheDir is the directory of the on-disk registry metadata cache.
	MetaCacheDir string

	// RegistryURL is the base URL of the package registry.
	RegistryURL string

	// MetaCacheMaxAge bounds how long cached registry metadata stays fresh.
	MetaCacheMaxAge time.Duration

	// HTTPTimeout bounds every registry and archive request.
	HTTPTimeout time.Duration

	// HTTPHeaders are extra headers sent on every outgoing request.
	HTTPHeaders map[string]string
}
