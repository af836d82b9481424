package ports

// ContentStore owns a directory of content-addressed package payloads keyed by
// checksum. Payloads are immutable once committed: committing the same key
// twice is a no-op for the loser.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ContentStore interface {
	// Path returns the store path for a content key. It does not check
	// existence.
	Path(key string) string

	// Has reports whether a payload is present under the key.
	Has(key string) bool

	// Extract makes the payload for the key available at targetPath. When
	// targetPath is the store path itself this is a presence check; otherwise
	// the payload is cloned (hard links, copy fallback). Returns an error
	// matching domain.ErrNotFound when the key is absent.
	Extract(targetPath, key string) error

	// Stage opens a staging area for a new payload. The caller fills the
	// staging directory, computes the content key itself, and either commits
	// or discards. The store never computes integrity; it only stores and
	// serves by key.
	Stage() (Staging, error)
}

// Staging is an in-progress content store write.
type Staging interface {
	// Dir is the temporary directory to populate.
	Dir() string

	// Commit atomically publishes the staged payload under the key and
	// returns its final store path. Losing a concurrent commit race for the
	// same key discards the staged copy and still succeeds.
	Commit(key string) (string, error)

	// Discard removes the staged payload.
	Discard() error
}
