package ports

import "context"

// Downloader streams a remote package archive into the content store while
// folding a checksum over the same bytes.
//
//go:generate go run go.uber.org/mock/mockgen -source=downloader.go -destination=mocks/mock_downloader.go -package=mocks
type Downloader interface {
	// Download fetches the archive, extracts it into a staging area and
	// commits it under the actual digest of the archive bytes, which it
	// returns. When expectedSum is non-empty and differs from the actual
	// digest, the staged payload is discarded and an error matching
	// domain.ErrCorruptedPackage is returned.
	Download(ctx context.Context, archiveURL, expectedSum string) (key string, err error)
}
