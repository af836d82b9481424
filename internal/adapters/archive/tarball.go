// Package archive implements streaming extraction of gzip-compressed package
// tarballs.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// maxPayloadBytes is the upper bound on extracted payload size (512 MB).
// Prevents decompression bombs from untrusted archives.
const maxPayloadBytes = 512 << 20

var (
	errPathTraversal = zerr.New("archive entry escapes extraction directory")
	errTooLarge      = zerr.New("archive payload exceeds size limit")
)

// ExtractTarball streams a gzip-compressed tarball into dir. Registry
// tarballs nest everything under a single top-level directory (conventionally
// "package/"); that leading component is stripped. Entries that would escape
// dir are rejected.
func ExtractTarball(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, "failed to open gzip stream")
	}
	defer gz.Close() //nolint:errcheck // Best effort close in defer

	tr := tar.NewReader(gz)
	remaining := int64(maxPayloadBytes)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read tar entry")
		}

		name := stripLeadingComponent(hdr.Name)
		if name == "" {
			continue
		}

		dest, err := securePath(dir, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return zerr.Wrap(err, "failed to create directory")
			}
		case tar.TypeReg:
			n, err := writeFile(dest, tr, hdr, remaining)
			if err != nil {
				return err
			}
			remaining -= n
		case tar.TypeSymlink:
			resolved := filepath.Join(filepath.Dir(dest), hdr.Linkname)
			if !strings.HasPrefix(resolved, filepath.Clean(dir)+string(os.PathSeparator)) {
				return zerr.With(errPathTraversal, "entry", hdr.Name)
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return zerr.Wrap(err, "failed to create link directory")
			}
			if err := os.Symlink(hdr.Linkname, dest); err != nil {
				return zerr.Wrap(err, "failed to create archive symlink")
			}
		default:
			// Hard links, devices and the like do not occur in package
			// tarballs; skip them rather than fail the whole archive.
			continue
		}
	}
}

func writeFile(dest string, tr *tar.Reader, hdr *tar.Header, remaining int64) (int64, error) {
	if hdr.Size > remaining {
		return 0, zerr.With(errTooLarge, "entry", hdr.Name)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, zerr.Wrap(err, "failed to create parent directory")
	}

	mode := os.FileMode(hdr.Mode).Perm() //nolint:gosec // Tar mode fits in permission bits
	if mode == 0 {
		mode = 0o644
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode) //nolint:gosec // Path validated by securePath
	if err != nil {
		return 0, zerr.Wrap(err, "failed to create file")
	}

	n, err := io.Copy(f, io.LimitReader(tr, remaining))
	if err != nil {
		_ = f.Close()
		return n, zerr.Wrap(err, "failed to write file contents")
	}
	if err := f.Close(); err != nil {
		return n, zerr.Wrap(err, "failed to close file")
	}
	return n, nil
}

// stripLeadingComponent removes the single top-level directory every package
// tarball wraps its files in.
func stripLeadingComponent(name string) string {
	name = strings.TrimPrefix(name, "./")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// securePath joins name onto dir, rejecting entries that would land outside
// dir.
func securePath(dir, name string) (string, error) {
	dest := filepath.Join(dir, name)
	if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", zerr.With(errPathTraversal, "entry", name)
	}
	return dest, nil
}
