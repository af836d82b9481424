package archive_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/lode/internal/adapters/archive"
)

type entry struct {
	name    string
	content string
	mode    int64
	dir     bool
}

func buildTarball(t *testing.T, entries []entry) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		if e.dir {
			if err := tw.WriteHeader(&tar.Header{Name: e.name, Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
				t.Fatalf("WriteHeader failed: %v", err)
			}
			continue
		}
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{Name: e.name, Mode: mode, Size: int64(len(e.content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader failed: %v", err)
		}
		if _, err := tw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close failed: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip Close failed: %v", err)
	}
	return &buf
}

func TestExtractTarball_StripsLeadingComponent(t *testing.T) {
	buf := buildTarball(t, []entry{
		{name: "package/", dir: true},
		{name: "package/package.json", content: `{"name":"foo"}`},
		{name: "package/bin/", dir: true},
		{name: "package/bin/foo.js", content: "#!/usr/bin/env node\n", mode: 0o755},
	})

	dir := t.TempDir()
	if err := archive.ExtractTarball(buf, dir); err != nil {
		t.Fatalf("ExtractTarball failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"name":"foo"}` {
		t.Errorf("unexpected content: %s", data)
	}

	info, err := os.Stat(filepath.Join(dir, "bin", "foo.js"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("expected header mode preserved, got %v", info.Mode().Perm())
	}
}

func TestExtractTarball_RejectsTraversal(t *testing.T) {
	buf := buildTarball(t, []entry{
		{name: "package/../../evil", content: "x"},
	})

	if err := archive.ExtractTarball(buf, t.TempDir()); err == nil {
		t.Fatal("expected traversal entry to be rejected")
	}
}

func TestExtractTarball_NotGzip(t *testing.T) {
	if err := archive.ExtractTarball(bytes.NewBufferString("plain"), t.TempDir()); err == nil {
		t.Fatal("expected error for non-gzip stream")
	}
}
