package payload

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/patrickudo2004/parchments/core/ingest"
)

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	w := gzip.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
}

func writeXZ(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	w, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	want := []byte(`{"books": []}`)

	plain := filepath.Join(dir, "bible.json")
	if err := os.WriteFile(plain, want, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	gzPath := filepath.Join(dir, "bible.json.gz")
	writeGzip(t, gzPath, want)
	xzPath := filepath.Join(dir, "bible.json.xz")
	writeXZ(t, xzPath, want)

	for _, path := range []string{plain, gzPath, xzPath} {
		got, err := ReadFile(path)
		if err != nil {
			t.Errorf("ReadFile(%s): %v", filepath.Base(path), err)
			continue
		}
		if string(got) != string(want) {
			t.Errorf("ReadFile(%s) = %q, want %q", filepath.Base(path), got, want)
		}
	}
}

func TestReadFileRejectsCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json.gz")
	if err := os.WriteFile(path, []byte("not gzip at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Error("corrupt gzip accepted")
	}
}

func TestGuessKind(t *testing.T) {
	tests := []struct {
		path string
		want ingest.Kind
		ok   bool
	}{
		{"kjv.json", ingest.KindJSON, true},
		{"kjv.json.gz", ingest.KindJSON, true},
		{"43-JHN.usfm", ingest.KindUSFM, true},
		{"43-JHN.sfm", ingest.KindUSFM, true},
		{"web.osis", ingest.KindOSIS, true},
		{"web.xml.xz", ingest.KindOSIS, true},
		{"README.md", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := GuessKind(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("GuessKind(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}
