package grf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var testFiles = map[string][]byte{
	"data/prontera.gat":              bytes.Repeat([]byte("GRAT"), 64),
	"data/test.txt":                  []byte("Hello, GRF!"),
	"data/subfolder/nested/file.txt": []byte("Nested file content"),
	"data/유저인터페이스/map/prontera.bmp":  []byte("BM fake bitmap data"),
	"data/empty.txt":                 {},
}

// writeTestGRF writes testFiles to a temporary archive and returns its path.
func writeTestGRF(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, testFiles); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "test.grf")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	archive, err := Open(writeTestGRF(t))
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	if archive.header.Version != grfVersion {
		t.Errorf("Version = 0x%x, want 0x%x", archive.header.Version, grfVersion)
	}
	if len(archive.fileList) != len(testFiles) {
		t.Errorf("file count = %d, want %d", len(archive.fileList), len(testFiles))
	}
}

func TestList(t *testing.T) {
	archive, err := Open(writeTestGRF(t))
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	files := archive.List()
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Errorf("List not sorted: %q before %q", files[i-1], files[i])
		}
	}
	for name := range testFiles {
		if !archive.Contains(name) {
			t.Errorf("List missing %q", name)
		}
	}
}

func TestContains(t *testing.T) {
	archive, err := Open(writeTestGRF(t))
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	tests := []struct {
		path string
		want bool
	}{
		{"data/test.txt", true},
		{`DATA\TEST.TXT`, true},
		{`data\subfolder\nested\file.txt`, true},
		{"data/유저인터페이스/map/prontera.bmp", true},
		{"nonexistent/file/path.txt", false},
	}
	for _, tt := range tests {
		if got := archive.Contains(tt.path); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRead(t *testing.T) {
	archive, err := Open(writeTestGRF(t))
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	for name, want := range testFiles {
		t.Run(name, func(t *testing.T) {
			data, err := archive.Read(name)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if !bytes.Equal(data, want) {
				t.Errorf("Read = %q, want %q", data, want)
			}
		})
	}

	entry, ok := archive.Stat("data/prontera.gat")
	if !ok {
		t.Fatal("Stat failed for data/prontera.gat")
	}
	if entry.CompressedSize >= entry.UncompressedSize {
		t.Errorf("repetitive entry not compressed: %d >= %d", entry.CompressedSize, entry.UncompressedSize)
	}
	if entry.AlignedSize%8 != 0 {
		t.Errorf("AlignedSize %d not 8-byte aligned", entry.AlignedSize)
	}

	if _, err := archive.Read("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(missing) error = %v, want ErrNotFound", err)
	}
}

func TestOpenErrors(t *testing.T) {
	var valid bytes.Buffer
	if err := Write(&valid, testFiles); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	badMagic := bytes.Clone(valid.Bytes())
	copy(badMagic, "Master of Magix")

	badVersion := bytes.Clone(valid.Bytes())
	badVersion[42] = 0x03

	truncated := valid.Bytes()[:valid.Len()-10]

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", badMagic, ErrInvalidMagic},
		{"bad version", badVersion, ErrUnsupportedVersion},
		{"truncated table", truncated, ErrCorruptTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.grf")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			archive, err := Open(path)
			if err == nil {
				archive.Close()
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Open error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.grf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want os.ErrNotExist", err)
	}
}
