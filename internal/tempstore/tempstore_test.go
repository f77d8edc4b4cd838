package tempstore

import (
	"os"
	"testing"
)

func TestCreateWritesDataAndCleansUpOnClose(t *testing.T) {
	dir := t.TempDir()
	data := []byte("pdf bytes")

	f, err := Create(dir, "boleto", data)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", f.Path(), err)
	}
	if string(got) != string(data) {
		t.Fatalf("file content = %q, want %q", got, data)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(f.Path()); !os.IsNotExist(err) {
		t.Fatalf("file still exists after Close(): %v", err)
	}
}

func TestCloseIsSafeToCallTwice(t *testing.T) {
	dir := t.TempDir()
	f, err := Create(dir, "boleto", []byte("data"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close() error = %v, want nil", err)
	}
}

func TestCreateFailsForUnwritableDir(t *testing.T) {
	if _, err := Create("/nonexistent/path/that/does/not/exist", "boleto", []byte("x")); err == nil {
		t.Fatal("Create() error = nil for a nonexistent directory, want an error")
	}
}
