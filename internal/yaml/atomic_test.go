package yaml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := map[string]any{"batch_size": 25, "notify": true}
	if err := AtomicWrite(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out map[string]any
	if err := ReadFile(path, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out["batch_size"] != 25 {
		t.Errorf("batch_size: got %v", out["batch_size"])
	}
	if out["notify"] != true {
		t.Errorf("notify: got %v", out["notify"])
	}
}

func TestAtomicWrite_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := AtomicWriteRaw(path, []byte("version: 1\n")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := AtomicWriteRaw(path, []byte("version: 2\n")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(content), "version: 2") {
		t.Errorf("content: got %q", content)
	}
}

func TestAtomicWriteRaw_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	err := AtomicWriteRaw(path, []byte("key: [unclosed\n  broken: {{"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("target file should not exist after failed validation")
	}

	// No temp files left behind
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".taskscan-tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestReadFile_Missing(t *testing.T) {
	var out map[string]any
	if err := ReadFile(filepath.Join(t.TempDir(), "absent.yaml"), &out); err == nil {
		t.Error("expected error for missing file")
	}
}
