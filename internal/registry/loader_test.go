package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, f := range names {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
}

func TestScanner_ScanFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.gguf", "b.GGUF", "not-model.txt", "model.onnx")
	if err := os.Mkdir(filepath.Join(dir, "sub.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := NewScanner(ExtensionsFor("llama")...).Scan(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 models, got %+v", files)
	}
	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".gguf") || f.Size != 1 {
			t.Fatalf("unexpected file: %+v", f)
		}
	}
}

func TestScanner_ExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	touch(t, home, "x.onnx")
	files, err := NewScanner(".onnx").Scan("~")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(files) != 1 || files[0].Name != "x.onnx" {
		t.Fatalf("unexpected models: %+v", files)
	}
}

func TestScanner_Resolve(t *testing.T) {
	dir := t.TempDir()
	s := NewScanner(ExtensionsFor("bigram")...)

	if _, err := s.Resolve(dir); !errors.Is(err, ErrNoModel) {
		t.Fatalf("empty dir: expected ErrNoModel, got %v", err)
	}
	touch(t, dir, "model.json")
	p, err := s.Resolve(dir)
	if err != nil || p != filepath.Join(dir, "model.json") {
		t.Fatalf("single file: %q, %v", p, err)
	}
	touch(t, dir, "other.json")
	if _, err := s.Resolve(dir); !errors.Is(err, ErrNoModel) {
		t.Fatalf("ambiguous dir: expected ErrNoModel, got %v", err)
	}
	p, err = s.Resolve(filepath.Join(dir, "other.json"))
	if err != nil || filepath.Base(p) != "other.json" {
		t.Fatalf("explicit file: %q, %v", p, err)
	}
	if _, err := s.Resolve(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrNoModel) {
		t.Fatalf("missing: expected ErrNoModel, got %v", err)
	}
	if _, err := s.Resolve(""); !errors.Is(err, ErrNoModel) {
		t.Fatalf("empty path: expected ErrNoModel, got %v", err)
	}
}
