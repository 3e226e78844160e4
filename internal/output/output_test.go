package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveSaveDirPrefersConfigured(t *testing.T) {
	dir := t.TempDir()
	if got := ResolveSaveDir(dir); got != dir {
		t.Errorf("ResolveSaveDir = %q, want %q", got, dir)
	}
}

func TestResolveSaveDirIgnoresMissingOverride(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	got := ResolveSaveDir(missing)
	if got == missing {
		t.Errorf("ResolveSaveDir used an unusable override %q", got)
	}
	if got == "" {
		t.Error("ResolveSaveDir returned empty path")
	}
}

func TestBuildOutputPathExtensionFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///tmp/portal/shot.png", ".png"},
		{"file:///tmp/portal/Shot.JPG", ".jpg"},
		{"file:///tmp/portal/shot%20copy.webp", ".webp"},
		{"file:///tmp/portal/noext", ".png"},
		{"", ".png"},
	}
	for _, tt := range tests {
		got := BuildOutputPath("/saves", tt.uri)
		if !strings.HasSuffix(got, tt.want) {
			t.Errorf("BuildOutputPath(%q) = %q, want suffix %q", tt.uri, got, tt.want)
		}
		base := filepath.Base(got)
		if !strings.HasPrefix(base, "Screenshot_") {
			t.Errorf("BuildOutputPath(%q) = %q, want Screenshot_ prefix", tt.uri, base)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "Screenshot_test.png")
	if err := Write(dir, dest, []byte("pixels")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "pixels" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteRefusesToClobber(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "Screenshot_test.png")
	if err := os.WriteFile(dest, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Write(dir, dest, []byte("new")); err == nil {
		t.Fatal("expected error for existing file")
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "original" {
		t.Errorf("existing file was modified: %q", data)
	}
}

func TestWriteRejectsEscapingDestination(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "escape.png")
	err := Write(dir, outside, []byte("pixels"))
	if !errors.Is(err, ErrOutsideSaveDir) {
		t.Fatalf("expected ErrOutsideSaveDir, got %v", err)
	}
	if _, statErr := os.Stat(outside); !os.IsNotExist(statErr) {
		t.Error("validation failure must happen before any write")
	}

	traversal := filepath.Join(dir, "..", "escape.png")
	if err := Write(dir, traversal, []byte("pixels")); !errors.Is(err, ErrOutsideSaveDir) {
		t.Fatalf("expected ErrOutsideSaveDir for traversal, got %v", err)
	}
}

func TestWriteAllowsSubdirectoryOfSaveDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "shots")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Write(dir, filepath.Join(sub, "a.png"), []byte("x")); err != nil {
		t.Fatalf("Write into subdirectory: %v", err)
	}
}
