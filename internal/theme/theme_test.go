package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	input := `Name: Midnight
CanvasBackground: #101018
Selection: #3380FFCC
# a comment
UnknownKey: #FFFFFF
`
	th, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "Midnight" {
		t.Errorf("Name = %q", th.Name)
	}
	if th.CanvasBackground != (color.RGBA{16, 16, 24, 255}) {
		t.Errorf("CanvasBackground = %v", th.CanvasBackground)
	}
	if th.Selection != (color.RGBA{51, 128, 255, 204}) {
		t.Errorf("Selection = %v", th.Selection)
	}
	// Keys not present keep their defaults.
	if th.ButtonText != Default().ButtonText {
		t.Errorf("ButtonText = %v, want default", th.ButtonText)
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Selection: notacolor\n")); err == nil {
		t.Fatal("expected error for malformed color")
	}
	if _, err := Parse(strings.NewReader("Selection: #12345\n")); err == nil {
		t.Fatal("expected error for wrong hex length")
	}
}

func TestLoaderEmptyNameIsDefault(t *testing.T) {
	th, err := (&Loader{}).Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Name != "Default" {
		t.Errorf("Name = %q", th.Name)
	}
}

func TestLoaderFindsThemeInConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dusk.theme")
	if err := os.WriteFile(path, []byte("Name: Dusk\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}
	th, err := l.Load("dusk")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Name != "Dusk" {
		t.Errorf("Name = %q", th.Name)
	}

	if _, err := l.Load("nonexistent"); err == nil {
		t.Fatal("expected error for missing theme")
	}
}

func TestLoaderFallsBackToBuiltinThemes(t *testing.T) {
	l := &Loader{ConfigDir: t.TempDir(), SystemDir: t.TempDir()}
	for name, want := range map[string]string{
		"dark":          "Dark",
		"light":         "Light",
		"high_contrast": "High Contrast",
	} {
		th, err := l.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if th.Name != want {
			t.Errorf("Load(%q).Name = %q, want %q", name, th.Name, want)
		}
	}
}
