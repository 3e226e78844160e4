package main

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/example/screenux/internal/capture"
	"github.com/example/screenux/internal/imageio"
)

func TestSnapshotRegionCropToFile(t *testing.T) {
	original := captureScreenshotFn
	captureScreenshotFn = func(context.Context, capture.Options) (*image.RGBA, string, error) {
		img := image.NewRGBA(image.Rect(0, 0, 50, 40))
		img.SetRGBA(15, 15, color.RGBA{200, 10, 10, 255})
		return img, "screenshot.png", nil
	}
	t.Cleanup(func() { captureScreenshotFn = original })

	out := filepath.Join(t.TempDir(), "crop.png")
	cmd, err := parseSnapshotCmd([]string{"-region", "10,10,30,30", "-output", out}, nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	got, err := imageio.Load(out)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Fatalf("expected 20x20 crop, got %v", got.Bounds())
	}
	if c := got.RGBAAt(5, 5); c != (color.RGBA{200, 10, 10, 255}) {
		t.Fatalf("expected marker pixel shifted into crop space, got %v", c)
	}
}

func TestParseRect(t *testing.T) {
	rect, err := parseRect("10, 20, 30, 40")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rect != image.Rect(10, 20, 30, 40) {
		t.Fatalf("unexpected rectangle: %v", rect)
	}
	for _, val := range []string{"", "1,2,3", "a,b,c,d", "5,5,5,5"} {
		if _, err := parseRect(val); err == nil {
			t.Fatalf("expected error for region %q", val)
		}
	}
}

func TestCropImageOutsideBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if _, err := cropImage(img, image.Rect(20, 20, 30, 30)); err == nil {
		t.Fatalf("expected error for region outside the capture")
	}
}

func TestParseShadowOffset(t *testing.T) {
	pt, err := parseShadowOffset("12, -4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt != image.Pt(12, -4) {
		t.Fatalf("unexpected offset: %v", pt)
	}
	if _, err := parseShadowOffset("12"); err == nil {
		t.Fatalf("expected error for malformed offset")
	}
	if got := formatShadowOffset(image.Pt(16, 16)); got != "16,16" {
		t.Fatalf("unexpected formatted offset: %q", got)
	}
}
