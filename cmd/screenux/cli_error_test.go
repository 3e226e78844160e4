package main

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/example/screenux/internal/capture"
)

func TestSnapshotRunCaptureError(t *testing.T) {
	original := captureScreenshotFn
	sentinel := errors.New("boom")
	captureScreenshotFn = func(context.Context, capture.Options) (*image.RGBA, string, error) {
		return nil, "", sentinel
	}
	t.Cleanup(func() { captureScreenshotFn = original })

	cmd := &snapshotCmd{stdout: true}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	} else {
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to contain %q, got %v", want, err)
		}
	}
}

func TestEditSourceCaptureError(t *testing.T) {
	original := captureScreenshotFn
	sentinel := errors.New("denied")
	captureScreenshotFn = func(context.Context, capture.Options) (*image.RGBA, string, error) {
		return nil, "", sentinel
	}
	t.Cleanup(func() { captureScreenshotFn = original })

	cmd := &editCmd{}
	if _, err := cmd.source(); err == nil {
		t.Fatalf("expected error")
	} else {
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected message context, got %v", err)
		}
	}
}

func TestEditSourceOpenError(t *testing.T) {
	cmd := &editCmd{file: "missing.png"}
	if _, err := cmd.source(); err == nil || !strings.Contains(err.Error(), "open missing.png") {
		t.Fatalf("expected open error context, got %v", err)
	}
}

func TestParseDrawClipboardRequiresOutput(t *testing.T) {
	_, err := parseDrawCmd([]string{"-from-clipboard", "rect", "0", "0", "1", "1"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "output file is required when reading from the clipboard"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseDrawRejectsFileWithClipboard(t *testing.T) {
	_, err := parseDrawCmd([]string{"-from-clipboard", "-file", "in.png", "-output", "out.png", "rect", "0", "0", "1", "1"}, nil)
	if err == nil || !strings.Contains(err.Error(), "-file cannot be used") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestParseSnapshotRejectsStdoutWithClipboard(t *testing.T) {
	_, err := parseSnapshotCmd([]string{"-stdout", "-to-clipboard"}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseSnapshotRejectsBadRegion(t *testing.T) {
	_, err := parseSnapshotCmd([]string{"-region", "10,10"}, nil)
	if err == nil {
		t.Fatalf("expected error for malformed region")
	}
}
