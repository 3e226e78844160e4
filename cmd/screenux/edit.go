package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/example/screenux/internal/capture"
	"github.com/example/screenux/internal/clipboard"
	"github.com/example/screenux/internal/imageio"
	"github.com/example/screenux/internal/output"
	"github.com/example/screenux/internal/ui"
)

// captureScreenshotFn is swapped out in tests.
var captureScreenshotFn = capture.CaptureScreenshot

type editCmd struct {
	file          string
	display       string
	outPath       string
	interactive   bool
	includeCursor bool
	sourceURI     string
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "annotate this image instead of capturing a screenshot")
	fs.StringVar(&e.display, "display", "", "capture only this display (name, index or 'primary')")
	fs.StringVar(&e.outPath, "output", "", "exact output path; overrides the save directory")
	fs.BoolVar(&e.interactive, "interactive", false, "let the desktop portal prompt for what to capture")
	fs.BoolVar(&e.includeCursor, "include-cursor", false, "embed the cursor in the capture when supported")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file != "" && e.display != "" {
		return nil, fmt.Errorf("-file and -display cannot be combined")
	}
	return e, nil
}

func (e *editCmd) Run() error {
	img, err := e.source()
	if err != nil {
		return err
	}

	opts := []ui.Option{
		ui.WithTitle("Screenux"),
		ui.WithSaver(e.writeOutput),
		ui.WithCopier(e.copyOutput),
		ui.WithOnClose(func(saved bool) {
			if !saved {
				fmt.Fprintln(os.Stderr, "closed without saving")
			}
		}),
	}
	if e.root != nil && e.root.activeTheme != nil {
		opts = append(opts, ui.WithTheme(e.root.activeTheme))
	}
	ui.New(img, opts...).Run()
	return nil
}

func (e *editCmd) source() (*image.RGBA, error) {
	if e.file != "" {
		img, err := imageio.Load(e.file)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", e.file, err)
		}
		return img, nil
	}
	img, uri, err := captureScreenshotFn(context.Background(), capture.Options{
		Interactive:   e.interactive,
		IncludeCursor: e.includeCursor,
		Display:       e.display,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	e.sourceURI = uri
	e.root.notifyCapture("screen", img)
	return img, nil
}

// writeOutput saves the composited image. An explicit -output wins;
// otherwise the file goes into the save directory under a timestamped name.
func (e *editCmd) writeOutput(img *image.RGBA) (string, error) {
	var buf bytes.Buffer
	if err := imageio.EncodePNG(&buf, img); err != nil {
		return "", fmt.Errorf("encode PNG: %w", err)
	}

	if e.outPath != "" {
		if err := os.WriteFile(e.outPath, buf.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", e.outPath, err)
		}
		saved := e.outPath
		if abs, err := filepath.Abs(saved); err == nil {
			saved = abs
		}
		e.root.notifySave(saved)
		return saved, nil
	}

	dir := output.ResolveSaveDir(e.root.saveDir())
	dest := output.BuildOutputPath(dir, e.sourceURI)
	if err := output.Write(dir, dest, buf.Bytes()); err != nil {
		return "", err
	}
	e.root.notifySave(dest)
	return dest, nil
}

func (e *editCmd) copyOutput(img *image.RGBA) error {
	if err := clipboard.WriteImage(img); err != nil {
		return fmt.Errorf("copy PNG to clipboard: %w", err)
	}
	e.root.notifyCopy("annotated image")
	return nil
}
