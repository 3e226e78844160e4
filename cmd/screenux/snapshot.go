package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/screenux/internal/capture"
	"github.com/example/screenux/internal/clipboard"
	"github.com/example/screenux/internal/imageio"
	"github.com/example/screenux/internal/output"
	"github.com/example/screenux/internal/render"
)

type snapshotCmd struct {
	outPath       string
	stdout        bool
	toClipboard   bool
	copyPath      bool
	listDisplays  bool
	display       string
	region        string
	interactive   bool
	includeCursor bool
	shadow        bool
	shadowRadius  int
	shadowOffset  string
	shadowPoint   image.Point
	shadowOpacity float64
	*root
	fs *flag.FlagSet
}

func (s *snapshotCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseSnapshotCmd(args []string, r *root) (*snapshotCmd, error) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	s := &snapshotCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	defaults := render.DefaultShadowOptions()
	fs.StringVar(&s.outPath, "output", "", "write the capture to this file path instead of the save directory")
	fs.StringVar(&s.display, "display", "", "capture only this display (name, index or 'primary')")
	fs.BoolVar(&s.listDisplays, "list-displays", false, "list connected displays and exit")
	fs.StringVar(&s.region, "region", "", "crop the capture to the rectangle x0,y0,x1,y1")
	fs.BoolVar(&s.stdout, "stdout", false, "write PNG data to stdout")
	fs.BoolVar(&s.toClipboard, "to-clipboard", false, "copy the capture to the clipboard")
	fs.BoolVar(&s.toClipboard, "to-clip", false, "copy the capture to the clipboard (alias)")
	fs.BoolVar(&s.copyPath, "copy-path", false, "copy the saved file path to the clipboard")
	fs.BoolVar(&s.interactive, "interactive", false, "let the desktop portal prompt for what to capture")
	fs.BoolVar(&s.includeCursor, "include-cursor", false, "embed the cursor in the capture when supported")
	fs.BoolVar(&s.shadow, "shadow", false, "apply a drop shadow to the captured image")
	fs.IntVar(&s.shadowRadius, "shadow-radius", defaults.Radius, "drop shadow blur radius in pixels")
	fs.StringVar(&s.shadowOffset, "shadow-offset", formatShadowOffset(defaults.Offset), "drop shadow offset as dx,dy")
	fs.Float64Var(&s.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	pt, err := parseShadowOffset(s.shadowOffset)
	if err != nil {
		return nil, err
	}
	s.shadowPoint = pt
	if s.toClipboard && s.stdout {
		return nil, fmt.Errorf("-stdout cannot be used with -to-clipboard")
	}
	if s.copyPath && (s.stdout || s.toClipboard) {
		return nil, fmt.Errorf("-copy-path requires the capture to be saved to a file")
	}
	if s.region != "" {
		if _, err := parseRect(s.region); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *snapshotCmd) Run() error {
	if s.listDisplays {
		return s.runListDisplays()
	}
	img, uri, err := captureScreenshotFn(context.Background(), capture.Options{
		Interactive:   s.interactive,
		IncludeCursor: s.includeCursor,
		Display:       s.display,
	})
	if err != nil {
		return fmt.Errorf("failed to capture screen: %w", err)
	}
	if s.region != "" {
		rect, err := parseRect(s.region)
		if err != nil {
			return err
		}
		img, err = cropImage(img, rect)
		if err != nil {
			return err
		}
	}
	if s.shadow {
		res := render.ApplyShadow(img, s.shadowOptions())
		img = res.Image
	}
	s.root.notifyCapture(s.describeCapture(), img)

	if s.toClipboard {
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		detail := s.describeCapture()
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", detail)
		s.root.notifyCopy(detail)
		return nil
	}

	if s.stdout {
		if err := imageio.EncodePNG(os.Stdout, img); err != nil {
			return fmt.Errorf("write PNG to stdout: %w", err)
		}
		fmt.Fprintln(os.Stderr, "wrote PNG data to stdout")
		return nil
	}

	var buf bytes.Buffer
	if err := imageio.EncodePNG(&buf, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}

	var saved string
	if s.outPath != "" {
		if err := os.WriteFile(s.outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", s.outPath, err)
		}
		saved = s.outPath
		if abs, err := filepath.Abs(saved); err == nil {
			saved = abs
		}
	} else {
		dir := output.ResolveSaveDir(s.root.saveDir())
		saved = output.BuildOutputPath(dir, uri)
		if err := output.Write(dir, saved, buf.Bytes()); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	s.root.notifySave(saved)
	if s.copyPath {
		if err := clipboard.WriteText(saved); err != nil {
			return fmt.Errorf("copy path to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "copied path to clipboard")
	}
	return nil
}

func (s *snapshotCmd) runListDisplays() error {
	monitors, err := capture.ListMonitors()
	if err != nil {
		return fmt.Errorf("list displays: %w", err)
	}
	for _, mon := range monitors {
		marker := ""
		if mon.Primary {
			marker = " (primary)"
		}
		fmt.Printf("%d: %s %dx%d+%d+%d%s\n", mon.Index, mon.Name,
			mon.Rect.Dx(), mon.Rect.Dy(), mon.Rect.Min.X, mon.Rect.Min.Y, marker)
	}
	return nil
}

func (s *snapshotCmd) describeCapture() string {
	if region := strings.TrimSpace(s.region); region != "" {
		return fmt.Sprintf("region %s", region)
	}
	if display := strings.TrimSpace(s.display); display != "" {
		return fmt.Sprintf("screen %s", display)
	}
	return "screen"
}

func (s *snapshotCmd) shadowOptions() render.ShadowOptions {
	opts := render.DefaultShadowOptions()
	if s.shadowRadius >= 0 {
		opts.Radius = s.shadowRadius
	} else {
		opts.Radius = 0
	}
	opts.Offset = s.shadowPoint
	if s.shadowOpacity <= 0 {
		opts.Opacity = 0
	} else if s.shadowOpacity >= 1 {
		opts.Opacity = 1
	} else {
		opts.Opacity = s.shadowOpacity
	}
	return opts
}

func cropImage(img *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	src := rect.Intersect(img.Bounds())
	if src.Empty() {
		return nil, fmt.Errorf("region %v is outside the capture %v", rect, img.Bounds())
	}
	out := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(out, out.Bounds(), img, src.Min, draw.Src)
	return out, nil
}

func parseShadowOffset(val string) (image.Point, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid shadow offset %q", val)
	}
	vals := make([]int, 2)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Point{}, fmt.Errorf("invalid shadow offset %q", val)
		}
		vals[i] = v
	}
	return image.Pt(vals[0], vals[1]), nil
}

func formatShadowOffset(pt image.Point) string {
	return fmt.Sprintf("%d,%d", pt.X, pt.Y)
}

func parseRect(val string) (image.Rectangle, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q", val)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region %q", val)
		}
		nums[i] = v
	}
	rect := image.Rect(nums[0], nums[1], nums[2], nums[3])
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %q is empty", val)
	}
	return rect, nil
}
