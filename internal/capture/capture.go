// Package capture obtains desktop screenshots. The XDG desktop portal is the
// primary source; on X11 sessions without a portal it falls back to grabbing
// the root window directly.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"
)

// Sentinel errors callers branch on with errors.Is. Anything else coming out
// of CaptureScreenshot is a protocol-level failure wrapped with context.
var (
	// ErrCancelled means the user dismissed the capture dialog. Not a
	// failure; callers typically exit quietly.
	ErrCancelled = errors.New("capture cancelled")
	// ErrUnavailable means no capture backend could serve the request.
	ErrUnavailable = errors.New("capture unavailable")
)

// DefaultTimeout bounds a portal that accepts the request but never emits a
// Response signal. The portal may legitimately sit open while the user reads
// the permission dialog, so the bound is generous.
const DefaultTimeout = 120 * time.Second

// Options control a screenshot request.
type Options struct {
	// Interactive asks the portal to let the user pick a region.
	Interactive bool
	// IncludeCursor embeds the pointer in the capture.
	IncludeCursor bool
	// Display selects a monitor to crop to: empty for the whole desktop,
	// "primary", an index, or a substring of the output name.
	Display string
}

// Injection points for tests and for platforms without a backend.
var (
	portalScreenshotFn = portalScreenshot
	x11ScreenshotFn    = x11Screenshot
	listMonitorsFn     = listMonitors
)

// CaptureScreenshot captures the desktop and returns the image together with
// an opaque source identifier (the portal URI, when one exists) that callers
// may use to derive an output filename. The context bounds the whole request;
// when it carries no deadline, DefaultTimeout applies.
func CaptureScreenshot(ctx context.Context, opts Options) (*image.RGBA, string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	img, uri, portalErr := portalScreenshotFn(ctx, opts)
	if portalErr == nil {
		return cropToDisplay(img, uri, opts.Display)
	}
	if errors.Is(portalErr, ErrCancelled) || opts.Interactive {
		// A dismissed dialog is an answer, and interactive region selection
		// has no non-portal equivalent.
		return nil, "", portalErr
	}

	img, x11Err := x11ScreenshotFn()
	if x11Err != nil {
		return nil, "", fmt.Errorf("portal: %v; x11 fallback: %w", portalErr, x11Err)
	}
	return cropToDisplay(img, "", opts.Display)
}

func cropToDisplay(img *image.RGBA, uri, display string) (*image.RGBA, string, error) {
	if display == "" {
		return img, uri, nil
	}
	monitors, err := listMonitorsFn()
	if err != nil {
		return nil, "", fmt.Errorf("resolve display %q: %w", display, err)
	}
	mon, err := FindMonitor(monitors, display)
	if err != nil {
		return nil, "", err
	}
	cropped, err := cropToRect(img, mon.Rect)
	if err != nil {
		return nil, "", fmt.Errorf("display %q: %w", display, err)
	}
	return cropped, uri, nil
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, errors.New("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
