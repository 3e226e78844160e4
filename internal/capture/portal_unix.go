//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

var portalHandleToken = newPortalHandleToken

// portalScreenshot drives one org.freedesktop.portal.Screenshot request. The
// match rule is registered before waiting so the Response signal cannot be
// missed, and only one request is outstanding on the connection at a time.
func portalScreenshot(ctx context.Context, opts Options) (*image.RGBA, string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, "", fmt.Errorf("%w: dbus connect: %v", ErrUnavailable, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "dbus close: %v\n", cerr)
		}
	}()

	obj := conn.Object("org.freedesktop.portal.Desktop", "/org/freedesktop/portal/desktop")
	call := obj.CallWithContext(ctx, "org.freedesktop.portal.Screenshot.Screenshot", 0, "", portalOptions(opts))
	if call.Err != nil {
		return nil, "", fmt.Errorf("%w: portal screenshot call: %v", ErrUnavailable, call.Err)
	}
	var handle dbus.ObjectPath
	if err := call.Store(&handle); err != nil {
		return nil, "", fmt.Errorf("portal screenshot response: %w", err)
	}

	sigc := make(chan *dbus.Signal, 1)
	conn.Signal(sigc)
	defer conn.RemoveSignal(sigc)
	rule := fmt.Sprintf("type='signal',interface='org.freedesktop.portal.Request',member='Response',path='%s'", handle)
	if err := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return nil, "", fmt.Errorf("portal screenshot subscribe: %w", err)
	}
	defer conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, rule)

	for {
		select {
		case <-ctx.Done():
			return nil, "", fmt.Errorf("%w: portal did not respond: %v", ErrUnavailable, ctx.Err())
		case sig, ok := <-sigc:
			if !ok {
				return nil, "", fmt.Errorf("%w: dbus connection lost", ErrUnavailable)
			}
			if sig.Path != handle || sig.Name != "org.freedesktop.portal.Request.Response" {
				continue
			}
			uri, err := parsePortalResponse(sig.Body)
			if err != nil {
				return nil, "", err
			}
			img, err := loadPortalImage(strings.TrimPrefix(uri, "file://"))
			if err != nil {
				return nil, "", fmt.Errorf("portal screenshot image: %w", err)
			}
			return img, uri, nil
		}
	}
}

// parsePortalResponse maps the (code, results) signal body onto the error
// taxonomy: 0 success, 1 user cancellation, anything else a portal failure.
func parsePortalResponse(body []interface{}) (string, error) {
	if len(body) < 2 {
		return "", fmt.Errorf("portal screenshot: malformed response signal")
	}
	code, ok := body[0].(uint32)
	if !ok {
		return "", fmt.Errorf("portal screenshot: malformed response code %T", body[0])
	}
	switch code {
	case 0:
	case 1:
		return "", ErrCancelled
	default:
		return "", fmt.Errorf("portal screenshot: request failed with code %d", code)
	}
	results, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return "", fmt.Errorf("portal screenshot: malformed results %T", body[1])
	}
	uriVar, ok := results["uri"]
	if !ok {
		return "", fmt.Errorf("portal screenshot: response missing image uri")
	}
	uri, ok := uriVar.Value().(string)
	if !ok || uri == "" {
		return "", fmt.Errorf("portal screenshot: response missing image uri")
	}
	return uri, nil
}

func newPortalHandleToken() string {
	return fmt.Sprintf("screenux_%d", time.Now().UnixNano())
}

func portalOptions(opts Options) map[string]dbus.Variant {
	cursorMode := "hidden"
	if opts.IncludeCursor {
		cursorMode = "embedded"
	}
	return map[string]dbus.Variant{
		"interactive":  dbus.MakeVariant(opts.Interactive),
		"modal":        dbus.MakeVariant(opts.Interactive),
		"handle_token": dbus.MakeVariant(portalHandleToken()),
		"cursor_mode":  dbus.MakeVariant(cursorMode),
	}
}

// loadPortalImage reads the temp file the portal wrote and removes it.
func loadPortalImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "close %s: %v\n", path, cerr)
		}
		if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
			fmt.Fprintf(os.Stderr, "remove %s: %v\n", path, rerr)
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
