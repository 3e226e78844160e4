// Package notify raises desktop notifications for capture, save and copy
// events. Every event is off unless enabled, so a Notifier with default
// settings is silent.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/screenux/internal/config"
	"github.com/example/screenux/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCapture fires when a capture completes.
	EventCapture Event = "capture"
	// EventSave fires when an image is persisted to disk.
	EventSave Event = "save"
	// EventCopy fires when data lands on the clipboard.
	EventCopy Event = "copy"
)

// Notifier sends OS-level notifications through the platform package.
type Notifier struct {
	title     string
	templates map[Event]string
	enabled   map[Event]bool
}

// FromConfig builds a notifier with the [notify] section toggles applied.
// The title and per-event body templates can be overridden through the
// SCREENUX_NOTIFY_* environment variables; each template receives the event
// detail as its single %s argument.
func FromConfig(cfg config.Notify) *Notifier {
	return &Notifier{
		title: envOr("SCREENUX_NOTIFY_TITLE", "Screenux"),
		templates: map[Event]string{
			EventCapture: envOr("SCREENUX_NOTIFY_CAPTURE_TEXT", "Captured %s"),
			EventSave:    envOr("SCREENUX_NOTIFY_SAVE_TEXT", "Saved %s"),
			EventCopy:    envOr("SCREENUX_NOTIFY_COPY_TEXT", "Copied %s to clipboard"),
		},
		enabled: map[Event]bool{
			EventCapture: cfg.Capture,
			EventSave:    cfg.Save,
			EventCopy:    cfg.Copy,
		},
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Capture sends a capture notification with an optional image preview.
func (n *Notifier) Capture(detail string, img image.Image) {
	if !n.enabledFor(EventCapture) {
		return
	}
	var opts platform.Options
	if img != nil {
		path, cleanup, err := writePreview(img)
		if err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCapture, detail, opts)
}

// Save sends a save notification naming the written file. The saved image
// itself doubles as the notification icon when it is readable.
func (n *Notifier) Save(path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	var opts platform.Options
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	body := strings.TrimSpace(fmt.Sprintf(n.templates[event], strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := platform.Notify(n.title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

// writePreview spills the image to a temp PNG so the notification daemon can
// show it. The returned cleanup removes the file.
func writePreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "screenux-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}
