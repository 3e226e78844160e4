//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	owner        *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		o := &selectionOwner{}
		if err := o.start(); err != nil {
			initErr = err
			return
		}
		owner = o
	})
	return initErr
}

// WriteImage publishes the image to the clipboard as PNG.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return owner.offer(nil, buf.Bytes())
}

// ReadImage decodes PNG image data from the clipboard.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := owner.fetch(owner.atom("image/png"))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain image data")
	}
	return png.Decode(bytes.NewReader(data))
}

// WriteText publishes UTF-8 text to the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.offer([]byte(text), nil)
}

// atomNames lists every atom the owner interns, in the order they land in
// the atoms slice.
var atomNames = []string{
	"CLIPBOARD",
	"TARGETS",
	"UTF8_STRING",
	"text/plain;charset=utf-8",
	"image/png",
	"SCREENUX_CLIPBOARD",
}

// selectionOwner speaks the X11 CLIPBOARD selection protocol directly: it
// holds the offered data and answers SelectionRequest events from pasting
// applications for as long as the process lives.
type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  map[string]xproto.Atom

	mu    sync.RWMutex
	text  []byte
	image []byte
}

func (o *selectionOwner) atom(name string) xproto.Atom {
	return o.atoms[name]
}

func (o *selectionOwner) start() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return err
	}

	o.atoms = make(map[string]xproto.Atom, len(atomNames))
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			xproto.DestroyWindow(conn, window)
			conn.Close()
			return err
		}
		o.atoms[name] = reply.Atom
	}

	o.conn = conn
	o.window = window
	go o.serve()
	return nil
}

// offer stores the payloads and claims selection ownership. Exactly one of
// text and img should be non-nil; the other content type is dropped, matching
// how a fresh copy replaces the clipboard.
func (o *selectionOwner) offer(text, img []byte) error {
	o.mu.Lock()
	o.text = append([]byte(nil), text...)
	o.image = append([]byte(nil), img...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atom("CLIPBOARD"), xproto.TimeCurrentTime).Check()
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.text = nil
			o.image = nil
			o.mu.Unlock()
		}
	}
}

// answer serves one paste request. An unsupported target is refused by
// notifying with property None, per ICCCM.
func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	o.mu.RLock()
	text := o.text
	img := o.image
	o.mu.RUnlock()

	served := false
	switch e.Target {
	case o.atom("TARGETS"):
		targets := []xproto.Atom{o.atom("TARGETS")}
		if len(text) > 0 {
			targets = append(targets, o.atom("UTF8_STRING"), xproto.AtomString, o.atom("text/plain;charset=utf-8"))
		}
		if len(img) > 0 {
			targets = append(targets, o.atom("image/png"))
		}
		o.reply(e, property, xproto.AtomAtom, 32, encodeAtoms(targets))
		served = true
	case o.atom("UTF8_STRING"), xproto.AtomString, o.atom("text/plain;charset=utf-8"):
		if len(text) > 0 {
			o.reply(e, property, o.atom("UTF8_STRING"), 8, text)
			served = true
		}
	case o.atom("image/png"):
		if len(img) > 0 {
			o.reply(e, property, o.atom("image/png"), 8, img)
			served = true
		}
	}
	if !served {
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

func (o *selectionOwner) reply(e xproto.SelectionRequestEvent, property, targetType xproto.Atom, format byte, payload []byte) {
	length := uint32(len(payload)) / uint32(format/8)
	xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, targetType, format, length, payload)
}

// fetch asks the current selection owner to convert to the given target. It
// uses a throwaway connection and window so a request never interferes with
// the serving loop.
func (o *selectionOwner) fetch(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	property := o.atom("SCREENUX_CLIPBOARD")
	if err := xproto.DeletePropertyChecked(conn, window, property).Check(); err != nil {
		return nil, err
	}
	if err := xproto.ConvertSelectionChecked(conn, window, o.atom("CLIPBOARD"), target, property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, fmt.Errorf("clipboard target unavailable")
		}
		if e.Property != property {
			continue
		}
		reply, replyErr := xproto.GetProperty(conn, false, window, property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if replyErr != nil {
			return nil, replyErr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}

func encodeAtoms(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, atom := range atoms {
		xgb.Put32(buf[i*4:], uint32(atom))
	}
	return buf
}
