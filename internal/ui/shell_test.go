package ui

import (
	"errors"
	"image"
	"strings"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/screenux/internal/annotate"
)

func newTestShell(t *testing.T, opts ...Option) *Shell {
	t.Helper()
	base := image.NewRGBA(image.Rect(0, 0, 100, 80))
	return New(base, opts...)
}

func press(r rune, mods key.Modifiers) key.Event {
	return key.Event{Rune: r, Modifiers: mods, Direction: key.DirPress}
}

func pressCode(c key.Code, mods key.Modifiers) key.Event {
	return key.Event{Rune: -1, Code: c, Modifiers: mods, Direction: key.DirPress}
}

func TestKeyboardToolSelection(t *testing.T) {
	s := newTestShell(t)
	cases := []struct {
		r    rune
		want annotate.Tool
	}{
		{'v', annotate.ToolSelect},
		{'r', annotate.ToolRectangle},
		{'f', annotate.ToolFilledRectangle},
		{'o', annotate.ToolCircle},
		{'c', annotate.ToolFilledCircle},
		{'t', annotate.ToolText},
	}
	for _, tc := range cases {
		if quit := s.handleKey(press(tc.r, 0)); quit {
			t.Fatalf("key %q closed the window", tc.r)
		}
		if got := s.Editor().Tool(); got != tc.want {
			t.Errorf("key %q: tool = %v, want %v", tc.r, got, tc.want)
		}
	}
}

func TestCtrlZUndoAndRedo(t *testing.T) {
	s := newTestShell(t)
	e := s.Editor()
	e.SetTool(annotate.ToolRectangle)
	e.PointerDown(annotate.Point{X: 10, Y: 10})
	e.PointerUp(annotate.Point{X: 40, Y: 30})
	if e.Store().Len() != 1 {
		t.Fatalf("store len = %d, want 1", e.Store().Len())
	}

	s.handleKey(press('z', key.ModControl))
	if e.Store().Len() != 0 {
		t.Fatalf("after undo: store len = %d, want 0", e.Store().Len())
	}
	s.handleKey(press('z', key.ModControl|key.ModShift))
	if e.Store().Len() != 1 {
		t.Fatalf("after redo: store len = %d, want 1", e.Store().Len())
	}
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	s := newTestShell(t)
	e := s.Editor()
	e.SetTool(annotate.ToolRectangle)
	e.PointerDown(annotate.Point{X: 10, Y: 10})
	e.PointerUp(annotate.Point{X: 40, Y: 30})
	// Drawing hands off to the select tool; click inside the shape to select.
	e.Click(1, annotate.Point{X: 20, Y: 20})
	if e.SelectedIndex() < 0 {
		t.Fatal("expected a selection")
	}

	s.handleKey(pressCode(key.CodeDeleteBackspace, 0))
	if e.Store().Len() != 0 {
		t.Fatalf("store len = %d, want 0", e.Store().Len())
	}
}

func TestEscapeClosesWindow(t *testing.T) {
	s := newTestShell(t)
	if quit := s.handleKey(pressCode(key.CodeEscape, 0)); !quit {
		t.Fatal("escape should close the window")
	}
	if s.Saved() {
		t.Fatal("escape must not mark the session saved")
	}
}

func TestSaveActionUsesCompositedOutput(t *testing.T) {
	var got *image.RGBA
	s := newTestShell(t, WithSaver(func(img *image.RGBA) (string, error) {
		got = img
		return "/tmp/out.png", nil
	}))
	e := s.Editor()
	e.SetTool(annotate.ToolFilledRectangle)
	e.PointerDown(annotate.Point{X: 10, Y: 10})
	e.PointerUp(annotate.Point{X: 40, Y: 30})

	s.handleKey(press('s', key.ModControl))

	if got == nil {
		t.Fatal("saver was not invoked")
	}
	if w, h := got.Bounds().Dx(), got.Bounds().Dy(); w != 100 || h != 80 {
		t.Fatalf("output size = %dx%d, want native 100x80", w, h)
	}
	if !s.Saved() {
		t.Fatal("expected saved flag")
	}
	if !strings.HasPrefix(s.message, "Saved: ") {
		t.Fatalf("message = %q", s.message)
	}
}

func TestSaveFailureReportsError(t *testing.T) {
	s := newTestShell(t, WithSaver(func(*image.RGBA) (string, error) {
		return "", errors.New("disk full")
	}))
	s.doSave()
	if s.Saved() {
		t.Fatal("failed save must not mark the session saved")
	}
	if !strings.HasPrefix(s.message, "Failed: ") {
		t.Fatalf("message = %q", s.message)
	}
}

func TestCopyAction(t *testing.T) {
	copied := false
	s := newTestShell(t, WithCopier(func(*image.RGBA) error {
		copied = true
		return nil
	}))
	s.handleKey(press('c', key.ModControl))
	if !copied {
		t.Fatal("copier was not invoked")
	}
	if !s.Saved() {
		t.Fatal("expected saved flag after copy")
	}
}

func TestTextEntryFlow(t *testing.T) {
	s := newTestShell(t)
	e := s.Editor()
	e.SetTool(annotate.ToolText)
	e.Click(1, annotate.Point{X: 25, Y: 25})
	if !s.textActive {
		t.Fatal("clicking with the text tool should open text entry")
	}

	for _, r := range "note" {
		s.handleTextKey(press(r, 0))
	}
	s.handleTextKey(pressCode(key.CodeDeleteBackspace, 0))
	s.handleTextKey(pressCode(key.CodeReturnEnter, 0))

	if s.textActive {
		t.Fatal("entry should close on enter")
	}
	if e.Store().Len() != 1 {
		t.Fatalf("store len = %d, want 1", e.Store().Len())
	}
	ann, _ := e.Store().At(0)
	if ann.Text != "not" {
		t.Fatalf("text = %q, want %q", ann.Text, "not")
	}
}

func TestTextEntryEscapeCancels(t *testing.T) {
	s := newTestShell(t)
	e := s.Editor()
	e.SetTool(annotate.ToolText)
	e.Click(1, annotate.Point{X: 25, Y: 25})
	s.handleTextKey(press('x', 0))
	s.handleTextKey(pressCode(key.CodeEscape, 0))
	if s.textActive {
		t.Fatal("entry should close on escape")
	}
	if e.Store().Len() != 0 {
		t.Fatalf("store len = %d, want 0", e.Store().Len())
	}
}

func TestToolButtonsLatch(t *testing.T) {
	s := newTestShell(t)
	s.buttons = s.buildButtons()
	var rectBtn *toolButton
	for _, b := range s.buttons {
		if b.label == "R:Rect" {
			rectBtn = b
		}
	}
	if rectBtn == nil {
		t.Fatal("missing rectangle button")
	}
	rectBtn.action()
	if !rectBtn.isTool || rectBtn.tool != s.Editor().Tool() {
		t.Fatal("rectangle button should latch after activation")
	}
	if s.Editor().Tool() != annotate.ToolRectangle {
		t.Fatalf("tool = %v, want rectangle", s.Editor().Tool())
	}
}

// Toolbar geometry is laid out once on the event goroutine, so pointer
// handling must work before any frame has been drawn.
func TestToolbarHitTestWithoutPaint(t *testing.T) {
	s := newTestShell(t)
	s.buttons = s.buildButtons()
	s.layoutToolbar()

	rectIdx := -1
	for i, b := range s.buttons {
		if b.label == "R:Rect" {
			rectIdx = i
		}
	}
	if rectIdx < 0 {
		t.Fatal("missing rectangle button")
	}
	if s.buttons[rectIdx].rect.Empty() {
		t.Fatal("button rect not laid out")
	}

	click := mouse.Event{Button: mouse.ButtonLeft, Direction: mouse.DirPress}
	s.pointerOverToolbar(s.buttons[rectIdx].rect.Min.Add(image.Pt(2, 2)), click)
	if s.Editor().Tool() != annotate.ToolRectangle {
		t.Fatalf("tool = %v, want rectangle", s.Editor().Tool())
	}
	if s.pressedButton != rectIdx {
		t.Fatalf("pressedButton = %d, want %d", s.pressedButton, rectIdx)
	}

	if len(s.swatchRects) != len(palette) {
		t.Fatalf("swatch count = %d, want %d", len(s.swatchRects), len(palette))
	}
	s.pointerOverToolbar(s.swatchRects[2].Min.Add(image.Pt(2, 2)), click)
	if s.activeSwatch != 2 {
		t.Fatalf("activeSwatch = %d, want 2", s.activeSwatch)
	}
	if s.Editor().Color() != palette[2] {
		t.Fatalf("color = %+v, want %+v", s.Editor().Color(), palette[2])
	}
}
