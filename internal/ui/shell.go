// Package ui hosts the annotation editor in a shiny window. It translates
// raw window events into the editor's abstract gestures and draws the chrome
// around the compositor's frames.
package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/screenux/internal/annotate"
	"github.com/example/screenux/internal/theme"
)

const statusHeight = 24

// toolbarWidth is widened at startup so every button label fits.
var toolbarWidth = 56

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// clickSlop is the maximum pointer travel, in pixels, for a press-release to
// count as a click rather than a drag.
const clickSlop = 4.0

// doubleClickWindow is the longest gap between clicks that still counts as a
// double click.
const doubleClickWindow = 400 * time.Millisecond

// palette lists the colors offered in the toolbar as annotation colors.
var palette = []annotate.Color{
	{R: 1, A: 1},
	{G: 0.8, A: 1},
	{B: 1, A: 1},
	{R: 1, G: 0.85, A: 1},
	{R: 1, G: 0.55, A: 1},
	{A: 1},
	{R: 1, G: 1, B: 1, A: 1},
}

// Shell owns the window, editor and compositor for one editing session.
type Shell struct {
	title   string
	theme   *theme.Theme
	editor  *annotate.Editor
	comp    *annotate.Compositor
	store   *annotate.Store
	save    func(*image.RGBA) (string, error)
	copyImg func(*image.RGBA) error
	onClose func(saved bool)

	win   screen.Window
	winMu sync.Mutex

	saved bool

	textActive bool
	textInput  string
	textAnchor annotate.Point

	message      string
	messageUntil time.Time

	buttons       []*toolButton
	swatchRects   []image.Rectangle
	hoverButton   int
	hoverSwatch   int
	pressedButton int
	activeSwatch  int
}

// Option modifies a Shell during creation.
type Option func(*Shell)

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(s *Shell) { s.title = title } }

// WithTheme sets the color theme for the chrome and canvas.
func WithTheme(t *theme.Theme) Option { return func(s *Shell) { s.theme = t } }

// WithSaver registers the function invoked by the save action. It receives
// the composited output image and returns the path written.
func WithSaver(fn func(*image.RGBA) (string, error)) Option {
	return func(s *Shell) { s.save = fn }
}

// WithCopier registers the function invoked by the copy action.
func WithCopier(fn func(*image.RGBA) error) Option {
	return func(s *Shell) { s.copyImg = fn }
}

// WithOnClose registers a callback invoked when the window closes. saved
// reports whether the session saved or copied its output at least once.
func WithOnClose(fn func(saved bool)) Option {
	return func(s *Shell) { s.onClose = fn }
}

// New creates a Shell editing the given base image.
func New(base *image.RGBA, opts ...Option) *Shell {
	s := &Shell{
		title:         "Screenux",
		theme:         theme.Default(),
		comp:          annotate.NewCompositor(base),
		store:         annotate.NewStore(),
		hoverButton:   -1,
		hoverSwatch:   -1,
		pressedButton: -1,
		activeSwatch:  0,
	}
	s.editor = annotate.NewEditor(s.store,
		annotate.WithColor(palette[0]),
		annotate.WithRedraw(s.requestPaint),
		annotate.WithTextRequester(s.beginTextEntry),
	)
	for _, o := range opts {
		o(s)
	}
	annotate.SetStyle(nrgba(s.theme.CanvasBackground), nrgba(s.theme.Selection))
	return s
}

// Editor exposes the interaction state machine, mainly for tests.
func (s *Shell) Editor() *annotate.Editor { return s.editor }

// Saved reports whether the session saved or copied its output.
func (s *Shell) Saved() bool { return s.saved }

// Run executes the UI loop using shiny's driver. It blocks until the window
// closes.
func (s *Shell) Run() { driver.Main(s.Main) }

func (s *Shell) requestPaint() {
	s.winMu.Lock()
	w := s.win
	s.winMu.Unlock()
	if w != nil {
		w.Send(paint.Event{})
	}
}

func (s *Shell) beginTextEntry(req annotate.TextRequest) {
	s.textActive = true
	s.textInput = req.Existing
	s.textAnchor = req.Anchor
	s.requestPaint()
}

func (s *Shell) showMessage(msg string) {
	s.message = msg
	s.messageUntil = time.Now().Add(3 * time.Second)
	log.Print(msg)
	s.requestPaint()
}

type toolButton struct {
	label  string
	rect   image.Rectangle
	tool   annotate.Tool
	isTool bool
	action func()
}

// frameState is the immutable input of one paint pass. Everything the paint
// goroutine reads is captured here on the event goroutine; the scene carries
// its own copies of the store, viewport, preview and selection, so later
// edits cannot race with an in-flight draw.
type frameState struct {
	width, height int

	scene annotate.Frame
	tool  annotate.Tool

	textActive bool
	textInput  string
	textAnchor annotate.Point

	message      string
	messageUntil time.Time

	hoverButton   int
	hoverSwatch   int
	pressedButton int
	activeSwatch  int
}

// Main is the shiny entry point. Use Run unless the driver loop is managed
// elsewhere.
func (s *Shell) Main(scr screen.Screen) {
	s.buttons = s.buildButtons()

	// Widen the toolbar so no button label is clipped.
	d := &font.Drawer{Face: basicfont.Face7x13}
	widest := d.MeasureString(s.title).Ceil() + 8
	for _, b := range s.buttons {
		if w := d.MeasureString(b.label).Ceil() + 8; w > widest {
			widest = w
		}
	}
	if widest > toolbarWidth {
		toolbarWidth = widest
	}
	s.layoutToolbar()

	imgW, imgH := s.comp.BaseSize()
	width := clampInt(imgW+toolbarWidth, 640, 1680)
	height := clampInt(imgH+statusHeight, 480, 1040)

	w, err := scr.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: s.title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	s.winMu.Lock()
	s.win = w
	s.winMu.Unlock()
	defer func() {
		s.winMu.Lock()
		s.win = nil
		s.winMu.Unlock()
		if s.onClose != nil {
			s.onClose(s.saved)
		}
	}()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan frameState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			s.drawFrame(ctx, scr, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	var pressPt image.Point
	var pressTime time.Time
	var dragging bool
	var dragExceeded bool
	var midDragging bool
	var lastClickPt image.Point
	var lastClickTime time.Time

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			canvasW := width - toolbarWidth
			canvasH := height - statusHeight
			if canvasW < 1 || canvasH < 1 {
				continue
			}
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := frameState{
				width:         width,
				height:        height,
				scene:         s.comp.Snapshot(s.editor, canvasW, canvasH),
				tool:          s.editor.Tool(),
				textActive:    s.textActive,
				textInput:     s.textInput,
				textAnchor:    s.textAnchor,
				message:       s.message,
				messageUntil:  s.messageUntil,
				hoverButton:   s.hoverButton,
				hoverSwatch:   s.hoverSwatch,
				pressedButton: s.pressedButton,
				activeSwatch:  s.activeSwatch,
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))

			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease && s.pressedButton != -1 {
				s.pressedButton = -1
				s.requestPaint()
			}

			if e.Button == mouse.ButtonWheelUp || e.Button == mouse.ButtonWheelDown {
				if e.Direction == mouse.DirRelease {
					continue
				}
				delta := 1.0
				if e.Button == mouse.ButtonWheelUp {
					delta = -1.0
				}
				mod := annotate.ScrollPlain
				if e.Modifiers&key.ModControl != 0 {
					mod = annotate.ScrollZoom
				} else if e.Modifiers&key.ModShift != 0 {
					mod = annotate.ScrollHorizontal
				}
				s.editor.Scroll(delta, mod)
				continue
			}

			if e.Button == mouse.ButtonMiddle {
				switch e.Direction {
				case mouse.DirPress:
					midDragging = true
					s.editor.MiddleDown(s.canvasPoint(p))
				case mouse.DirRelease:
					midDragging = false
					s.editor.MiddleUp(s.canvasPoint(p))
				}
				continue
			}
			if midDragging && e.Direction == mouse.DirNone {
				s.editor.MiddleMove(s.canvasPoint(p))
				continue
			}

			if p.X < toolbarWidth {
				s.pointerOverToolbar(p, e)
				continue
			}
			if p.Y >= height-statusHeight {
				continue
			}

			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				pressPt = p
				pressTime = time.Now()
				dragging = true
				dragExceeded = false
				s.editor.PointerDown(s.canvasPoint(p))
				continue
			}
			if dragging && e.Direction == mouse.DirNone {
				if !dragExceeded && dist(p, pressPt) > clickSlop {
					dragExceeded = true
				}
				s.editor.PointerMove(s.canvasPoint(p))
				continue
			}
			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease && dragging {
				dragging = false
				s.editor.PointerUp(s.canvasPoint(p))
				if !dragExceeded {
					count := 1
					if pressTime.Sub(lastClickTime) < doubleClickWindow && dist(p, lastClickPt) <= clickSlop {
						count = 2
					}
					lastClickPt = p
					lastClickTime = pressTime
					s.editor.Click(count, s.canvasPoint(p))
				}
				continue
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if s.textActive {
				s.handleTextKey(e)
				continue
			}
			if quit := s.handleKey(e); quit {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		}
	}
}

// canvasPoint converts window coordinates into the canvas-local screen space
// the editor works in.
func (s *Shell) canvasPoint(p image.Point) annotate.Point {
	return annotate.Point{X: float64(p.X - toolbarWidth), Y: float64(p.Y)}
}

func (s *Shell) pointerOverToolbar(p image.Point, e mouse.Event) {
	press := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress
	s.hoverButton = -1
	s.hoverSwatch = -1
	for i, b := range s.buttons {
		if p.In(b.rect) {
			s.hoverButton = i
			if press {
				s.pressedButton = i
				b.action()
			}
			break
		}
	}
	for i, r := range s.swatchRects {
		if p.In(r) {
			s.hoverSwatch = i
			if press {
				s.activeSwatch = i
				s.editor.SetColor(palette[i])
			}
			break
		}
	}
	if press || e.Direction == mouse.DirNone {
		s.requestPaint()
	}
}

func (s *Shell) handleTextKey(e key.Event) {
	switch e.Code {
	case key.CodeReturnEnter:
		s.textActive = false
		s.editor.CommitText(s.textInput)
		s.textInput = ""
		s.requestPaint()
		return
	case key.CodeEscape:
		s.textActive = false
		s.textInput = ""
		s.editor.CancelText()
		s.requestPaint()
		return
	case key.CodeDeleteBackspace:
		if len(s.textInput) > 0 {
			runes := []rune(s.textInput)
			s.textInput = string(runes[:len(runes)-1])
			s.requestPaint()
		}
		return
	}
	if e.Rune > 0 {
		s.textInput += string(e.Rune)
		s.requestPaint()
	}
}

// handleKey dispatches a non-text keypress. It reports whether the window
// should close.
func (s *Shell) handleKey(e key.Event) bool {
	if e.Modifiers&key.ModControl != 0 {
		switch e.Rune {
		case 'z', 'Z':
			if e.Modifiers&key.ModShift != 0 {
				s.editor.Redo()
			} else {
				s.editor.Undo()
			}
		case 'y', 'Y':
			s.editor.Redo()
		case 's', 'S':
			s.doSave()
		case 'c', 'C':
			s.doCopy()
		}
		return false
	}

	switch e.Code {
	case key.CodeDeleteBackspace, key.CodeDeleteForward:
		s.editor.DeleteSelected()
		return false
	case key.CodeEscape:
		s.showMessage("Cancelled")
		return true
	}

	switch e.Rune {
	case 'v', 'V':
		s.editor.SetTool(annotate.ToolSelect)
	case 'r', 'R':
		s.editor.SetTool(annotate.ToolRectangle)
	case 'f', 'F':
		s.editor.SetTool(annotate.ToolFilledRectangle)
	case 'o', 'O':
		s.editor.SetTool(annotate.ToolCircle)
	case 'c', 'C':
		s.editor.SetTool(annotate.ToolFilledCircle)
	case 't', 'T':
		s.editor.SetTool(annotate.ToolText)
	case '+', '=':
		s.editor.ZoomIn()
	case '-':
		s.editor.ZoomOut()
	case 'q', 'Q':
		return true
	}
	return false
}

func (s *Shell) doSave() {
	if s.save == nil {
		return
	}
	out := s.comp.RenderOutput(s.store)
	path, err := s.save(out)
	if err != nil {
		s.showMessage(fmt.Sprintf("Failed: %v", err))
		return
	}
	s.saved = true
	s.showMessage(fmt.Sprintf("Saved: %s", path))
}

func (s *Shell) doCopy() {
	if s.copyImg == nil {
		return
	}
	out := s.comp.RenderOutput(s.store)
	if err := s.copyImg(out); err != nil {
		s.showMessage(fmt.Sprintf("Failed: %v", err))
		return
	}
	s.saved = true
	s.showMessage("Copied to clipboard")
}

func (s *Shell) buildButtons() []*toolButton {
	tool := func(label string, t annotate.Tool) *toolButton {
		return &toolButton{
			label:  label,
			tool:   t,
			isTool: true,
			action: func() { s.editor.SetTool(t) },
		}
	}
	buttons := []*toolButton{
		tool("V:Select", annotate.ToolSelect),
		tool("R:Rect", annotate.ToolRectangle),
		tool("F:FillRect", annotate.ToolFilledRectangle),
		tool("O:Circle", annotate.ToolCircle),
		tool("C:FillCirc", annotate.ToolFilledCircle),
		tool("T:Text", annotate.ToolText),
		{label: "^Z:Undo", action: func() { s.editor.Undo() }},
		{label: "^+Z:Redo", action: func() { s.editor.Redo() }},
		{label: "+:Zoom in", action: func() { s.editor.ZoomIn() }},
		{label: "-:Zoom out", action: func() { s.editor.ZoomOut() }},
	}
	if s.save != nil {
		buttons = append(buttons, &toolButton{label: "^S:Save", action: s.doSave})
	}
	if s.copyImg != nil {
		buttons = append(buttons, &toolButton{label: "^C:Copy", action: s.doCopy})
	}
	return buttons
}

// layoutToolbar positions the buttons and color swatches. It runs once, on
// the event goroutine, before the first frame: toolbar geometry depends only
// on the final toolbar width, and computing it up front keeps the paint
// goroutine from writing rectangles the pointer handler reads.
func (s *Shell) layoutToolbar() {
	y := statusHeight
	for _, btn := range s.buttons {
		btn.rect = image.Rect(0, y, toolbarWidth, y+24)
		y += 24
	}

	y += 4
	x := 4
	s.swatchRects = s.swatchRects[:0]
	for range palette {
		s.swatchRects = append(s.swatchRects, image.Rect(x, y, x+16, y+16))
		x += 20
		if x+16 > toolbarWidth {
			x = 4
			y += 20
		}
	}
}

func (s *Shell) drawFrame(ctx context.Context, scr screen.Screen, w screen.Window, st frameState) {
	b, err := scr.NewBuffer(image.Point{X: st.width, Y: st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	frame := s.comp.Render(st.scene)
	if ctx.Err() != nil {
		return
	}
	draw.Draw(b.RGBA(), image.Rect(toolbarWidth, 0, st.width, st.height-statusHeight), frame, image.Point{}, draw.Src)

	if st.textActive {
		s.drawTextOverlay(b.RGBA(), st)
	}
	if ctx.Err() != nil {
		return
	}

	s.drawToolbar(b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}
	s.drawStatus(b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// drawTextOverlay renders the in-progress text with a caret at the anchor,
// scaled into viewport space.
func (s *Shell) drawTextOverlay(dst *image.RGBA, st frameState) {
	p := st.scene.Viewport().ToViewport(st.textAnchor)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(nrgba(s.theme.Foreground)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(toolbarWidth+int(math.Round(p.X)), int(math.Round(p.Y))),
	}
	d.DrawString(st.textInput + "|")
}

func (s *Shell) drawToolbar(dst *image.RGBA, st frameState) {
	t := s.theme
	draw.Draw(dst, image.Rect(0, 0, toolbarWidth, st.height), image.NewUniform(t.ToolbarBackground), image.Point{}, draw.Src)

	title := &font.Drawer{Dst: dst, Src: image.NewUniform(t.Foreground), Face: basicfont.Face7x13, Dot: fixed.P(4, 16)}
	title.DrawString(s.title)

	for i, btn := range s.buttons {
		bg := t.ButtonBackground
		switch {
		case i == st.pressedButton:
			bg = t.ButtonBackgroundPress
		case btn.isTool && btn.tool == st.tool:
			bg = t.ButtonBackgroundOn
		case i == st.hoverButton:
			bg = t.ButtonBackgroundHover
		}
		draw.Draw(dst, btn.rect, image.NewUniform(bg), image.Point{}, draw.Src)
		strokeRectOutline(dst, btn.rect, t.ButtonBorder)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(t.ButtonText), Face: basicfont.Face7x13,
			Dot: fixed.P(btn.rect.Min.X+4, btn.rect.Min.Y+16)}
		d.DrawString(btn.label)
	}

	for i, col := range palette {
		r := s.swatchRects[i]
		draw.Draw(dst, r, image.NewUniform(colorToNRGBA(col)), image.Point{}, draw.Src)
		if i == st.activeSwatch {
			strokeRectOutline(dst, r, t.Foreground)
		} else if i == st.hoverSwatch {
			strokeRectOutline(dst, r, t.ButtonBorder)
		}
	}
}

func (s *Shell) drawStatus(dst *image.RGBA, st frameState) {
	t := s.theme
	bar := image.Rect(toolbarWidth, st.height-statusHeight, st.width, st.height)
	draw.Draw(dst, bar, image.NewUniform(t.ToolbarBackground), image.Point{}, draw.Src)

	text := fmt.Sprintf("Zoom %.0f%%", st.scene.Viewport().Zoom*100)
	if st.message != "" && time.Now().Before(st.messageUntil) {
		text = st.message
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(t.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(bar.Min.X+8, bar.Min.Y+16)}
	d.DrawString(text)
}

func strokeRectOutline(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, col)
		dst.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, col)
		dst.SetRGBA(r.Max.X-1, y, col)
	}
}

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func colorToNRGBA(c annotate.Color) color.NRGBA {
	b := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(math.Round(v * 255))
	}
	return color.NRGBA{R: b(c.R), G: b(c.G), B: b(c.B), A: b(c.A)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dist(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Hypot(dx, dy)
}
