package annotate

import "strings"

// Tool selects what a primary-button drag on the canvas does.
type Tool int

const (
	ToolSelect Tool = iota
	ToolRectangle
	ToolFilledRectangle
	ToolCircle
	ToolFilledCircle
	ToolText
)

// shapeKind maps a drawing tool to the annotation kind it produces.
func (t Tool) shapeKind() (Kind, bool) {
	switch t {
	case ToolRectangle:
		return KindRectangle, true
	case ToolFilledRectangle:
		return KindFilledRectangle, true
	case ToolCircle:
		return KindCircle, true
	case ToolFilledCircle:
		return KindFilledCircle, true
	default:
		return 0, false
	}
}

// session is the in-progress gesture. Exactly one variant is active at a
// time; idle is represented by a nil session so invalid flag combinations
// cannot be expressed.
type session interface{ session() }

type drawingShape struct {
	startImage Point
	endImage   Point
}

type movingAnnotation struct {
	index      int
	original   Annotation
	startImage Point
	// snapshot holds the pre-move sequence, committed to the undo stack on
	// release only if the drag changed geometry.
	snapshot []Annotation
}

type panning struct {
	startScreen Point
	panX, panY  float64
}

func (drawingShape) session()     {}
func (movingAnnotation) session() {}
func (panning) session()          {}

// TextRequest asks the host shell to collect text from the user. Index is the
// annotation being edited, or -1 for a new text annotation at Anchor.
type TextRequest struct {
	Index    int
	Anchor   Point
	Existing string
}

// Editor is the interaction state machine. It owns the store, the viewport
// and the transient gesture state, and mutates them in response to abstract
// input events delivered by whatever shell hosts the editor. All methods must
// run on a single goroutine; the editor performs no locking.
type Editor struct {
	store    *Store
	viewport Viewport

	tool     Tool
	color    Color
	selected int

	active  session
	midPan  *panning
	pending *TextRequest

	requestText func(TextRequest)
	redraw      func()
}

// EditorOption configures an Editor during creation.
type EditorOption func(*Editor)

// WithTextRequester registers the shell callback used to collect text input.
func WithTextRequester(fn func(TextRequest)) EditorOption {
	return func(e *Editor) { e.requestText = fn }
}

// WithRedraw registers the callback invoked whenever visual state changes.
func WithRedraw(fn func()) EditorOption {
	return func(e *Editor) { e.redraw = fn }
}

// WithColor sets the initial annotation color.
func WithColor(col Color) EditorOption {
	return func(e *Editor) { e.color = col }
}

// NewEditor creates an editor over store with the default tool (rectangle)
// and color (opaque red).
func NewEditor(store *Store, opts ...EditorOption) *Editor {
	e := &Editor{
		store:    store,
		viewport: NewViewport(),
		tool:     ToolRectangle,
		color:    Red,
		selected: -1,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Store returns the annotation store the editor mutates.
func (e *Editor) Store() *Store { return e.store }

// Viewport returns the current transform.
func (e *Editor) Viewport() *Viewport { return &e.viewport }

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches the active tool. Moving away from the select tool clears
// the selection.
func (e *Editor) SetTool(t Tool) {
	e.tool = t
	if t != ToolSelect {
		e.selected = -1
	}
	e.queueRedraw()
}

// Color returns the active annotation color.
func (e *Editor) Color() Color { return e.color }

// SetColor changes the color used for new annotations.
func (e *Editor) SetColor(col Color) { e.color = col }

// SelectedIndex returns the selected annotation index, or -1. The index is
// only meaningful while it is in range of the store.
func (e *Editor) SelectedIndex() int {
	if _, ok := e.store.At(e.selected); !ok {
		return -1
	}
	return e.selected
}

// PreviewAnnotation returns the in-progress shape while one is being drawn.
// The preview exists only for rendering; it is not part of the store.
func (e *Editor) PreviewAnnotation() (Annotation, bool) {
	d, ok := e.active.(*drawingShape)
	if !ok {
		return Annotation{}, false
	}
	kind, ok := e.tool.shapeKind()
	if !ok {
		return Annotation{}, false
	}
	return NewShape(kind, d.startImage, d.endImage, e.color), true
}

// PointerDown begins a gesture at the screen-space point.
func (e *Editor) PointerDown(screen Point) {
	img := e.viewport.ToImage(screen)

	if e.tool == ToolSelect {
		if hit := e.store.FindTopmostHit(img); hit >= 0 {
			changed := hit != e.selected
			orig, _ := e.store.At(hit)
			e.selected = hit
			e.active = &movingAnnotation{
				index:      hit,
				original:   orig,
				startImage: img,
				snapshot:   e.store.Snapshot(),
			}
			if changed {
				e.queueRedraw()
			}
			return
		}
		e.selected = -1
		e.active = &panning{
			startScreen: screen,
			panX:        e.viewport.PanX,
			panY:        e.viewport.PanY,
		}
		e.queueRedraw()
		return
	}

	if _, ok := e.tool.shapeKind(); ok {
		e.active = &drawingShape{startImage: img, endImage: img}
	}
}

// PointerMove tracks a gesture while the primary button is held.
func (e *Editor) PointerMove(screen Point) {
	switch st := e.active.(type) {
	case *drawingShape:
		st.endImage = e.viewport.ToImage(screen)
		e.queueRedraw()
	case *movingAnnotation:
		img := e.viewport.ToImage(screen)
		dx := img.X - st.startImage.X
		dy := img.Y - st.startImage.Y
		// Reapply the delta against the pre-move annotation rather than
		// accumulating per-event deltas, so skipped frames cannot drift.
		e.store.SetAt(st.index, st.original.Translate(dx, dy))
		e.queueRedraw()
	case *panning:
		e.applyPan(st, screen)
	}
}

// PointerUp ends the active gesture at the screen-space point.
func (e *Editor) PointerUp(screen Point) {
	switch st := e.active.(type) {
	case *drawingShape:
		st.endImage = e.viewport.ToImage(screen)
		kind, ok := e.tool.shapeKind()
		e.active = nil
		if !ok {
			return
		}
		e.store.PushUndoSnapshot()
		e.store.Add(NewShape(kind, st.startImage, st.endImage, e.color))
		// Hand the fresh shape straight to the select tool so it can be
		// moved without an extra toolbar trip.
		e.SetTool(ToolSelect)
		e.queueRedraw()
	case *movingAnnotation:
		e.active = nil
		if current, ok := e.store.At(st.index); ok {
			if !current.samePlace(st.original) {
				e.store.CommitSnapshot(st.snapshot)
			}
		}
		e.queueRedraw()
	case *panning:
		e.active = nil
	}
}

// Click handles a press-release without significant movement. pressCount is 1
// for single clicks and 2 for double clicks.
func (e *Editor) Click(pressCount int, screen Point) {
	if pressCount != 1 && pressCount != 2 {
		return
	}
	img := e.viewport.ToImage(screen)

	if e.tool == ToolSelect {
		hit := e.store.FindTopmostHit(img)
		if pressCount == 2 && hit >= 0 {
			if ann, ok := e.store.At(hit); ok && ann.Kind == KindText {
				e.selected = hit
				e.openTextEntry(TextRequest{Index: hit, Anchor: ann.P1, Existing: ann.Text})
				e.queueRedraw()
				return
			}
		}
		e.selected = hit
		e.queueRedraw()
		return
	}

	if pressCount == 1 && e.tool == ToolText && e.active == nil {
		e.openTextEntry(TextRequest{Index: -1, Anchor: img})
	}
}

func (e *Editor) openTextEntry(req TextRequest) {
	e.pending = &req
	if e.requestText != nil {
		e.requestText(req)
	}
}

// CommitText finishes a text-entry interaction. Empty or whitespace-only text
// is discarded with no mutation and no undo entry.
func (e *Editor) CommitText(text string) {
	req := e.pending
	e.pending = nil
	if req == nil {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	e.store.PushUndoSnapshot()
	if ann, ok := e.store.At(req.Index); ok && req.Index >= 0 {
		ann.Text = text
		e.store.SetAt(req.Index, ann)
	} else {
		e.store.Add(NewText(text, req.Anchor, e.color))
		e.SetTool(ToolSelect)
	}
	e.queueRedraw()
}

// CancelText abandons a pending text-entry interaction.
func (e *Editor) CancelText() {
	e.pending = nil
}

// MiddleDown starts the secondary pan gesture. It works with any tool and
// shares the pan math with select-tool panning.
func (e *Editor) MiddleDown(screen Point) {
	e.midPan = &panning{
		startScreen: screen,
		panX:        e.viewport.PanX,
		panY:        e.viewport.PanY,
	}
}

// MiddleMove updates the secondary pan gesture.
func (e *Editor) MiddleMove(screen Point) {
	if e.midPan != nil {
		e.applyPan(e.midPan, screen)
	}
}

// MiddleUp ends the secondary pan gesture.
func (e *Editor) MiddleUp(screen Point) {
	if e.midPan != nil {
		e.applyPan(e.midPan, screen)
		e.midPan = nil
	}
}

// applyPan recomputes the pan from the drag-start values. Pan is committed
// per event and is never undoable.
func (e *Editor) applyPan(p *panning, screen Point) {
	if e.viewport.Scale == 0 {
		return
	}
	e.viewport.PanX = p.panX - (screen.X-p.startScreen.X)/e.viewport.Scale
	e.viewport.PanY = p.panY - (screen.Y-p.startScreen.Y)/e.viewport.Scale
	e.queueRedraw()
}

// DeleteSelected removes the selected annotation, recording an undo entry.
// It reports whether anything was removed.
func (e *Editor) DeleteSelected() bool {
	idx := e.SelectedIndex()
	if idx < 0 {
		return false
	}
	e.store.PushUndoSnapshot()
	e.store.RemoveAt(idx)
	e.selected = -1
	e.queueRedraw()
	return true
}

// Undo reverses the latest edit and clears the selection.
func (e *Editor) Undo() bool {
	if !e.store.Undo() {
		return false
	}
	e.selected = -1
	e.queueRedraw()
	return true
}

// Redo reapplies the latest undone edit and clears the selection.
func (e *Editor) Redo() bool {
	if !e.store.Redo() {
		return false
	}
	e.selected = -1
	e.queueRedraw()
	return true
}

// ScrollModifier identifies which modifier accompanied a scroll event.
type ScrollModifier int

const (
	ScrollPlain ScrollModifier = iota
	ScrollZoom
	ScrollHorizontal
)

// Scroll routes a wheel event: the zoom modifier zooms, the horizontal
// modifier pans on the x axis and an unmodified wheel pans vertically.
func (e *Editor) Scroll(delta float64, mod ScrollModifier) {
	switch mod {
	case ScrollZoom:
		e.viewport.WheelZoom(delta)
	case ScrollHorizontal:
		e.viewport.ScrollPan(delta, true)
	default:
		e.viewport.ScrollPan(delta, false)
	}
	e.queueRedraw()
}

// ZoomIn applies the toolbar zoom-in step.
func (e *Editor) ZoomIn() {
	e.viewport.ZoomIn()
	e.queueRedraw()
}

// ZoomOut applies the toolbar zoom-out step.
func (e *Editor) ZoomOut() {
	e.viewport.ZoomOut()
	e.queueRedraw()
}

func (e *Editor) queueRedraw() {
	if e.redraw != nil {
		e.redraw()
	}
}
