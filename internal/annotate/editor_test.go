package annotate

import (
	"reflect"
	"testing"
)

// newTestEditor returns an editor whose viewport is the identity transform so
// screen and image coordinates coincide.
func newTestEditor(opts ...EditorOption) *Editor {
	return NewEditor(NewStore(), opts...)
}

func TestDrawGestureAppendsShapeAndSwitchesToSelect(t *testing.T) {
	e := newTestEditor()
	if e.Tool() != ToolRectangle {
		t.Fatalf("default tool = %v, want rectangle", e.Tool())
	}

	e.PointerDown(Point{X: 10, Y: 10})
	e.PointerMove(Point{X: 30, Y: 20})
	if _, ok := e.PreviewAnnotation(); !ok {
		t.Error("expected a preview while dragging")
	}
	if e.Store().Len() != 0 {
		t.Error("no annotation may exist before release")
	}
	e.PointerUp(Point{X: 50, Y: 40})

	if e.Store().Len() != 1 {
		t.Fatalf("store len = %d, want 1", e.Store().Len())
	}
	got := e.Store().Annotations()[0]
	want := NewShape(KindRectangle, Point{X: 10, Y: 10}, Point{X: 50, Y: 40}, Red)
	if got != want {
		t.Errorf("annotation = %+v, want %+v", got, want)
	}
	if e.Tool() != ToolSelect {
		t.Errorf("tool after draw = %v, want select", e.Tool())
	}
	if !e.Store().CanUndo() {
		t.Error("drawing must record an undo entry")
	}
	if _, ok := e.PreviewAnnotation(); ok {
		t.Error("preview must clear after release")
	}
}

func TestMoveIsIdempotentAndLazyCommit(t *testing.T) {
	e := newTestEditor()
	e.Store().Add(rect(10, 10, 30, 30))
	e.SetTool(ToolSelect)
	before := e.Store().Snapshot()

	// Drag A -> B -> back to A.
	e.PointerDown(Point{X: 20, Y: 20})
	e.PointerMove(Point{X: 60, Y: 60})
	e.PointerMove(Point{X: 60, Y: 60}) // repeated frame must not accumulate
	e.PointerMove(Point{X: 20, Y: 20})
	e.PointerUp(Point{X: 20, Y: 20})

	if !reflect.DeepEqual(e.Store().Annotations(), before) {
		t.Errorf("round-trip drag changed geometry: %+v", e.Store().Annotations())
	}
	if e.Store().CanUndo() {
		t.Error("unchanged geometry must not commit an undo entry")
	}

	// A real move commits exactly one entry holding the pre-move state.
	e.PointerDown(Point{X: 20, Y: 20})
	e.PointerMove(Point{X: 25, Y: 21})
	e.PointerUp(Point{X: 25, Y: 21})
	if !e.Store().CanUndo() {
		t.Fatal("changed geometry must commit an undo entry")
	}
	e.Undo()
	if !reflect.DeepEqual(e.Store().Annotations(), before) {
		t.Errorf("undo after move should restore pre-move state, got %+v", e.Store().Annotations())
	}
}

func TestSelectHitAndMiss(t *testing.T) {
	e := newTestEditor()
	e.Store().Add(rect(0, 0, 10, 10))
	e.Store().Add(rect(5, 5, 15, 15))
	e.SetTool(ToolSelect)

	e.Click(1, Point{X: 7, Y: 7})
	if e.SelectedIndex() != 1 {
		t.Errorf("selected = %d, want 1 (topmost wins)", e.SelectedIndex())
	}

	e.Click(1, Point{X: 200, Y: 200})
	if e.SelectedIndex() != -1 {
		t.Errorf("miss click should clear selection, got %d", e.SelectedIndex())
	}
}

func TestSwitchingOffSelectClearsSelection(t *testing.T) {
	e := newTestEditor()
	e.Store().Add(rect(0, 0, 10, 10))
	e.SetTool(ToolSelect)
	e.Click(1, Point{X: 5, Y: 5})
	if e.SelectedIndex() != 0 {
		t.Fatalf("selected = %d, want 0", e.SelectedIndex())
	}
	e.SetTool(ToolCircle)
	if e.SelectedIndex() != -1 {
		t.Error("selection must clear when leaving the select tool")
	}
}

func TestPanOnEmptySpaceIsNotUndoable(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolSelect)

	e.PointerDown(Point{X: 50, Y: 50})
	e.PointerMove(Point{X: 40, Y: 30})
	e.PointerUp(Point{X: 40, Y: 30})

	vp := e.Viewport()
	if vp.PanX != 10 || vp.PanY != 20 {
		t.Errorf("pan = (%v,%v), want (10,20)", vp.PanX, vp.PanY)
	}
	if e.Store().CanUndo() {
		t.Error("panning must never record undo entries")
	}
}

func TestMiddleButtonPanWorksWithAnyTool(t *testing.T) {
	e := newTestEditor()
	if e.Tool() == ToolSelect {
		t.Fatal("precondition: default tool is not select")
	}
	e.MiddleDown(Point{X: 0, Y: 0})
	e.MiddleMove(Point{X: -15, Y: 5})
	e.MiddleUp(Point{X: -15, Y: 5})

	vp := e.Viewport()
	if vp.PanX != 15 || vp.PanY != -5 {
		t.Errorf("pan = (%v,%v), want (15,-5)", vp.PanX, vp.PanY)
	}
}

func TestTextEntryNewAnnotation(t *testing.T) {
	var req *TextRequest
	e := newTestEditor(WithTextRequester(func(r TextRequest) { req = &r }))
	e.SetTool(ToolText)

	e.Click(1, Point{X: 12, Y: 34})
	if req == nil {
		t.Fatal("text tool click must request text input")
	}
	if req.Index != -1 || req.Existing != "" {
		t.Errorf("request = %+v, want new-annotation request", req)
	}

	e.CommitText("  hello  ")
	if e.Store().Len() != 1 {
		t.Fatalf("store len = %d, want 1", e.Store().Len())
	}
	got := e.Store().Annotations()[0]
	if got.Text != "hello" || got.P1 != (Point{X: 12, Y: 34}) || got.P1 != got.P2 {
		t.Errorf("text annotation = %+v", got)
	}
	if e.Tool() != ToolSelect {
		t.Errorf("tool after text commit = %v, want select", e.Tool())
	}
}

func TestTextEntryEmptyDiscarded(t *testing.T) {
	e := newTestEditor(WithTextRequester(func(TextRequest) {}))
	e.SetTool(ToolText)
	e.Click(1, Point{X: 0, Y: 0})
	e.CommitText("   ")
	if e.Store().Len() != 0 {
		t.Error("whitespace-only text must be discarded")
	}
	if e.Store().CanUndo() {
		t.Error("discarded text must not record an undo entry")
	}
}

func TestDoubleClickEditsExistingText(t *testing.T) {
	var req *TextRequest
	e := newTestEditor(WithTextRequester(func(r TextRequest) { req = &r }))
	e.Store().Add(NewText("old", Point{X: 50, Y: 50}, Red))
	e.SetTool(ToolSelect)

	e.Click(2, Point{X: 55, Y: 45})
	if req == nil {
		t.Fatal("double click on text must open the editor")
	}
	if req.Index != 0 || req.Existing != "old" {
		t.Errorf("request = %+v, want index 0 with existing text", req)
	}

	e.CommitText("new")
	if got := e.Store().Annotations()[0].Text; got != "new" {
		t.Errorf("text after edit = %q, want %q", got, "new")
	}
	if e.Store().Len() != 1 {
		t.Error("editing must not append a second annotation")
	}
	if !e.Store().CanUndo() {
		t.Error("text edit must record an undo entry")
	}
}

func TestCancelTextLeavesStoreUntouched(t *testing.T) {
	e := newTestEditor(WithTextRequester(func(TextRequest) {}))
	e.SetTool(ToolText)
	e.Click(1, Point{X: 1, Y: 1})
	e.CancelText()
	e.CommitText("late") // no pending request anymore
	if e.Store().Len() != 0 {
		t.Error("cancelled entry must not mutate the store")
	}
}

func TestDeleteSelected(t *testing.T) {
	e := newTestEditor()
	e.Store().Add(rect(0, 0, 10, 10))
	e.SetTool(ToolSelect)

	if e.DeleteSelected() {
		t.Error("delete without selection must be a no-op")
	}

	e.Click(1, Point{X: 5, Y: 5})
	if !e.DeleteSelected() {
		t.Fatal("delete with a valid selection failed")
	}
	if e.Store().Len() != 0 {
		t.Error("annotation not removed")
	}
	if e.SelectedIndex() != -1 {
		t.Error("selection must clear after delete")
	}
	if !e.Store().CanUndo() {
		t.Error("delete must record an undo entry")
	}
}

func TestUndoClearsSelection(t *testing.T) {
	e := newTestEditor()
	e.PointerDown(Point{X: 0, Y: 0})
	e.PointerUp(Point{X: 10, Y: 10})
	e.Click(1, Point{X: 5, Y: 5})
	if e.SelectedIndex() != 0 {
		t.Fatalf("selected = %d, want 0", e.SelectedIndex())
	}
	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if e.SelectedIndex() != -1 {
		t.Error("undo must clear the selection")
	}
}

func TestScrollRouting(t *testing.T) {
	e := newTestEditor()
	e.Scroll(-1, ScrollZoom)
	if got := e.Viewport().Zoom; got != 1.15 {
		t.Errorf("zoom after zoom-scroll = %v, want 1.15", got)
	}
	e.Viewport().Zoom = 1
	e.Viewport().Scale = 1

	e.Scroll(1, ScrollHorizontal)
	if e.Viewport().PanX != 30 {
		t.Errorf("PanX = %v, want 30", e.Viewport().PanX)
	}
	e.Scroll(1, ScrollPlain)
	if e.Viewport().PanY != 30 {
		t.Errorf("PanY = %v, want 30", e.Viewport().PanY)
	}
}

func TestMoveSurvivesStaleSelection(t *testing.T) {
	e := newTestEditor()
	e.Store().Add(rect(0, 0, 10, 10))
	e.SetTool(ToolSelect)
	e.PointerDown(Point{X: 5, Y: 5})
	// The annotation disappears mid-drag; release must not panic or commit.
	e.Store().RemoveAt(0)
	e.PointerUp(Point{X: 50, Y: 50})
	if e.Store().CanUndo() {
		t.Error("release with a stale index must not commit an undo entry")
	}
}
