package editor

import (
	"math"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
)

func blankImage(w, h int) *annotation.CanvasImage {
	return annotation.NewCanvasImage("blank.png", newRGBA(w, h), nil)
}

func newTestEditor(opts ...Option) *Editor {
	base := []Option{WithImage(blankImage(800, 600)), WithCanvasSize(800, 600)}
	return New(append(base, opts...)...)
}

func left(x, y float64) Pointer { return Pointer{X: x, Y: y, Button: mouse.ButtonLeft} }

func gesture(e *Editor, from, to annotation.Point, steps int) {
	e.PointerDown(left(from.X, from.Y))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		e.PointerMove(left(from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t))
	}
	e.PointerUp(left(to.X, to.Y))
}

func pt(x, y float64) annotation.Point { return annotation.Point{X: x, Y: y} }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func box(a annotation.Annotation) [4]float64 { return [4]float64{a.X, a.Y, a.Width, a.Height} }

func approxBox(a annotation.Annotation, want [4]float64) bool {
	got := box(a)
	for i := range got {
		if !approx(got[i], want[i]) {
			return false
		}
	}
	return true
}

func only(t *testing.T, e *Editor) annotation.Annotation {
	t.Helper()
	list := e.Annotations()
	if len(list) != 1 {
		t.Fatalf("expected one annotation, got %d", len(list))
	}
	return list[0]
}

func TestInitialImageIsCentred(t *testing.T) {
	e := New(WithImage(blankImage(400, 300)))
	if e.Offset() != pt(200, 150) || e.Scale() != 1 {
		t.Fatalf("offset %v scale %v", e.Offset(), e.Scale())
	}
	if w, h := e.CanvasSize(); w != DefaultCanvasWidth || h != DefaultCanvasHeight {
		t.Fatalf("default canvas %vx%v", w, h)
	}
}

func TestDrawRectangleCommitsAndSelects(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeRectangle)
	gesture(e, pt(50, 50), pt(150, 150), 4)

	a := only(t, e)
	if box(a) != [4]float64{50, 50, 100, 100} || a.Shape != annotation.Rectangle {
		t.Fatalf("annotation %+v", a)
	}
	if a.ID == "" || e.Selected() != a.ID {
		t.Fatalf("new annotation not selected: id=%q selected=%q", a.ID, e.Selected())
	}
	if e.Mode() != ModeSelect {
		t.Fatalf("mode = %v, want select", e.Mode())
	}
	if undo, _ := e.History().Depth(); undo != 1 {
		t.Fatalf("history depth %d", undo)
	}
	if _, ok := e.Gesture().(Idle); !ok {
		t.Fatalf("gesture not idle: %T", e.Gesture())
	}
}

func TestResizeThenUndoRedo(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeRectangle)
	gesture(e, pt(50, 50), pt(150, 150), 2)

	gesture(e, pt(150, 150), pt(170, 170), 3)
	if a := only(t, e); box(a) != [4]float64{50, 50, 120, 120} {
		t.Fatalf("after resize %+v", box(a))
	}
	e.Undo()
	if a := only(t, e); box(a) != [4]float64{50, 50, 100, 100} {
		t.Fatalf("after undo %+v", box(a))
	}
	if e.Selected() != "" {
		t.Fatalf("undo must clear the selection")
	}
	e.Redo()
	if a := only(t, e); box(a) != [4]float64{50, 50, 120, 120} {
		t.Fatalf("after redo %+v", box(a))
	}
}

func TestDrawBackwardsNormalizes(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeRectangle)
	gesture(e, pt(10, 10), pt(5, 5), 1)
	if a := only(t, e); box(a) != [4]float64{5, 5, 5, 5} {
		t.Fatalf("got %+v", box(a))
	}
}

func TestDrawLineKeepsDirection(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeArrow)
	gesture(e, pt(100, 100), pt(40, 130), 2)
	if a := only(t, e); box(a) != [4]float64{100, 100, -60, 30} {
		t.Fatalf("got %+v", box(a))
	}
}

func TestZeroSizeDraftIsDiscarded(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeCircle)
	gesture(e, pt(10, 10), pt(10, 10), 1)
	if n := len(e.Annotations()); n != 0 {
		t.Fatalf("degenerate draft committed: %d", n)
	}
	if e.History().CanUndo() {
		t.Fatalf("discarded draft recorded history")
	}

	e.SetMode(ModePen)
	e.PointerDown(left(20, 20))
	e.PointerUp(left(20, 20))
	if n := len(e.Annotations()); n != 0 || e.Mode() != ModePen {
		t.Fatalf("single point pen stroke committed or changed mode")
	}
}

func TestDrawOutsideImageIgnored(t *testing.T) {
	e := New(WithImage(blankImage(100, 100)))
	e.SetMode(ModeRectangle)
	off := e.Offset()
	gesture(e, pt(off.X-20, off.Y-20), pt(off.X+50, off.Y+50), 2)
	if n := len(e.Annotations()); n != 0 {
		t.Fatalf("draw started outside the image")
	}
}

func TestPenStroke(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModePen)
	e.PointerDown(left(10, 10))
	e.PointerMove(left(30, 5))
	e.PointerMove(left(20, 40))
	e.PointerUp(left(20, 40))
	a := only(t, e)
	if a.Shape != annotation.Path || len(a.Points) != 3 {
		t.Fatalf("path %+v", a)
	}
	if box(a) != [4]float64{10, 5, 20, 35} {
		t.Fatalf("bbox %+v", box(a))
	}
	if e.Mode() != ModeSelect {
		t.Fatalf("mode = %v", e.Mode())
	}
}

func TestPointerLeaveCommitsDraft(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeLine)
	e.PointerDown(left(10, 10))
	e.PointerMove(left(60, 10))
	e.PointerLeave()
	if a := only(t, e); a.Shape != annotation.Line {
		t.Fatalf("got %+v", a)
	}
	if _, ok := e.Gesture().(Idle); !ok {
		t.Fatalf("gesture stuck: %T", e.Gesture())
	}
}

func TestBoxSelectHitsArrowStart(t *testing.T) {
	arrow := annotation.Annotation{ID: "arrow", Shape: annotation.Arrow, X: 50, Y: 50, Width: 100, Height: 100}
	rect := annotation.Annotation{ID: "rect", Shape: annotation.Rectangle, X: 300, Y: 300, Width: 20, Height: 20}
	e := newTestEditor(WithAnnotations([]annotation.Annotation{arrow, rect}))
	gesture(e, pt(40, 40), pt(60, 60), 2)
	if e.Selected() != "arrow" {
		t.Fatalf("single selection = %q", e.Selected())
	}
	if ids := e.SelectedIDs(); len(ids) != 1 || ids[0] != "arrow" {
		t.Fatalf("multi selection = %v", ids)
	}

	gesture(e, pt(500, 500), pt(0, 0), 2)
	if ids := e.SelectedIDs(); len(ids) != 2 || e.Selected() != "" {
		t.Fatalf("expected both selected, got %v / %q", ids, e.Selected())
	}
	if e.History().CanUndo() {
		t.Fatalf("selection must not record history")
	}
}

func TestClickSelectionAndShiftToggle(t *testing.T) {
	list := []annotation.Annotation{
		{ID: "a", Shape: annotation.Rectangle, X: 0, Y: 0, Width: 100, Height: 100},
		{ID: "b", Shape: annotation.Rectangle, X: 50, Y: 50, Width: 100, Height: 100},
	}
	e := newTestEditor(WithAnnotations(list))
	e.PointerDown(left(75, 75))
	e.PointerUp(left(75, 75))
	if e.Selected() != "b" {
		t.Fatalf("topmost annotation not picked: %q", e.Selected())
	}

	e.ClearSelection()
	shift := Pointer{X: 20, Y: 20, Button: mouse.ButtonLeft, Modifiers: key.ModShift}
	e.PointerDown(shift)
	e.PointerUp(shift)
	shift.X, shift.Y = 120, 120
	e.PointerDown(shift)
	e.PointerUp(shift)
	if ids := e.SelectedIDs(); len(ids) != 2 || e.Selected() != "" {
		t.Fatalf("shift toggle gave %v / %q", ids, e.Selected())
	}
	e.PointerDown(shift)
	e.PointerUp(shift)
	if ids := e.SelectedIDs(); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("second shift click should remove b: %v", ids)
	}
}

func TestDragMovesIncrementally(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, X: 50, Y: 50, Width: 100, Height: 100}}
	e := newTestEditor(WithAnnotations(list))
	e.Select("r")
	gesture(e, pt(100, 100), pt(120, 105), 5)
	if a := only(t, e); !approxBox(a, [4]float64{70, 55, 100, 100}) {
		t.Fatalf("after drag %+v", box(a))
	}
	if undo, _ := e.History().Depth(); undo != 1 {
		t.Fatalf("drag should record exactly one entry, got %d", undo)
	}
}

func TestBorderClickStartsDrag(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, X: 50, Y: 50, Width: 100, Height: 100}}
	e := newTestEditor(WithAnnotations(list))
	e.PointerDown(left(52, 100))
	if _, ok := e.Gesture().(*Dragging); !ok {
		t.Fatalf("border click should drag, got %T", e.Gesture())
	}
	e.PointerMove(left(62, 100))
	e.PointerUp(left(62, 100))
	if a := only(t, e); a.X != 60 {
		t.Fatalf("x = %v", a.X)
	}
}

func TestRotateHandle(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, X: 50, Y: 50, Width: 100, Height: 100}}
	e := newTestEditor(WithAnnotations(list))
	e.Select("r")
	e.PointerDown(left(100, 30))
	if _, ok := e.Gesture().(*Rotating); !ok {
		t.Fatalf("expected rotating, got %T", e.Gesture())
	}
	e.PointerMove(left(200, 100))
	e.PointerUp(left(200, 100))
	if a := only(t, e); !approx(a.Rotation, math.Pi/2) {
		t.Fatalf("rotation %v", a.Rotation)
	}
}

func TestRotatedResizeKeepsPivot(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, X: 50, Y: 50, Width: 100, Height: 100, Rotation: math.Pi / 2}}
	e := newTestEditor(WithAnnotations(list))
	e.Select("r")
	// The local east handle sits below the centre after a quarter turn.
	e.PointerDown(left(100, 150))
	r, ok := e.Gesture().(*Resizing)
	if !ok || r.Handle != geometry.HandleE {
		t.Fatalf("expected east resize, got %#v", e.Gesture())
	}
	e.PointerMove(left(100, 170))
	e.PointerUp(left(100, 170))
	a := only(t, e)
	if !approxBox(a, [4]float64{40, 50, 120, 100}) {
		t.Fatalf("got %+v", box(a))
	}
	if c := a.Center(); !approx(c.X, 100) || !approx(c.Y, 100) {
		t.Fatalf("centre drifted to %v", c)
	}
}

func TestMiddleButtonPansWithoutModeChange(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeRectangle)
	e.PointerDown(Pointer{X: 10, Y: 10, Button: mouse.ButtonMiddle})
	e.PointerMove(Pointer{X: 30, Y: 5})
	e.PointerUp(Pointer{X: 30, Y: 5})
	if e.Offset() != pt(20, -5) {
		t.Fatalf("offset %v", e.Offset())
	}
	if e.Mode() != ModeRectangle || len(e.Annotations()) != 0 {
		t.Fatalf("pan changed mode or drew")
	}
}

func TestPanModeClearsSelectionAndRestores(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, Width: 10, Height: 10}}
	e := newTestEditor(WithAnnotations(list))
	e.SetMode(ModeArrow)
	e.Select("r")
	e.StartTemporaryPan()
	if e.Mode() != ModePan || e.Selected() != "" {
		t.Fatalf("temporary pan: mode %v selected %q", e.Mode(), e.Selected())
	}
	e.EndTemporaryPan()
	if e.Mode() != ModeArrow {
		t.Fatalf("restored mode %v", e.Mode())
	}
}

func TestSpaceTapKeepsChosenPan(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModePan)
	e.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirPress})
	e.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirRelease})
	if e.Mode() != ModePan {
		t.Fatalf("mode after space tap = %v, want pan", e.Mode())
	}

	e.SetMode(ModeCircle)
	e.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirPress})
	if e.Mode() != ModePan {
		t.Fatalf("space press mode = %v", e.Mode())
	}
	e.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirRelease})
	if e.Mode() != ModeCircle {
		t.Fatalf("space release mode = %v", e.Mode())
	}
}

func TestSetModeDuringTemporaryPan(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeArrow)
	e.StartTemporaryPan()
	e.SetMode(ModePan)
	e.EndTemporaryPan()
	if e.Mode() != ModePan {
		t.Fatalf("explicit pan undone by key release: %v", e.Mode())
	}
}

func TestWheelZoomKeepsPointerFixed(t *testing.T) {
	e := newTestEditor()
	e.SetView(pt(37, -12), 1.5)
	before := e.ToImage(100, 100)
	e.Wheel(100, 100, -120)
	if e.Scale() <= 1.5 {
		t.Fatalf("scroll up should zoom in, scale %v", e.Scale())
	}
	after := e.ToImage(100, 100)
	if !approx(before.X, after.X) || !approx(before.Y, after.Y) {
		t.Fatalf("anchor moved from %v to %v", before, after)
	}
	e.Wheel(100, 100, 3)
	if !approx(e.Scale(), 1.5) {
		t.Fatalf("zoom out did not invert zoom in: %v", e.Scale())
	}
}

func TestWheelAtBoundIsNoop(t *testing.T) {
	e := newTestEditor()
	e.SetView(pt(5, 5), MaxScale)
	e.Wheel(100, 100, -1)
	if e.Scale() != MaxScale || e.Offset() != pt(5, 5) {
		t.Fatalf("clamped wheel changed view: %v %v", e.Scale(), e.Offset())
	}
}

func TestZoomButtonsClamp(t *testing.T) {
	e := newTestEditor()
	e.ZoomIn()
	if !approx(e.Scale(), 1.2) {
		t.Fatalf("zoom in %v", e.Scale())
	}
	for i := 0; i < 50; i++ {
		e.ZoomIn()
	}
	if e.Scale() != MaxScale {
		t.Fatalf("max %v", e.Scale())
	}
	for i := 0; i < 100; i++ {
		e.ZoomOut()
	}
	if e.Scale() != MinScale {
		t.Fatalf("min %v", e.Scale())
	}
}

func TestDeletePrefersMultiSelection(t *testing.T) {
	list := []annotation.Annotation{
		{ID: "a", Shape: annotation.Rectangle, Width: 1, Height: 1},
		{ID: "b", Shape: annotation.Rectangle, Width: 1, Height: 1},
		{ID: "c", Shape: annotation.Rectangle, Width: 1, Height: 1},
	}
	e := newTestEditor(WithAnnotations(list))
	e.SelectMany([]string{"a", "c"})
	e.DeleteSelection()
	if got := e.Annotations(); len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("remaining %+v", got)
	}
	if len(e.SelectedIDs()) != 0 {
		t.Fatalf("selection not cleared")
	}
	e.Undo()
	if len(e.Annotations()) != 3 {
		t.Fatalf("undo did not restore deleted annotations")
	}
}

func TestSceneCarriesDraftAndBox(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeCircle)
	e.PointerDown(left(10, 10))
	e.PointerMove(left(40, 30))
	s := e.Scene()
	if s.Draft == nil || s.Draft.Width != 30 || s.Draft.Height != 20 {
		t.Fatalf("draft %+v", s.Draft)
	}
	e.PointerUp(left(40, 30))

	e.ClearSelection()
	e.PointerDown(left(500, 500))
	e.PointerMove(left(450, 480))
	s = e.Scene()
	if s.SelectionBox == nil || s.SelectionBox.Width != -50 {
		t.Fatalf("selection box %+v", s.SelectionBox)
	}
}

func TestHoverHandleCursor(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, X: 50, Y: 50, Width: 100, Height: 100}}
	e := newTestEditor(WithAnnotations(list))
	e.Select("r")
	e.PointerMove(left(150, 150))
	if e.HoverHandle() != geometry.HandleSE || e.Cursor() != CursorResizeNWSE {
		t.Fatalf("hover %v cursor %v", e.HoverHandle(), e.Cursor())
	}
	e.PointerMove(left(100, 30))
	if e.Cursor() != CursorGrab {
		t.Fatalf("rotate cursor %v", e.Cursor())
	}
}

func TestCommentsRecordHistory(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, Width: 10, Height: 10}}
	e := newTestEditor(WithAnnotations(list))
	c, err := e.AddComment("r", "  looks off  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.Text != "looks off" {
		t.Fatalf("text %q", c.Text)
	}
	if _, err := e.AddComment("r", "   "); err != annotation.ErrEmptyComment {
		t.Fatalf("empty comment err = %v", err)
	}
	if _, err := e.AddComment("missing", "x"); err != annotation.ErrNotFound {
		t.Fatalf("missing annotation err = %v", err)
	}
	if err := e.DeleteComment("r", c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if undo, _ := e.History().Depth(); undo != 2 {
		t.Fatalf("history depth %d", undo)
	}
	e.Undo()
	a, _ := e.Annotation("r")
	if len(a.Comments) != 1 {
		t.Fatalf("undo did not restore comment")
	}
}

func TestMinimizeSkipsHistory(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeRectangle)
	gesture(e, pt(100, 100), pt(200, 200), 3)
	id := only(t, e).ID
	if _, err := e.AddComment(id, "first"); err != nil {
		t.Fatal(err)
	}
	e.Undo()
	undo, redo := e.History().Depth()
	if undo != 1 || redo != 1 {
		t.Fatalf("depth before minimise = %d/%d", undo, redo)
	}
	if err := e.SetCommentsMinimized(id, true); err != nil {
		t.Fatal(err)
	}
	if u, r := e.History().Depth(); u != undo || r != redo {
		t.Fatalf("minimise changed history depth to %d/%d", u, r)
	}
	e.Redo()
	a, _ := e.Annotation(id)
	if len(a.Comments) != 1 {
		t.Fatalf("redo after minimise lost the comment")
	}
	if !a.MinimizedComments {
		t.Fatalf("redo reset the panel state")
	}
}

func TestReadOnly(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, X: 50, Y: 50, Width: 100, Height: 100}}
	e := newTestEditor(WithReadOnly(true), WithAnnotations(list))

	e.SetMode(ModeRectangle)
	if e.Mode() != ModeSelect {
		t.Fatalf("draw mode entered in read-only view")
	}
	if e.Key(key.Event{Rune: '3', Code: key.Code3, Direction: key.DirPress}) {
		t.Fatalf("draw shortcut consumed")
	}
	e.PointerDown(left(100, 100))
	e.PointerMove(left(130, 130))
	e.PointerUp(left(130, 130))
	if e.Selected() != "r" {
		t.Fatalf("read-only click should select")
	}
	if a := only(t, e); a.X != 50 {
		t.Fatalf("read-only drag moved annotation")
	}
	e.DeleteSelection()
	e.Key(key.Event{Code: key.CodeDeleteForward, Direction: key.DirPress})
	if len(e.Annotations()) != 1 {
		t.Fatalf("read-only delete removed annotation")
	}
	if _, err := e.AddComment("r", "hi"); err != ErrReadOnly {
		t.Fatalf("comment err = %v", err)
	}
	if err := e.DeleteComment("r", "x"); err != ErrReadOnly {
		t.Fatalf("delete comment err = %v", err)
	}
	if !e.Key(key.Event{Rune: '2', Code: key.Code2, Direction: key.DirPress}) || e.Mode() != ModePan {
		t.Fatalf("pan shortcut not honoured in read-only view")
	}
	if s := e.Scene(); !s.ReadOnly {
		t.Fatalf("scene not marked read-only")
	}
}
