package editor

import (
	"math"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
)

// Pointer is a pointer event in canvas pixels.
type Pointer struct {
	X, Y      float64
	Button    mouse.Button
	Modifiers key.Modifiers
}

func (p Pointer) shift() bool { return p.Modifiers&key.ModShift != 0 }

func (p Pointer) screen() annotation.Point { return annotation.Point{X: p.X, Y: p.Y} }

// ToImage converts canvas pixels to image space.
func (e *Editor) ToImage(x, y float64) annotation.Point {
	return annotation.Point{X: (x - e.offset.X) / e.scale, Y: (y - e.offset.Y) / e.scale}
}

// hitTest returns the topmost annotation under p and whether p is on its
// outline.
func (e *Editor) hitTest(p annotation.Point) (idx int, border bool) {
	for i := len(e.annotations) - 1; i >= 0; i-- {
		a := &e.annotations[i]
		onBorder := geometry.IsOverBorder(p, a, e.scale)
		if onBorder || geometry.PointInAnnotation(p, a) {
			return i, onBorder
		}
	}
	return -1, false
}

// pick applies the click selection rules and reports whether something was
// hit and whether the hit was on its border.
func (e *Editor) pick(p annotation.Point, shift bool) (hit, border bool) {
	i, border := e.hitTest(p)
	if i < 0 {
		if !shift {
			e.ClearSelection()
		}
		return false, false
	}
	id := e.annotations[i].ID
	if shift {
		e.selectedID = ""
		if j := indexOf(e.selectedIDs, id); j >= 0 {
			e.selectedIDs = append(e.selectedIDs[:j:j], e.selectedIDs[j+1:]...)
		} else {
			e.selectedIDs = append(e.selectedIDs, id)
		}
	} else {
		e.selectedID = id
		e.selectedIDs = nil
	}
	return true, border
}

func indexOf(ids []string, id string) int {
	for i, s := range ids {
		if s == id {
			return i
		}
	}
	return -1
}

func (e *Editor) selected() (int, *annotation.Annotation) {
	i := annotation.Find(e.annotations, e.selectedID)
	if i < 0 {
		return -1, nil
	}
	return i, &e.annotations[i]
}

// PointerDown starts a gesture.
func (e *Editor) PointerDown(p Pointer) {
	if p.Button == mouse.ButtonMiddle || e.mode == ModePan {
		e.gesture = &Panning{Last: p.screen()}
		e.cursor = CursorGrabbing
		return
	}
	if p.Button != mouse.ButtonLeft {
		return
	}
	pos := e.ToImage(p.X, p.Y)

	if e.readOnly {
		if e.mode == ModeSelect {
			e.pick(pos, p.shift())
		}
		return
	}

	if _, a := e.selected(); a != nil {
		switch h := geometry.HandleAt(pos, a, e.scale); h {
		case geometry.HandleRotate:
			e.history.RecordChange(e.annotations)
			pivot := a.Center()
			e.gesture = &Rotating{
				ID:            a.ID,
				Pivot:         pivot,
				InitialAngle:  math.Atan2(pos.Y-pivot.Y, pos.X-pivot.X),
				StartRotation: a.Rotation,
			}
			e.cursor = CursorGrabbing
			return
		case geometry.HandleNone:
		default:
			e.history.RecordChange(e.annotations)
			e.gesture = &Resizing{ID: a.ID, Handle: h, Anchor: pos, Before: a.Clone()}
			e.cursor = cursorForHandle(h)
			return
		}
		if geometry.PointInAnnotation(pos, a) || geometry.IsOverBorder(pos, a, e.scale) {
			e.history.RecordChange(e.annotations)
			e.gesture = &Dragging{ID: a.ID, Last: pos}
			e.cursor = CursorMove
			return
		}
	}

	if e.mode == ModeSelect {
		hit, border := e.pick(pos, p.shift())
		if hit {
			if border && e.selectedID != "" {
				e.history.RecordChange(e.annotations)
				e.gesture = &Dragging{ID: e.selectedID, Last: pos}
				e.cursor = CursorMove
			}
			return
		}
		e.gesture = &BoxSelecting{Anchor: pos, Box: geometry.Box{X: pos.X, Y: pos.Y}}
		e.cursor = CursorCrosshair
		return
	}

	if e.mode.Draws() && e.image != nil && e.image.Contains(pos) {
		e.ClearSelection()
		draft := annotation.Annotation{Shape: e.mode.Shape(), X: pos.X, Y: pos.Y}
		if e.mode == ModePen {
			draft.Points = []annotation.Point{pos}
		}
		e.gesture = &Drawing{Anchor: pos, Draft: draft}
		e.cursor = CursorCrosshair
	}
}

// PointerMove advances the active gesture, or updates hover feedback when
// idle.
func (e *Editor) PointerMove(p Pointer) {
	if g, ok := e.gesture.(*Panning); ok {
		e.offset.X += p.X - g.Last.X
		e.offset.Y += p.Y - g.Last.Y
		g.Last = p.screen()
		e.cursor = CursorGrabbing
		return
	}
	pos := e.ToImage(p.X, p.Y)

	switch g := e.gesture.(type) {
	case Idle:
		e.hoverAt(pos)
	case *BoxSelecting:
		g.Box.Width = pos.X - g.Anchor.X
		g.Box.Height = pos.Y - g.Anchor.Y
	case *Dragging:
		dx, dy := pos.X-g.Last.X, pos.Y-g.Last.Y
		g.Last = pos
		e.modify(g.ID, func(a *annotation.Annotation) { a.Translate(dx, dy) })
	case *Resizing:
		next := resizeAnnotation(g.Before, g.Handle, g.Anchor, pos)
		e.modify(g.ID, func(a *annotation.Annotation) { *a = next })
	case *Rotating:
		angle := math.Atan2(pos.Y-g.Pivot.Y, pos.X-g.Pivot.X)
		rot := g.StartRotation + angle - g.InitialAngle
		e.modify(g.ID, func(a *annotation.Annotation) { a.Rotation = rot })
	case *Drawing:
		if g.Draft.Shape == annotation.Path {
			g.Draft.Points = append(g.Draft.Points, pos)
			g.Draft.FitPoints()
			return
		}
		g.Draft.Width = pos.X - g.Anchor.X
		g.Draft.Height = pos.Y - g.Anchor.Y
	}
}

func (e *Editor) modify(id string, fn func(*annotation.Annotation)) {
	e.update(func(list []annotation.Annotation) []annotation.Annotation {
		if i := annotation.Find(list, id); i >= 0 {
			fn(&list[i])
		}
		return list
	})
}

func (e *Editor) hoverAt(pos annotation.Point) {
	e.hover = geometry.HandleNone
	e.cursor = CursorDefault
	switch {
	case e.mode == ModePan:
		e.cursor = CursorGrab
		return
	case e.readOnly:
		if e.mode == ModeSelect {
			if i, _ := e.hitTest(pos); i >= 0 {
				e.cursor = CursorPointer
			}
		}
		return
	case e.mode.Draws():
		e.cursor = CursorCrosshair
	}
	_, a := e.selected()
	if a == nil {
		return
	}
	e.hover = geometry.HandleAt(pos, a, e.scale)
	if e.hover != geometry.HandleNone {
		e.cursor = cursorForHandle(e.hover)
	} else if geometry.PointInAnnotation(pos, a) {
		e.cursor = CursorMove
	}
}

// PointerUp finishes the active gesture.
func (e *Editor) PointerUp(p Pointer) {
	g := e.gesture
	e.gesture = Idle{}
	e.cursor = CursorDefault
	if e.mode == ModePan {
		e.cursor = CursorGrab
	}
	switch g := g.(type) {
	case *BoxSelecting:
		e.finishBoxSelect(g.Box.Normalize())
	case *Drawing:
		e.finishDrawing(g.Draft)
	}
}

// PointerLeave resolves any gesture as if the button had been released.
func (e *Editor) PointerLeave() { e.PointerUp(Pointer{}) }

func (e *Editor) finishBoxSelect(box geometry.Box) {
	var hits []string
	for i := range e.annotations {
		if geometry.BoxIntersectsAnnotation(box, &e.annotations[i]) {
			hits = append(hits, e.annotations[i].ID)
		}
	}
	e.selectedIDs = hits
	e.selectedID = ""
	if len(hits) == 1 {
		e.selectedID = hits[0]
	}
}

func (e *Editor) finishDrawing(draft annotation.Annotation) {
	if draft.Shape == annotation.Path {
		if len(draft.Points) <= 1 {
			return
		}
		draft.FitPoints()
	} else {
		if draft.Width == 0 && draft.Height == 0 {
			e.SetMode(ModeSelect)
			return
		}
		draft.Normalize()
	}
	draft.ID = annotation.NewID()
	draft.Comments = []annotation.Comment{}
	e.update(func(list []annotation.Annotation) []annotation.Annotation {
		return append(list, draft)
	})
	e.Select(draft.ID)
	e.SetMode(ModeSelect)
}

// Wheel zooms about the pointer at (x, y). A negative deltaY zooms in.
func (e *Editor) Wheel(x, y, deltaY float64) {
	if deltaY == 0 {
		return
	}
	dir := -1.0
	if deltaY < 0 {
		dir = 1
	}
	next := clampScale(e.scale * math.Exp(dir*wheelSpeed))
	if next == e.scale {
		return
	}
	ratio := next / e.scale
	e.offset.X = x - (x-e.offset.X)*ratio
	e.offset.Y = y - (y-e.offset.Y)*ratio
	e.scale = next
}
