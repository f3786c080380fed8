// Package geometry implements the hit-testing and transform helpers used by
// the editor and renderer. Every function is pure.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/example/annotator/internal/annotation"
)

const (
	// HitTolerance is the image-space distance at which a line or path
	// counts as under the pointer.
	HitTolerance = 5.0
	// BorderTolerance is the screen-space distance used for outline hits.
	BorderTolerance = 5.0
	// HandleSize is the screen-space half extent of a resize handle hit area.
	HandleSize = 8.0
	// RotateHandleOffset is the screen-space gap between the top edge and
	// the rotate handle.
	RotateHandleOffset = 20.0
	// RotateHandleRadius is the screen-space hit radius of the rotate handle.
	RotateHandleRadius = 5.0

	parallelEpsilon = 1e-4
)

// Box is an axis-aligned rectangle that may carry negative extents while a
// gesture is in progress.
type Box struct {
	X, Y, Width, Height float64
}

// NormalizeBox returns the equivalent box with non-negative extents.
func NormalizeBox(x, y, w, h float64) Box {
	if w < 0 {
		x += w
		w = -w
	}
	if h < 0 {
		y += h
		h = -h
	}
	return Box{X: x, Y: y, Width: w, Height: h}
}

// Normalize is NormalizeBox applied to b.
func (b Box) Normalize() Box { return NormalizeBox(b.X, b.Y, b.Width, b.Height) }

// Contains reports whether p lies inside b, edges included. b must be
// normalized.
func (b Box) Contains(p annotation.Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

func vec(p annotation.Point) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func point(v r2.Vec) annotation.Point { return annotation.Point{X: v.X, Y: v.Y} }

// RotatePoint rotates p by angle radians about c.
func RotatePoint(p, c annotation.Point, angle float64) annotation.Point {
	return point(r2.Rotate(vec(p), angle, vec(c)))
}

// UnrotatePoint undoes RotatePoint.
func UnrotatePoint(p, c annotation.Point, angle float64) annotation.Point {
	return RotatePoint(p, c, -angle)
}

// DistanceToSegment returns the distance from p to the segment a-b. A zero
// length segment degrades to the distance to a.
func DistanceToSegment(p, a, b annotation.Point) float64 {
	pa, ba := r2.Sub(vec(p), vec(a)), r2.Sub(vec(b), vec(a))
	lenSq := r2.Norm2(ba)
	if lenSq == 0 {
		return r2.Norm(pa)
	}
	t := math.Max(0, math.Min(1, r2.Dot(pa, ba)/lenSq))
	proj := r2.Add(vec(a), r2.Scale(t, ba))
	return r2.Norm(r2.Sub(vec(p), proj))
}

// SegmentsIntersect reports whether a1-a2 crosses b1-b2. Parallel segments,
// collinear overlapping ones included, never intersect.
func SegmentsIntersect(a1, a2, b1, b2 annotation.Point) bool {
	da := r2.Sub(vec(a2), vec(a1))
	db := r2.Sub(vec(b2), vec(b1))
	cross := r2.Cross(da, db)
	if math.Abs(cross) < parallelEpsilon {
		return false
	}
	w := r2.Sub(vec(b1), vec(a1))
	t := r2.Cross(w, db) / cross
	u := r2.Cross(w, da) / cross
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// CenterImage returns the view offset that centres an image of the given size
// in the canvas at the largest scale that fits, never upscaling.
func CenterImage(imageW, imageH, canvasW, canvasH float64) annotation.Point {
	scale := math.Min(math.Min(canvasW/imageW, canvasH/imageH), 1)
	return annotation.Point{
		X: canvasW/2 - imageW*scale/2,
		Y: canvasH/2 - imageH*scale/2,
	}
}

func boxOf(a *annotation.Annotation) Box {
	return Box{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

// local maps p into a's unrotated frame when a is rotated.
func local(p annotation.Point, a *annotation.Annotation) annotation.Point {
	if a.Rotation == 0 || !a.Shape.Rotatable() {
		return p
	}
	return UnrotatePoint(p, a.Center(), a.Rotation)
}

func inEllipse(p annotation.Point, a *annotation.Annotation) bool {
	c := a.Center()
	rx, ry := a.Width/2, a.Height/2
	dx, dy := (p.X-c.X)/rx, (p.Y-c.Y)/ry
	return dx*dx+dy*dy <= 1
}

func nearPolyline(p annotation.Point, pts []annotation.Point, tol float64) bool {
	for i := 0; i+1 < len(pts); i++ {
		if DistanceToSegment(p, pts[i], pts[i+1]) <= tol {
			return true
		}
	}
	return false
}

func nearEdges(p annotation.Point, b Box, tol float64) bool {
	inX := p.X >= b.X && p.X <= b.X+b.Width
	inY := p.Y >= b.Y && p.Y <= b.Y+b.Height
	return (math.Abs(p.X-b.X) <= tol && inY) ||
		(math.Abs(p.X-(b.X+b.Width)) <= tol && inY) ||
		(math.Abs(p.Y-b.Y) <= tol && inX) ||
		(math.Abs(p.Y-(b.Y+b.Height)) <= tol && inX)
}

// PointInAnnotation reports whether the image-space point p is inside a.
func PointInAnnotation(p annotation.Point, a *annotation.Annotation) bool {
	if a.Shape.IsLinear() {
		return DistanceToSegment(p, a.Start(), a.End()) <= HitTolerance
	}
	q := local(p, a)
	switch {
	case a.Shape == annotation.Path && len(a.Points) > 1:
		return boxOf(a).Contains(q) || nearPolyline(q, a.Points, HitTolerance)
	case a.Shape == annotation.Circle:
		return inEllipse(q, a)
	}
	return boxOf(a).Contains(q)
}

// IsOverBorder reports whether p is within BorderTolerance screen units of
// a's outline at the given view scale.
func IsOverBorder(p annotation.Point, a *annotation.Annotation, scale float64) bool {
	tol := BorderTolerance / scale
	if a.Shape.IsLinear() {
		return DistanceToSegment(p, a.Start(), a.End()) <= tol
	}
	q := local(p, a)
	if a.Shape == annotation.Path && len(a.Points) > 1 {
		return nearPolyline(q, a.Points, tol)
	}
	if a.Shape == annotation.Circle && a.Rotation != 0 {
		c := a.Center()
		rx, ry := a.Width/2, a.Height/2
		dx, dy := (q.X-c.X)/rx, (q.Y-c.Y)/ry
		return math.Abs(math.Hypot(dx, dy)-1) <= tol/math.Min(rx, ry)
	}
	return nearEdges(q, boxOf(a), tol)
}

// Handle names a resize or rotate hotspot on the selected annotation.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
	HandleRotate
)

var handleNames = [...]string{"", "nw", "n", "ne", "e", "se", "s", "sw", "w", "rotate"}

func (h Handle) String() string {
	if int(h) < len(handleNames) {
		return handleNames[h]
	}
	return "unknown"
}

// HandlePoint is a handle together with its position in the annotation's
// unrotated frame.
type HandlePoint struct {
	Handle Handle
	Pos    annotation.Point
}

// CompassHandles returns the eight resize handles in hit-test order.
func CompassHandles(a *annotation.Annotation) []HandlePoint {
	x, y, w, h := a.X, a.Y, a.Width, a.Height
	return []HandlePoint{
		{HandleNW, annotation.Point{X: x, Y: y}},
		{HandleN, annotation.Point{X: x + w/2, Y: y}},
		{HandleNE, annotation.Point{X: x + w, Y: y}},
		{HandleE, annotation.Point{X: x + w, Y: y + h/2}},
		{HandleSE, annotation.Point{X: x + w, Y: y + h}},
		{HandleS, annotation.Point{X: x + w/2, Y: y + h}},
		{HandleSW, annotation.Point{X: x, Y: y + h}},
		{HandleW, annotation.Point{X: x, Y: y + h/2}},
	}
}

// RotateHandle returns the rotate handle position in image space, i.e. with
// the annotation's rotation applied.
func RotateHandle(a *annotation.Annotation, scale float64) annotation.Point {
	p := annotation.Point{X: a.X + a.Width/2, Y: a.Y - RotateHandleOffset/scale}
	if a.Rotation == 0 {
		return p
	}
	return RotatePoint(p, a.Center(), a.Rotation)
}

// HandleAt returns the handle of a under p, checking the rotate handle first,
// then line endpoints, then the compass handles.
func HandleAt(p annotation.Point, a *annotation.Annotation, scale float64) Handle {
	size := HandleSize / scale
	if a.Shape.IsLinear() {
		if r2.Norm(r2.Sub(vec(p), vec(a.Start()))) <= size {
			return HandleNW
		}
		if r2.Norm(r2.Sub(vec(p), vec(a.End()))) <= size {
			return HandleSE
		}
		return HandleNone
	}
	if r2.Norm(r2.Sub(vec(p), vec(RotateHandle(a, scale)))) <= RotateHandleRadius/scale {
		return HandleRotate
	}
	q := local(p, a)
	for _, hp := range CompassHandles(a) {
		if math.Abs(q.X-hp.Pos.X) <= size && math.Abs(q.Y-hp.Pos.Y) <= size {
			return hp.Handle
		}
	}
	return HandleNone
}

// BoxIntersectsAnnotation reports whether the normalized box touches a.
// Lines and arrows hit when an endpoint is inside the box or the segment
// crosses an edge; other shapes use their bounding box.
func BoxIntersectsAnnotation(b Box, a *annotation.Annotation) bool {
	if a.Shape.IsLinear() {
		s, e := a.Start(), a.End()
		if b.Contains(s) || b.Contains(e) {
			return true
		}
		tl := annotation.Point{X: b.X, Y: b.Y}
		tr := annotation.Point{X: b.X + b.Width, Y: b.Y}
		br := annotation.Point{X: b.X + b.Width, Y: b.Y + b.Height}
		bl := annotation.Point{X: b.X, Y: b.Y + b.Height}
		return SegmentsIntersect(s, e, tl, tr) ||
			SegmentsIntersect(s, e, tr, br) ||
			SegmentsIntersect(s, e, bl, br) ||
			SegmentsIntersect(s, e, tl, bl)
	}
	return !(b.X+b.Width < a.X || b.X > a.X+a.Width ||
		b.Y+b.Height < a.Y || b.Y > a.Y+a.Height)
}
