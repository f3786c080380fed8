package geometry

import (
	"math"
	"testing"

	"github.com/example/annotator/internal/annotation"
)

func pt(x, y float64) annotation.Point { return annotation.Point{X: x, Y: y} }

func near(a, b annotation.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestRotateRoundTrip(t *testing.T) {
	cases := []struct {
		p, c  annotation.Point
		angle float64
	}{
		{pt(10, 0), pt(0, 0), math.Pi / 2},
		{pt(-3.5, 7), pt(2, 2), 1.234},
		{pt(100, 100), pt(50, 75), -2.5},
		{pt(0, 0), pt(0, 0), 10},
	}
	for _, tc := range cases {
		got := UnrotatePoint(RotatePoint(tc.p, tc.c, tc.angle), tc.c, tc.angle)
		if !near(got, tc.p) {
			t.Errorf("round trip of %v about %v by %v gave %v", tc.p, tc.c, tc.angle, got)
		}
	}
	if got := RotatePoint(pt(10, 0), pt(0, 0), math.Pi/2); !near(got, pt(0, 10)) {
		t.Errorf("quarter turn gave %v", got)
	}
}

func TestDistanceToSegment(t *testing.T) {
	if d := DistanceToSegment(pt(5, 3), pt(0, 0), pt(10, 0)); d != 3 {
		t.Errorf("perpendicular distance %v", d)
	}
	if d := DistanceToSegment(pt(13, 4), pt(0, 0), pt(10, 0)); d != 5 {
		t.Errorf("clamped distance %v", d)
	}
	if d := DistanceToSegment(pt(3, 4), pt(0, 0), pt(0, 0)); d != 5 {
		t.Errorf("degenerate distance %v", d)
	}
}

func TestSegmentsIntersect(t *testing.T) {
	if !SegmentsIntersect(pt(0, 0), pt(10, 10), pt(0, 10), pt(10, 0)) {
		t.Errorf("crossing segments should intersect")
	}
	if SegmentsIntersect(pt(0, 0), pt(1, 1), pt(5, 0), pt(6, -1)) {
		t.Errorf("distant segments should not intersect")
	}
	// Collinear overlap is reported as no intersection.
	if SegmentsIntersect(pt(0, 0), pt(10, 0), pt(5, 0), pt(15, 0)) {
		t.Errorf("collinear segments must not intersect")
	}
}

func TestNormalizeBox(t *testing.T) {
	got := NormalizeBox(10, 10, -5, -5)
	if got != (Box{5, 5, 5, 5}) {
		t.Fatalf("got %+v", got)
	}
	if got := NormalizeBox(1, 2, 3, 4); got != (Box{1, 2, 3, 4}) {
		t.Fatalf("positive box changed: %+v", got)
	}
}

func TestCenterImage(t *testing.T) {
	off := CenterImage(400, 300, 800, 600)
	if off != pt(200, 150) {
		t.Errorf("small image should not upscale, got %v", off)
	}
	off = CenterImage(1600, 600, 800, 600)
	if off != pt(0, 150) {
		t.Errorf("wide image offset %v", off)
	}
}

func TestPointInsideUnrotatedBox(t *testing.T) {
	shapes := []annotation.Shape{annotation.Rectangle, annotation.Path}
	for _, s := range shapes {
		a := annotation.Annotation{Shape: s, X: 10, Y: 20, Width: 30, Height: 40}
		if s == annotation.Path {
			a.Points = []annotation.Point{{X: 10, Y: 20}, {X: 40, Y: 60}}
		}
		for _, p := range []annotation.Point{pt(11, 21), pt(25, 40), pt(39, 59)} {
			if !PointInAnnotation(p, &a) {
				t.Errorf("%s: %v should be inside", s, p)
			}
		}
		if PointInAnnotation(pt(100, 100), &a) {
			t.Errorf("%s: far point reported inside", s)
		}
	}
}

func TestPointInCircle(t *testing.T) {
	a := annotation.Annotation{Shape: annotation.Circle, X: 0, Y: 0, Width: 100, Height: 50}
	if !PointInAnnotation(pt(50, 25), &a) {
		t.Errorf("centre not inside")
	}
	if PointInAnnotation(pt(2, 2), &a) {
		t.Errorf("bounding box corner should be outside the ellipse")
	}
}

func TestPointNearLine(t *testing.T) {
	a := annotation.Annotation{Shape: annotation.Arrow, X: 0, Y: 0, Width: 100, Height: 0}
	if !PointInAnnotation(pt(50, 4), &a) {
		t.Errorf("point within tolerance missed")
	}
	if PointInAnnotation(pt(50, 6), &a) {
		t.Errorf("point outside tolerance hit")
	}
}

func TestRotationInvariance(t *testing.T) {
	a := annotation.Annotation{Shape: annotation.Rectangle, X: 0, Y: 0, Width: 100, Height: 20}
	inside := pt(90, 10)
	if !PointInAnnotation(inside, &a) {
		t.Fatalf("precondition failed")
	}
	for _, theta := range []float64{0.3, math.Pi / 2, 2.1, -1} {
		r := a
		r.Rotation = theta
		moved := RotatePoint(inside, a.Center(), theta)
		if !PointInAnnotation(moved, &r) {
			t.Errorf("rotation %v: transformed point %v not inside", theta, moved)
		}
	}
	// After a quarter turn the unrotated far corner region is empty.
	r := a
	r.Rotation = math.Pi / 2
	if PointInAnnotation(pt(95, 10), &r) {
		t.Errorf("point outside rotated rectangle reported inside")
	}
}

func TestIsOverBorder(t *testing.T) {
	a := annotation.Annotation{Shape: annotation.Rectangle, X: 0, Y: 0, Width: 100, Height: 100}
	if !IsOverBorder(pt(3, 50), &a, 1) {
		t.Errorf("left edge missed")
	}
	if IsOverBorder(pt(50, 50), &a, 1) {
		t.Errorf("interior reported as border")
	}
	// Zooming out widens the image-space tolerance.
	if !IsOverBorder(pt(8, 50), &a, 0.5) {
		t.Errorf("scaled tolerance not applied")
	}

	c := annotation.Annotation{Shape: annotation.Circle, X: 0, Y: 0, Width: 100, Height: 100, Rotation: 0.5}
	edge := RotatePoint(pt(100, 50), c.Center(), 0.5)
	if !IsOverBorder(edge, &c, 1) {
		t.Errorf("rotated circle edge missed")
	}
	if IsOverBorder(c.Center(), &c, 1) {
		t.Errorf("rotated circle centre reported as border")
	}

	p := annotation.Annotation{Shape: annotation.Path, Points: []annotation.Point{{X: 0, Y: 0}, {X: 50, Y: 50}}}
	p.FitPoints()
	if !IsOverBorder(pt(25, 27), &p, 1) {
		t.Errorf("path segment missed")
	}
	if IsOverBorder(pt(40, 10), &p, 1) {
		t.Errorf("path interior away from stroke reported as border")
	}
}

func TestHandleAt(t *testing.T) {
	a := annotation.Annotation{Shape: annotation.Rectangle, X: 100, Y: 100, Width: 100, Height: 50}
	cases := []struct {
		p    annotation.Point
		want Handle
	}{
		{pt(100, 100), HandleNW},
		{pt(150, 102), HandleN},
		{pt(205, 100), HandleNE},
		{pt(200, 125), HandleE},
		{pt(200, 150), HandleSE},
		{pt(150, 150), HandleS},
		{pt(100, 150), HandleSW},
		{pt(100, 125), HandleW},
		{pt(150, 80), HandleRotate},
		{pt(150, 125), HandleNone},
	}
	for _, tc := range cases {
		if got := HandleAt(tc.p, &a, 1); got != tc.want {
			t.Errorf("HandleAt(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}

	r := a
	r.Rotation = math.Pi
	// A half turn puts the rotate handle below the shape.
	if got := HandleAt(pt(150, 170), &r, 1); got != HandleRotate {
		t.Errorf("rotated rotate handle = %v", got)
	}
	// The local NW corner now sits at the image-space SE corner.
	if got := HandleAt(pt(200, 150), &r, 1); got != HandleNW {
		t.Errorf("rotated corner = %v", got)
	}
}

func TestHandleAtLine(t *testing.T) {
	l := annotation.Annotation{Shape: annotation.Line, X: 10, Y: 10, Width: 100, Height: 50}
	if got := HandleAt(pt(12, 12), &l, 1); got != HandleNW {
		t.Errorf("start handle = %v", got)
	}
	if got := HandleAt(pt(110, 60), &l, 1); got != HandleSE {
		t.Errorf("end handle = %v", got)
	}
	if got := HandleAt(pt(60, -10), &l, 1); got != HandleNone {
		t.Errorf("lines have no rotate handle, got %v", got)
	}
}

func TestBoxIntersectsAnnotation(t *testing.T) {
	arrow := annotation.Annotation{Shape: annotation.Arrow, X: 50, Y: 50, Width: 100, Height: 100}
	if !BoxIntersectsAnnotation(NormalizeBox(40, 40, 20, 20), &arrow) {
		t.Errorf("box around the start point should select the arrow")
	}
	if !BoxIntersectsAnnotation(NormalizeBox(90, 0, 20, 200), &arrow) {
		t.Errorf("box crossed by the arrow should select it")
	}
	if BoxIntersectsAnnotation(NormalizeBox(0, 100, 20, 20), &arrow) {
		t.Errorf("distant box selected the arrow")
	}

	rect := annotation.Annotation{Shape: annotation.Rectangle, X: 0, Y: 0, Width: 10, Height: 10}
	if !BoxIntersectsAnnotation(Box{10, 10, 5, 5}, &rect) {
		t.Errorf("touching boxes should intersect")
	}
	if BoxIntersectsAnnotation(Box{11, 11, 5, 5}, &rect) {
		t.Errorf("separate boxes intersect")
	}
}
