// Package annotation holds the data model shared by the editor, the renderer
// and the share store.
package annotation

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Shape identifies the geometry an Annotation draws.
type Shape string

const (
	Rectangle Shape = "rectangle"
	Circle    Shape = "circle"
	Line      Shape = "line"
	Arrow     Shape = "arrow"
	Path      Shape = "path"
)

// Valid reports whether s is one of the known shapes.
func (s Shape) Valid() bool {
	switch s {
	case Rectangle, Circle, Line, Arrow, Path:
		return true
	}
	return false
}

// IsLinear reports whether the shape is stored as a start point plus a
// direction vector (width and height may be negative).
func (s Shape) IsLinear() bool { return s == Line || s == Arrow }

// Rotatable reports whether rotation applies to the shape.
func (s Shape) Rotatable() bool { return s == Rectangle || s == Circle || s == Path }

// Point is an image-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Comment is a note attached to a single annotation.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Annotation is a user drawn shape. X, Y, Width and Height describe the
// bounding box before rotation. For Line and Arrow the box is the start point
// and the offset to the end point.
type Annotation struct {
	ID                string    `json:"id"`
	X                 float64   `json:"x"`
	Y                 float64   `json:"y"`
	Width             float64   `json:"width"`
	Height            float64   `json:"height"`
	Rotation          float64   `json:"rotation,omitempty"`
	Shape             Shape     `json:"shape"`
	Points            []Point   `json:"points,omitempty"`
	Comments          []Comment `json:"comments"`
	MinimizedComments bool      `json:"minimizedComments,omitempty"`
}

// NewID returns a fresh identifier for annotations, comments and images.
func NewID() string { return uuid.NewString() }

// Center returns the centre of the bounding box, the rotation pivot.
func (a *Annotation) Center() Point {
	return Point{X: a.X + a.Width/2, Y: a.Y + a.Height/2}
}

// Start returns the first endpoint of a Line or Arrow.
func (a *Annotation) Start() Point { return Point{X: a.X, Y: a.Y} }

// End returns the second endpoint of a Line or Arrow.
func (a *Annotation) End() Point { return Point{X: a.X + a.Width, Y: a.Y + a.Height} }

// Clone returns a deep copy so later edits cannot reach back into a.
func (a Annotation) Clone() Annotation {
	if a.Points != nil {
		a.Points = append([]Point(nil), a.Points...)
	}
	if a.Comments != nil {
		a.Comments = append([]Comment(nil), a.Comments...)
	}
	return a
}

// CloneList deep copies every annotation in list.
func CloneList(list []Annotation) []Annotation {
	if list == nil {
		return nil
	}
	out := make([]Annotation, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}

// FitPoints recomputes the bounding box from Points. It is a no-op when there
// are no points.
func (a *Annotation) FitPoints() {
	if len(a.Points) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range a.Points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	a.X, a.Y = minX, minY
	a.Width, a.Height = maxX-minX, maxY-minY
}

// Translate moves the annotation by (dx, dy). Paths move every point and
// refit their bounding box.
func (a *Annotation) Translate(dx, dy float64) {
	if a.Shape == Path && len(a.Points) > 0 {
		for i := range a.Points {
			a.Points[i].X += dx
			a.Points[i].Y += dy
		}
		a.FitPoints()
		return
	}
	a.X += dx
	a.Y += dy
}

// Normalize flips negative extents into positive ones by moving the origin.
// Lines and arrows keep their direction and are left untouched.
func (a *Annotation) Normalize() {
	if a.Shape.IsLinear() {
		return
	}
	if a.Width < 0 {
		a.X += a.Width
		a.Width = -a.Width
	}
	if a.Height < 0 {
		a.Y += a.Height
		a.Height = -a.Height
	}
}

// Find returns the index of the annotation with id, or -1.
func Find(list []Annotation, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
