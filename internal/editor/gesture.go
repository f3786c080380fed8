package editor

import (
	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
)

// Gesture is the pointer interaction in progress. Exactly one is active.
type Gesture interface {
	gesture()
}

// Idle means no button is held.
type Idle struct{}

// Panning moves the view. Last is in screen space.
type Panning struct {
	Last annotation.Point
}

// BoxSelecting tracks the rubber band. Box keeps signed extents until
// release.
type BoxSelecting struct {
	Anchor annotation.Point
	Box    geometry.Box
}

// Dragging moves the annotation ID by incremental image-space deltas.
type Dragging struct {
	ID   string
	Last annotation.Point
}

// Resizing recomputes the annotation from Before on every move.
type Resizing struct {
	ID     string
	Handle geometry.Handle
	Anchor annotation.Point
	Before annotation.Annotation
}

// Rotating turns the annotation about Pivot.
type Rotating struct {
	ID            string
	Pivot         annotation.Point
	InitialAngle  float64
	StartRotation float64
}

// Drawing holds the draft for the active draw mode.
type Drawing struct {
	Anchor annotation.Point
	Draft  annotation.Annotation
}

func (Idle) gesture()          {}
func (*Panning) gesture()      {}
func (*BoxSelecting) gesture() {}
func (*Dragging) gesture()     {}
func (*Resizing) gesture()     {}
func (*Rotating) gesture()     {}
func (*Drawing) gesture()      {}

// mutating reports whether g edits an existing annotation. Such gestures
// snapshot history once when they start.
func mutating(g Gesture) bool {
	switch g.(type) {
	case *Dragging, *Resizing, *Rotating:
		return true
	}
	return false
}
