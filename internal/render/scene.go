// Package render draws annotation scenes with gogpu/gg. It is used for the
// interactive window, PNG export and the PDF report thumbnails.
package render

import (
	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
)

// Scene is an immutable snapshot of everything a frame needs. The editor
// produces one per paint so the renderer never touches live state.
type Scene struct {
	Width, Height int

	Image       *annotation.CanvasImage
	Annotations []annotation.Annotation

	// Offset and Scale map image space to screen space:
	// screen = image*Scale + Offset.
	Offset annotation.Point
	Scale  float64

	SelectedID  string
	SelectedIDs []string

	// Draft is the shape being drawn, if any.
	Draft *annotation.Annotation
	// SelectionBox is the in-progress rubber band in image space.
	SelectionBox *geometry.Box
	// ActiveHandle is highlighted on the selected annotation.
	ActiveHandle geometry.Handle

	ReadOnly bool
}

// IsSelected reports whether id is the single selection or part of the
// multi-selection.
func (s *Scene) IsSelected(id string) bool {
	if id == "" {
		return false
	}
	if s.SelectedID == id {
		return true
	}
	for _, sel := range s.SelectedIDs {
		if sel == id {
			return true
		}
	}
	return false
}

// ScreenPoint converts an image-space point to canvas pixels.
func (s *Scene) ScreenPoint(p annotation.Point) annotation.Point {
	return annotation.Point{X: p.X*s.Scale + s.Offset.X, Y: p.Y*s.Scale + s.Offset.Y}
}
