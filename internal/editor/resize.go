package editor

import (
	"math"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
)

const minPathScale = 1e-4

// resizeAnnotation returns before resized by dragging handle h from anchor
// to cur. Rotated rectangles, circles and paths are resized in their local
// frame and kept centred on the original pivot.
func resizeAnnotation(before annotation.Annotation, h geometry.Handle, anchor, cur annotation.Point) annotation.Annotation {
	out := before.Clone()
	rotated := before.Rotation != 0 && before.Shape.Rotatable()
	pivot := before.Center()
	if rotated {
		anchor = geometry.UnrotatePoint(anchor, pivot, before.Rotation)
		cur = geometry.UnrotatePoint(cur, pivot, before.Rotation)
	}
	dx, dy := cur.X-anchor.X, cur.Y-anchor.Y

	switch {
	case before.Shape == annotation.Path && len(before.Points) > 0:
		scalePath(&out, &before, h, dx, dy)
	case before.Shape.IsLinear():
		moveEndpoint(&out, h, dx, dy)
	default:
		moveEdges(&out, h, dx, dy)
	}

	if rotated {
		c := out.Center()
		out.Translate(pivot.X-c.X, pivot.Y-c.Y)
	}
	return out
}

// scalePath scales the points about the original centre. Dragging a handle
// past the opposite edge mirrors that axis.
func scalePath(out, before *annotation.Annotation, h geometry.Handle, dx, dy float64) {
	sx, sy := 1.0, 1.0
	w, ht := before.Width, before.Height
	switch h {
	case geometry.HandleNW:
		sx, sy = ratio(w-dx, w), ratio(ht-dy, ht)
	case geometry.HandleN:
		sy = ratio(ht-dy, ht)
	case geometry.HandleNE:
		sx, sy = ratio(w+dx, w), ratio(ht-dy, ht)
	case geometry.HandleE:
		sx = ratio(w+dx, w)
	case geometry.HandleSE:
		sx, sy = ratio(w+dx, w), ratio(ht+dy, ht)
	case geometry.HandleS:
		sy = ratio(ht+dy, ht)
	case geometry.HandleSW:
		sx, sy = ratio(w-dx, w), ratio(ht+dy, ht)
	case geometry.HandleW:
		sx = ratio(w-dx, w)
	}
	mirrorX, mirrorY := sx < 0, sy < 0
	sx = math.Max(minPathScale, math.Abs(sx))
	sy = math.Max(minPathScale, math.Abs(sy))

	c := before.Center()
	for i, p := range before.Points {
		ox, oy := p.X-c.X, p.Y-c.Y
		if mirrorX {
			ox = -ox
		}
		if mirrorY {
			oy = -oy
		}
		out.Points[i] = annotation.Point{X: c.X + ox*sx, Y: c.Y + oy*sy}
	}
	out.FitPoints()
}

// ratio is the scale factor from extent to size. A flat axis cannot be
// scaled and stays at 1.
func ratio(size, extent float64) float64 {
	if extent == 0 {
		return 1
	}
	return size / extent
}

// moveEndpoint moves the start (NW) or end (SE) of a line. If the end
// crosses to the left of the start the endpoints swap so the width stays
// positive while the segment itself is unchanged.
func moveEndpoint(out *annotation.Annotation, h geometry.Handle, dx, dy float64) {
	switch h {
	case geometry.HandleNW:
		out.X += dx
		out.Y += dy
		out.Width -= dx
		out.Height -= dy
	case geometry.HandleSE:
		out.Width += dx
		out.Height += dy
	}
	if out.Width < 0 {
		end := out.End()
		out.X, out.Y = end.X, end.Y
		out.Width, out.Height = -out.Width, -out.Height
	}
}

// moveEdges adjusts the edges named by h, then flips negative extents.
func moveEdges(out *annotation.Annotation, h geometry.Handle, dx, dy float64) {
	switch h {
	case geometry.HandleNW:
		out.X += dx
		out.Y += dy
		out.Width -= dx
		out.Height -= dy
	case geometry.HandleN:
		out.Y += dy
		out.Height -= dy
	case geometry.HandleNE:
		out.Y += dy
		out.Width += dx
		out.Height -= dy
	case geometry.HandleE:
		out.Width += dx
	case geometry.HandleSE:
		out.Width += dx
		out.Height += dy
	case geometry.HandleS:
		out.Height += dy
	case geometry.HandleSW:
		out.X += dx
		out.Width -= dx
		out.Height += dy
	case geometry.HandleW:
		out.X += dx
		out.Width -= dx
	}
	out.Normalize()
}
