package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Shadow describes a soft drop shadow added around exported images.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadow is the shadow used by `export -shadow`.
func DefaultShadow() Shadow {
	return Shadow{Radius: 24, Offset: image.Pt(16, 16), Opacity: 0.55}
}

// Apply returns img composited over its blurred silhouette on a canvas
// large enough for both, plus the position of img's top-left corner in the
// result. A zero opacity returns img untouched.
func (s Shadow) Apply(img *image.RGBA) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || s.Opacity <= 0 {
		return img, image.Point{}
	}
	opacity := min(s.Opacity, 1)
	radius := max(s.Radius, 0)

	src := img.Bounds()
	silhouette := src.Inset(-radius)
	cast := silhouette.Add(s.Offset)
	canvas := src.Union(cast)

	mask := image.NewAlpha(silhouette.Sub(silhouette.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				mask.SetAlpha(x-silhouette.Min.X, y-silhouette.Min.Y, color.Alpha{A: a})
			}
		}
	}
	boxBlur(mask, radius)

	out := image.NewRGBA(canvas.Sub(canvas.Min))
	tint := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(out, mask.Bounds().Add(cast.Min.Sub(canvas.Min)), tint, image.Point{}, mask, image.Point{}, draw.Over)
	origin := src.Min.Sub(canvas.Min)
	draw.Draw(out, src.Sub(canvas.Min), img, src.Min, draw.Over)
	return out, origin
}

// boxBlur blurs m in place with a separable box filter of the given radius.
func boxBlur(m *image.Alpha, radius int) {
	if radius <= 0 {
		return
	}
	w, h := m.Rect.Dx(), m.Rect.Dy()
	row := make([]uint8, w)
	for y := 0; y < h; y++ {
		line := m.Pix[y*m.Stride : y*m.Stride+w]
		blurLine(line, row, 1, radius)
	}
	col := make([]uint8, h)
	for x := 0; x < w; x++ {
		blurLine(m.Pix[x:], col, m.Stride, radius)
	}
}

// blurLine averages n=len(scratch) samples spaced stride apart in pix.
func blurLine(pix, scratch []uint8, stride, radius int) {
	n := len(scratch)
	sums := make([]int, n+1)
	for i := 0; i < n; i++ {
		sums[i+1] = sums[i] + int(pix[i*stride])
	}
	for i := 0; i < n; i++ {
		lo, hi := max(i-radius, 0), min(i+radius, n-1)
		scratch[i] = uint8((sums[hi+1] - sums[lo]) / (hi - lo + 1))
	}
	for i := 0; i < n; i++ {
		pix[i*stride] = scratch[i]
	}
}
