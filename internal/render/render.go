package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gg"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
	"github.com/example/annotator/internal/theme"
)

const (
	lineWidth       = 2.0
	penWidth        = 4.0
	arrowHeadLength = 15.0
	arrowHeadAngle  = math.Pi / 6
	selectionDash   = 5.0
	outlineDash     = 3.0
	lineHandleSize  = 4.0
)

// Renderer draws scenes. It caches the decoded image buffer between frames.
type Renderer struct {
	theme *theme.Theme

	cachedID  string
	cachedBuf *gg.ImageBuf
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme selects the palette. A nil theme keeps the default.
func WithTheme(t *theme.Theme) Option {
	return func(r *Renderer) {
		if t != nil {
			r.theme = t
		}
	}
}

// New returns a Renderer using theme.Default unless overridden.
func New(opts ...Option) *Renderer {
	r := &Renderer{theme: theme.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Theme returns the active palette.
func (r *Renderer) Theme() *theme.Theme { return r.theme }

// Frame renders s into a new RGBA image of s.Width by s.Height pixels.
func (r *Renderer) Frame(s Scene) (*image.RGBA, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("render: invalid frame size %dx%d", s.Width, s.Height)
	}
	dc := gg.NewContext(s.Width, s.Height)
	defer dc.Close()
	if err := r.Draw(dc, s); err != nil {
		return nil, err
	}
	return toRGBA(dc.Image()), nil
}

// Draw paints the backdrop, image, annotations and editing chrome onto dc.
func (r *Renderer) Draw(dc *gg.Context, s Scene) error {
	dc.ClearWithColor(r.theme.Backdrop)
	if s.Image == nil {
		return nil
	}
	return r.drawScene(dc, s, true)
}

// Flatten composites the annotations onto the image at native resolution
// without selection chrome. It backs PNG export and shared previews.
func (r *Renderer) Flatten(img *annotation.CanvasImage, list []annotation.Annotation) (*image.RGBA, error) {
	if img == nil || img.Bitmap == nil {
		return nil, errors.New("render: no image to flatten")
	}
	b := img.Bitmap.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	defer dc.Close()
	s := Scene{
		Image:       img,
		Annotations: list,
		Scale:       1,
		ReadOnly:    true,
	}
	if img.Width > 0 {
		s.Scale = float64(b.Dx()) / img.Width
	}
	s.Offset = annotation.Point{X: -img.X * s.Scale, Y: -img.Y * s.Scale}
	if err := r.drawScene(dc, s, false); err != nil {
		return nil, err
	}
	return toRGBA(dc.Image()), nil
}

func (r *Renderer) imageBuf(img *annotation.CanvasImage) *gg.ImageBuf {
	if r.cachedBuf == nil || r.cachedID != img.ID {
		r.cachedBuf = gg.ImageBufFromImage(img.Bitmap)
		r.cachedID = img.ID
	}
	return r.cachedBuf
}

func (r *Renderer) drawScene(dc *gg.Context, s Scene, chrome bool) error {
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	dc.Push()
	defer dc.Pop()
	dc.Translate(s.Offset.X, s.Offset.Y)
	dc.Scale(scale, scale)

	img := s.Image
	if img.Bitmap != nil {
		dc.DrawImageEx(r.imageBuf(img), gg.DrawImageOptions{
			X:         img.X,
			Y:         img.Y,
			DstWidth:  img.Width,
			DstHeight: img.Height,
			Opacity:   1,
		})
	}
	var errs []error
	if chrome {
		setColor(dc, r.theme.ImageOutline)
		dc.SetLineWidth(1 / scale)
		dc.DrawRectangle(img.X, img.Y, img.Width, img.Height)
		errs = append(errs, dc.Stroke())
	}

	for i := range s.Annotations {
		a := &s.Annotations[i]
		errs = append(errs, r.drawAnnotation(dc, a, s.IsSelected(a.ID), scale))
	}
	if chrome && !s.ReadOnly {
		if i := annotation.Find(s.Annotations, s.SelectedID); i >= 0 {
			errs = append(errs, r.drawHandles(dc, &s.Annotations[i], s.ActiveHandle, scale))
		}
	}
	if s.Draft != nil {
		errs = append(errs, r.drawAnnotation(dc, s.Draft, false, scale))
	}
	if chrome && !s.ReadOnly && s.SelectionBox != nil {
		errs = append(errs, r.drawSelectionBox(dc, s.SelectionBox.Normalize(), scale))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (r *Renderer) drawAnnotation(dc *gg.Context, a *annotation.Annotation, selected bool, scale float64) error {
	stroke, fill := r.theme.Stroke, r.theme.Fill
	if selected {
		stroke, fill = r.theme.SelectedStroke, r.theme.SelectedFill
	}
	dc.Push()
	defer dc.Pop()
	if a.Rotation != 0 && a.Shape.Rotatable() {
		c := a.Center()
		dc.RotateAbout(a.Rotation, c.X, c.Y)
	}
	dc.SetLineWidth(lineWidth / scale)

	switch a.Shape {
	case annotation.Rectangle:
		dc.DrawRectangle(a.X, a.Y, a.Width, a.Height)
		return fillStroke(dc, fill, stroke)
	case annotation.Circle:
		c := a.Center()
		dc.DrawEllipse(c.X, c.Y, math.Abs(a.Width/2), math.Abs(a.Height/2))
		return fillStroke(dc, fill, stroke)
	case annotation.Line:
		s, e := a.Start(), a.End()
		dc.DrawLine(s.X, s.Y, e.X, e.Y)
		setColor(dc, stroke)
		return dc.Stroke()
	case annotation.Arrow:
		s, e := a.Start(), a.End()
		dc.DrawLine(s.X, s.Y, e.X, e.Y)
		setColor(dc, stroke)
		if err := dc.Stroke(); err != nil {
			return err
		}
		angle := math.Atan2(a.Height, a.Width)
		l := arrowHeadLength / scale
		dc.MoveTo(e.X, e.Y)
		dc.LineTo(e.X-l*math.Cos(angle-arrowHeadAngle), e.Y-l*math.Sin(angle-arrowHeadAngle))
		dc.LineTo(e.X-l*math.Cos(angle+arrowHeadAngle), e.Y-l*math.Sin(angle+arrowHeadAngle))
		dc.ClosePath()
		return dc.Fill()
	case annotation.Path:
		if len(a.Points) < 2 {
			return nil
		}
		dc.SetLineWidth(penWidth / scale)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		dc.MoveTo(a.Points[0].X, a.Points[0].Y)
		for _, p := range a.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		setColor(dc, stroke)
		return dc.Stroke()
	}
	return nil
}

func (r *Renderer) drawSelectionBox(dc *gg.Context, b geometry.Box, scale float64) error {
	dc.Push()
	defer dc.Pop()
	dc.SetLineWidth(1 / scale)
	dc.SetDash(selectionDash/scale, selectionDash/scale)
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	return fillStroke(dc, r.theme.SelectionFill, r.theme.SelectionStroke)
}

func (r *Renderer) handleFill(h, active geometry.Handle) gg.RGBA {
	if h == active {
		return r.theme.HandleHover
	}
	return r.theme.HandleFill
}

func (r *Renderer) drawHandles(dc *gg.Context, a *annotation.Annotation, active geometry.Handle, scale float64) error {
	dc.Push()
	defer dc.Pop()
	dc.SetLineWidth(1 / scale)

	if a.Shape.IsLinear() {
		var errs []error
		for _, hp := range []geometry.HandlePoint{{Handle: geometry.HandleNW, Pos: a.Start()}, {Handle: geometry.HandleSE, Pos: a.End()}} {
			dc.DrawCircle(hp.Pos.X, hp.Pos.Y, lineHandleSize/scale)
			errs = append(errs, fillStroke(dc, r.handleFill(hp.Handle, active), r.theme.HandleStroke))
		}
		return errors.Join(errs...)
	}

	if a.Rotation != 0 {
		c := a.Center()
		dc.RotateAbout(a.Rotation, c.X, c.Y)
	}
	var errs []error

	dc.SetDash(outlineDash/scale, outlineDash/scale)
	dc.DrawRectangle(a.X, a.Y, a.Width, a.Height)
	setColor(dc, r.theme.HandleOutline)
	errs = append(errs, dc.Stroke())
	dc.ClearDash()

	size := geometry.HandleSize / scale
	for _, hp := range geometry.CompassHandles(a) {
		dc.DrawRectangle(hp.Pos.X-size/2, hp.Pos.Y-size/2, size, size)
		errs = append(errs, fillStroke(dc, r.handleFill(hp.Handle, active), r.theme.HandleStroke))
	}

	top := annotation.Point{X: a.X + a.Width/2, Y: a.Y}
	knob := annotation.Point{X: top.X, Y: top.Y - geometry.RotateHandleOffset/scale}
	dc.DrawLine(top.X, top.Y, knob.X, knob.Y)
	setColor(dc, r.theme.HandleStroke)
	errs = append(errs, dc.Stroke())
	dc.DrawCircle(knob.X, knob.Y, geometry.RotateHandleRadius/scale)
	errs = append(errs, fillStroke(dc, r.handleFill(geometry.HandleRotate, active), r.theme.HandleStroke))
	return errors.Join(errs...)
}

func setColor(dc *gg.Context, c gg.RGBA) { dc.SetRGBA(c.R, c.G, c.B, c.A) }

func fillStroke(dc *gg.Context, fill, stroke gg.RGBA) error {
	setColor(dc, fill)
	if err := dc.FillPreserve(); err != nil {
		return err
	}
	setColor(dc, stroke)
	return dc.Stroke()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
