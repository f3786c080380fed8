package annotation

import "image"

// CanvasImage is the bitmap being annotated. X and Y are normally zero since
// placement is handled by the view offset and scale.
type CanvasImage struct {
	ID          string
	Name        string
	Bitmap      image.Image
	Data        []byte
	X, Y        float64
	Width       float64
	Height      float64
	AspectRatio float64
}

// NewCanvasImage wraps a decoded bitmap. data holds the original encoded
// bytes when the image was uploaded so it can be shared unchanged.
func NewCanvasImage(name string, bitmap image.Image, data []byte) *CanvasImage {
	b := bitmap.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	ratio := 0.0
	if h > 0 {
		ratio = w / h
	}
	return &CanvasImage{
		ID:          NewID(),
		Name:        name,
		Bitmap:      bitmap,
		Data:        data,
		Width:       w,
		Height:      h,
		AspectRatio: ratio,
	}
}

// Contains reports whether the image-space point p lies on the image.
func (c *CanvasImage) Contains(p Point) bool {
	return p.X >= c.X && p.X <= c.X+c.Width && p.Y >= c.Y && p.Y <= c.Y+c.Height
}
