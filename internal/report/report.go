// Package report writes a PDF summary of an annotation session: the
// flattened image followed by every annotation and its comments.
package report

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/render"
)

const (
	margin     = 15.0
	lineHeight = 6.0
)

// Options controls the report header.
type Options struct {
	Title     string
	ShareURL  string
	Generated time.Time
}

// Write renders img and list into a PDF on w.
func Write(w io.Writer, r *render.Renderer, img *annotation.CanvasImage, list []annotation.Annotation, opts Options) error {
	flat, err := r.Flatten(img, list)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	var raster bytes.Buffer
	if err := png.Encode(&raster, flat); err != nil {
		return fmt.Errorf("report: encode snapshot: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	title := opts.Title
	if title == "" {
		title = img.Name
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if !opts.Generated.IsZero() {
		pdf.CellFormat(0, 5, "Generated "+opts.Generated.Format(time.RFC1123), "", 1, "L", false, 0, "")
	}
	if opts.ShareURL != "" {
		pdf.CellFormat(0, 5, opts.ShareURL, "", 1, "L", false, 0, opts.ShareURL)
	}
	pdf.Ln(3)

	pageW, pageH := pdf.GetPageSize()
	maxW := pageW - 2*margin
	maxH := pageH/2 - margin
	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader("snapshot", imgOpts, &raster)
	if info == nil || pdf.Err() {
		return fmt.Errorf("report: register snapshot: %w", pdf.Error())
	}
	iw, ih := info.Width(), info.Height()
	fit := math.Min(maxW/iw, maxH/ih)
	pdf.ImageOptions("snapshot", margin, pdf.GetY(), iw*fit, ih*fit, true, imgOpts, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Annotations (%d)", len(list)), "", 1, "L", false, 0, "")
	for i, a := range list {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("%d. %s", i+1, Describe(a)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		if len(a.Comments) == 0 {
			pdf.SetTextColor(120, 120, 120)
			pdf.CellFormat(0, lineHeight, "    No comments", "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
			continue
		}
		for _, c := range a.Comments {
			text := fmt.Sprintf("%s  %s", c.CreatedAt.Format("2006-01-02 15:04"), c.Text)
			pdf.SetX(margin + 6)
			pdf.MultiCell(maxW-6, lineHeight, text, "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// Describe summarises an annotation's geometry in one line.
func Describe(a annotation.Annotation) string {
	switch a.Shape {
	case annotation.Line, annotation.Arrow:
		s, e := a.Start(), a.End()
		return fmt.Sprintf("%s from (%.0f, %.0f) to (%.0f, %.0f)", a.Shape, s.X, s.Y, e.X, e.Y)
	case annotation.Path:
		return fmt.Sprintf("%s with %d points in %.0fx%.0f at (%.0f, %.0f)", a.Shape, len(a.Points), a.Width, a.Height, a.X, a.Y)
	}
	d := fmt.Sprintf("%s %.0fx%.0f at (%.0f, %.0f)", a.Shape, a.Width, a.Height, a.X, a.Y)
	if a.Rotation != 0 {
		d += fmt.Sprintf(" rotated %.0f°", a.Rotation*180/math.Pi)
	}
	return d
}
