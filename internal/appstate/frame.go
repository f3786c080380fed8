package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"strings"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/render"
)

const (
	statusHeight = 24
	panelWidth   = 280
	panelLine    = 16
	panelPad     = 8
	commentWrap  = (panelWidth - 2*panelPad) / 7
)

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// paintState is an immutable copy of the session handed to the paint
// goroutine.
type paintState struct {
	width, height int

	scene  render.Scene
	status string

	message string

	// comments is the selected annotation, if any.
	comments  *annotation.Annotation
	composing bool
	draft     string
}

// composeFrame renders the canvas and the window chrome. It returns
// ctx.Err() as soon as the frame is cancelled.
func composeFrame(ctx context.Context, r *render.Renderer, st paintState) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, st.width, st.height))
	scene := st.scene
	scene.Width, scene.Height = st.width, st.height-statusHeight
	if scene.Width > 0 && scene.Height > 0 {
		canvas, err := r.Frame(scene)
		if err != nil {
			return nil, err
		}
		draw.Draw(dst, canvas.Bounds(), canvas, image.Point{}, draw.Src)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	th := r.Theme()
	bar := image.Rect(0, st.height-statusHeight, st.width, st.height)
	draw.Draw(dst, bar, image.NewUniform(th.StatusBackground.Color()), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.StatusText.Color()), Face: basicfont.Face7x13,
		Dot: fixed.P(6, st.height-statusHeight/2+4)}
	d.DrawString(st.status)

	if st.comments != nil {
		drawComments(dst, st)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if st.message != "" {
		drawMessage(dst, st.message)
	}
	return dst, nil
}

func drawComments(dst *image.RGBA, st paintState) {
	a := st.comments
	x0 := st.width - panelWidth
	if x0 < 0 {
		x0 = 0
	}
	header := fmt.Sprintf("Comments (%d)", len(a.Comments))
	if a.MinimizedComments && !st.composing {
		r := image.Rect(x0, 0, st.width, panelLine+panelPad)
		panel(dst, r)
		text(dst, x0+panelPad, panelLine, header+"  [m] expand", color.Black)
		return
	}

	var lines []string
	for _, c := range a.Comments {
		lines = append(lines, c.CreatedAt.Local().Format("Jan 2 15:04"))
		for _, l := range wrap(c.Text, commentWrap) {
			lines = append(lines, "  "+l)
		}
	}
	if len(a.Comments) == 0 {
		lines = append(lines, "No comments yet")
	}
	if st.composing {
		lines = append(lines, "")
		lines = append(lines, wrap("> "+st.draft+"|", commentWrap)...)
	} else if !st.scene.ReadOnly {
		lines = append(lines, "", "Enter: comment  m: minimise")
	}

	rows := (st.height - statusHeight - 2*panelPad) / panelLine
	if len(lines)+1 > rows && rows > 1 {
		lines = lines[len(lines)-(rows-1):]
	}
	r := image.Rect(x0, 0, st.width, (len(lines)+1)*panelLine+panelPad)
	panel(dst, r)
	text(dst, x0+panelPad, panelLine, header, color.Black)
	grey := color.RGBA{90, 90, 90, 255}
	for i, l := range lines {
		c := color.Color(color.Black)
		if !strings.HasPrefix(l, "  ") {
			c = grey
		}
		text(dst, x0+panelPad, (i+2)*panelLine, l, c)
	}
}

func panel(dst *image.RGBA, r image.Rectangle) {
	draw.Draw(dst, r, &image.Uniform{color.RGBA{255, 255, 255, 235}}, image.Point{}, draw.Over)
	drawRect(dst, r, color.RGBA{120, 120, 120, 255}, 1)
}

func text(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func drawMessage(dst *image.RGBA, msg string) {
	b := dst.Bounds()
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: messageFace}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := (b.Dx() - wmsg) / 2
	py := (b.Dy()-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawRect(dst, rect, color.Black, 2)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}

func drawRect(dst *image.RGBA, r image.Rectangle, c color.Color, w int) {
	u := &image.Uniform{c}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// wrap breaks s into lines of at most n runes, preferring spaces.
func wrap(s string, n int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, w := range strings.Fields(para) {
			for len([]rune(w)) > n {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(w)
				out = append(out, string(r[:n]))
				w = string(r[n:])
			}
			switch {
			case line == "":
				line = w
			case len([]rune(line))+1+len([]rune(w)) <= n:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return out
}

// drawFrame paints st into a window buffer and publishes it unless ctx is
// cancelled first.
func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, r *render.Renderer, st paintState) {
	if st.width <= 0 || st.height <= 0 {
		return
	}
	frame, err := composeFrame(ctx, r, st)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("paint: %v", err)
		}
		return
	}
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	draw.Draw(b.RGBA(), b.Bounds(), frame, image.Point{}, draw.Src)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
