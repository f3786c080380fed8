// Package editor owns the annotation session: the image, the annotation list,
// selection, view transform, tool mode, the active pointer gesture and undo
// history. Hosts feed it input events and render the Scene it returns.
package editor

import (
	"errors"
	"math"
	"slices"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
	"github.com/example/annotator/internal/history"
	"github.com/example/annotator/internal/render"
)

const (
	MinScale   = 0.1
	MaxScale   = 10.0
	zoomStep   = 1.2
	wheelSpeed = 0.025

	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

var (
	// ErrReadOnly is returned for edits attempted on a shared view.
	ErrReadOnly = errors.New("annotations are read-only")
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")
)

// Editor is not safe for concurrent use; hosts call it from their event
// loop.
type Editor struct {
	image       *annotation.CanvasImage
	annotations []annotation.Annotation

	selectedID  string
	selectedIDs []string

	offset annotation.Point
	scale  float64

	mode         Mode
	previousMode Mode
	temporaryPan bool

	gesture Gesture
	hover   geometry.Handle
	cursor  Cursor

	readOnly  bool
	textFocus bool

	canvasW, canvasH float64

	maxUpload int64
	confirm   func(message string) bool

	history *history.Manager

	bindings map[Shortcut]string
	actions  map[string]func()
}

// Option configures an Editor.
type Option func(*Editor)

// WithReadOnly turns the editor into a shared-link viewer.
func WithReadOnly(ro bool) Option { return func(e *Editor) { e.readOnly = ro } }

// WithImage sets the initial image.
func WithImage(img *annotation.CanvasImage) Option { return func(e *Editor) { e.image = img } }

// WithAnnotations sets the initial annotation list.
func WithAnnotations(list []annotation.Annotation) Option {
	return func(e *Editor) { e.annotations = annotation.CloneList(list) }
}

// WithCanvasSize sets the drawing surface size used for centring.
func WithCanvasSize(w, h int) Option {
	return func(e *Editor) { e.canvasW, e.canvasH = float64(w), float64(h) }
}

// WithMaxUploadSize sets the upload ceiling in bytes.
func WithMaxUploadSize(n int64) Option { return func(e *Editor) { e.maxUpload = n } }

// WithConfirm installs the prompt used before discarding annotations.
// Without one, destructive actions proceed.
func WithConfirm(fn func(message string) bool) Option { return func(e *Editor) { e.confirm = fn } }

// WithHistory replaces the undo manager.
func WithHistory(h *history.Manager) Option { return func(e *Editor) { e.history = h } }

// New returns an editor in Select mode. An initial image is centred.
func New(opts ...Option) *Editor {
	e := &Editor{
		scale:     1,
		gesture:   Idle{},
		canvasW:   DefaultCanvasWidth,
		canvasH:   DefaultCanvasHeight,
		maxUpload: DefaultMaxUpload,
		history:   history.New(),
	}
	for _, o := range opts {
		o(e)
	}
	e.bindShortcuts()
	if e.image != nil {
		e.recenter()
	}
	return e
}

// Image returns the current image, or nil before one is loaded.
func (e *Editor) Image() *annotation.CanvasImage { return e.image }

// Annotations returns a deep copy of the annotation list.
func (e *Editor) Annotations() []annotation.Annotation { return annotation.CloneList(e.annotations) }

// Annotation returns a copy of the annotation with id.
func (e *Editor) Annotation(id string) (annotation.Annotation, bool) {
	i := annotation.Find(e.annotations, id)
	if i < 0 {
		return annotation.Annotation{}, false
	}
	return e.annotations[i].Clone(), true
}

// Read-only views of the session state. SetTextFocus suppresses shortcuts
// while a text input owns the keyboard.
func (e *Editor) Selected() string             { return e.selectedID }
func (e *Editor) SelectedIDs() []string        { return slices.Clone(e.selectedIDs) }
func (e *Editor) Mode() Mode                   { return e.mode }
func (e *Editor) Gesture() Gesture             { return e.gesture }
func (e *Editor) Cursor() Cursor               { return e.cursor }
func (e *Editor) Scale() float64               { return e.scale }
func (e *Editor) Offset() annotation.Point     { return e.offset }
func (e *Editor) ReadOnly() bool               { return e.readOnly }
func (e *Editor) History() *history.Manager    { return e.history }
func (e *Editor) CanvasSize() (w, h float64)   { return e.canvasW, e.canvasH }
func (e *Editor) HoverHandle() geometry.Handle { return e.hover }
func (e *Editor) SetTextFocus(focused bool)    { e.textFocus = focused }
func (e *Editor) TextFocus() bool              { return e.textFocus }

// Select makes id the single selection. An unknown id clears the selection.
func (e *Editor) Select(id string) {
	e.selectedIDs = nil
	e.selectedID = ""
	if annotation.Find(e.annotations, id) >= 0 {
		e.selectedID = id
	}
}

// SelectMany replaces the multi-selection.
func (e *Editor) SelectMany(ids []string) {
	e.selectedID = ""
	e.selectedIDs = slices.Clone(ids)
}

// ClearSelection drops both the single and multi-selection.
func (e *Editor) ClearSelection() {
	e.selectedID = ""
	e.selectedIDs = nil
	e.hover = geometry.HandleNone
}

// SetView sets the offset and scale, clamping the scale.
func (e *Editor) SetView(offset annotation.Point, scale float64) {
	e.offset = offset
	e.scale = clampScale(scale)
}

// SetCanvasSize records the drawing surface size. Annotation data and the
// view are left alone.
func (e *Editor) SetCanvasSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	e.canvasW, e.canvasH = float64(w), float64(h)
}

// LoadImage installs an image that arrived after start-up, keeping the
// annotations, and recentres the view.
func (e *Editor) LoadImage(img *annotation.CanvasImage) {
	e.image = img
	if img != nil {
		e.recenter()
	}
}

func (e *Editor) recenter() {
	e.offset = geometry.CenterImage(e.image.Width, e.image.Height, e.canvasW, e.canvasH)
	e.scale = 1
}

// SetMode switches the tool. Entering Pan clears the selection; the
// previous non-Pan mode is remembered for EndTemporaryPan.
func (e *Editor) SetMode(m Mode) {
	if e.readOnly && m != ModeSelect && m != ModePan {
		return
	}
	e.temporaryPan = false
	if e.mode != ModePan {
		e.previousMode = e.mode
	}
	if m == ModePan {
		e.ClearSelection()
	}
	e.mode = m
}

// StartTemporaryPan enters Pan mode while a key is held. It does nothing
// when Pan is already the chosen tool.
func (e *Editor) StartTemporaryPan() {
	if e.mode == ModePan {
		return
	}
	e.previousMode = e.mode
	e.mode = ModePan
	e.temporaryPan = true
	e.ClearSelection()
}

// EndTemporaryPan restores the mode active before StartTemporaryPan. A Pan
// mode picked with SetMode is left alone.
func (e *Editor) EndTemporaryPan() {
	if !e.temporaryPan {
		return
	}
	e.temporaryPan = false
	if e.mode == ModePan {
		e.mode = e.previousMode
	}
}

// ZoomIn multiplies the scale by 1.2 up to MaxScale.
func (e *Editor) ZoomIn() { e.scale = clampScale(e.scale * zoomStep) }

// ZoomOut divides the scale by 1.2 down to MinScale.
func (e *Editor) ZoomOut() { e.scale = clampScale(e.scale / zoomStep) }

func clampScale(s float64) float64 { return math.Max(MinScale, math.Min(MaxScale, s)) }

// Undo restores the previous annotation list and clears the selection.
func (e *Editor) Undo() {
	if e.readOnly || !e.history.CanUndo() {
		return
	}
	e.annotations = keepMinimized(e.annotations, e.history.Undo(e.annotations))
	e.ClearSelection()
}

// Redo re-applies the last undone change and clears the selection.
func (e *Editor) Redo() {
	if e.readOnly || !e.history.CanRedo() {
		return
	}
	e.annotations = keepMinimized(e.annotations, e.history.Redo(e.annotations))
	e.ClearSelection()
}

// keepMinimized carries the comment panel state of cur over to the restored
// list, since panel state is not part of the history.
func keepMinimized(cur, restored []annotation.Annotation) []annotation.Annotation {
	for i := range restored {
		if j := annotation.Find(cur, restored[i].ID); j >= 0 {
			restored[i].MinimizedComments = cur[j].MinimizedComments
		}
	}
	return restored
}

// DeleteSelection removes the multi-selection if any, otherwise the single
// selection.
func (e *Editor) DeleteSelection() {
	if e.readOnly {
		return
	}
	doomed := e.selectedIDs
	if len(doomed) == 0 && e.selectedID != "" {
		doomed = []string{e.selectedID}
	}
	if len(doomed) == 0 {
		return
	}
	e.update(func(list []annotation.Annotation) []annotation.Annotation {
		return slices.DeleteFunc(list, func(a annotation.Annotation) bool {
			return slices.Contains(doomed, a.ID)
		})
	})
	e.ClearSelection()
}

// update replaces the annotation list with fn's result. Outside of a
// drag, resize or rotate gesture the previous list is recorded first.
func (e *Editor) update(fn func([]annotation.Annotation) []annotation.Annotation) {
	if !mutating(e.gesture) {
		e.history.RecordChange(e.annotations)
	}
	e.annotations = fn(annotation.CloneList(e.annotations))
}

// Scene snapshots the state for the renderer.
func (e *Editor) Scene() render.Scene {
	s := render.Scene{
		Width:        int(e.canvasW),
		Height:       int(e.canvasH),
		Image:        e.image,
		Annotations:  annotation.CloneList(e.annotations),
		Offset:       e.offset,
		Scale:        e.scale,
		SelectedID:   e.selectedID,
		SelectedIDs:  slices.Clone(e.selectedIDs),
		ActiveHandle: e.hover,
		ReadOnly:     e.readOnly,
	}
	switch g := e.gesture.(type) {
	case *Drawing:
		d := g.Draft.Clone()
		s.Draft = &d
	case *BoxSelecting:
		b := g.Box
		s.SelectionBox = &b
	case *Resizing:
		s.ActiveHandle = g.Handle
	}
	return s
}
