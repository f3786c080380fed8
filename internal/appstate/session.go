package appstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annotator/internal/capture"
	"github.com/example/annotator/internal/clipboard"
	"github.com/example/annotator/internal/editor"
	"github.com/example/annotator/internal/render"
	"github.com/example/annotator/internal/report"
)

const (
	messageDuration = 2 * time.Second
	confirmWindow   = 3 * time.Second
)

// OS collaborators, replaced in tests.
var (
	pasteImage    = clipboard.PasteImage
	copyText      = clipboard.CopyText
	captureScreen = func(ctx context.Context) ([]byte, error) {
		img, err := capture.Screenshot(ctx, capture.Options{})
		if err != nil {
			return nil, err
		}
		return capture.EncodePNG(img)
	}
	now = time.Now
)

// session is the window's interaction state. It is owned by the event loop
// goroutine.
type session struct {
	app *AppState
	ed  *editor.Editor
	// exporter is separate from the paint renderer, which lives on the
	// paint goroutine.
	exporter *render.Renderer

	message      string
	messageUntil time.Time

	// pending is the action waiting for a second press to confirm.
	pending      string
	pendingUntil time.Time

	composing bool
	draft     []rune

	shareURL   string
	sharedID   string // server image id of the last share
	sharedFrom string // editor image id that sharedID was uploaded from

	// wake schedules a repaint so expired messages disappear.
	wake func(time.Duration)

	bindings map[editor.Shortcut]string
	actions  map[string]func()
}

func newSession(a *AppState) *session {
	s := &session{
		app:      a,
		exporter: render.New(render.WithTheme(a.renderer.Theme())),
		shareURL: a.shareURL,
	}
	opts := append([]editor.Option{editor.WithConfirm(s.confirmReplace)}, a.editorOpts...)
	s.ed = editor.New(opts...)
	s.bindKeys()
	return s
}

func (s *session) setMessage(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.messageUntil = now().Add(messageDuration)
	log.Print(s.message)
	if s.wake != nil {
		s.wake(messageDuration)
	}
}

func (s *session) messageVisible() bool {
	return s.message != "" && now().Before(s.messageUntil)
}

// confirmTwice returns true on the second request for action inside the
// confirmation window.
func (s *session) confirmTwice(action, prompt string) bool {
	if s.pending == action && now().Before(s.pendingUntil) {
		s.pending = ""
		return true
	}
	s.pending = action
	s.pendingUntil = now().Add(confirmWindow)
	s.message = prompt
	s.messageUntil = s.pendingUntil
	if s.wake != nil {
		s.wake(confirmWindow)
	}
	return false
}

func (s *session) confirmReplace(string) bool {
	return s.confirmTwice("paste", "Annotations will be discarded. Press Ctrl+V again to replace the image")
}

func (s *session) register(name string, fn func(), keys ...editor.Shortcut) {
	s.actions[name] = fn
	for _, k := range keys {
		s.bindings[k] = name
	}
}

func (s *session) bindKeys() {
	s.bindings = map[editor.Shortcut]string{}
	s.actions = map[string]func(){}
	ctrl := key.ModControl

	s.register("export", s.exportPNG, editor.Shortcut{Rune: 'e', Modifiers: ctrl})
	s.register("report", s.exportPDF, editor.Shortcut{Rune: 'e', Modifiers: ctrl | key.ModShift})
	s.register("copy-link", s.copyLink, editor.Shortcut{Rune: 'c', Modifiers: ctrl})
	s.register("deselect", s.ed.ClearSelection, editor.Shortcut{Code: key.CodeEscape})
	if s.ed.ReadOnly() {
		return
	}
	s.register("share", s.share, editor.Shortcut{Rune: 's', Modifiers: ctrl})
	s.register("paste", s.paste, editor.Shortcut{Rune: 'v', Modifiers: ctrl})
	s.register("capture", s.capture, editor.Shortcut{Rune: 'n', Modifiers: ctrl})
	s.register("comment", s.startComment, editor.Shortcut{Code: key.CodeReturnEnter})
	s.register("uncomment", s.deleteLastComment, editor.Shortcut{Code: key.CodeDeleteBackspace, Modifiers: ctrl})
	s.register("minimize", s.toggleComments, editor.Shortcut{Rune: 'm'})
}

func (s *session) lookup(ev key.Event) (string, bool) {
	mods := ev.Modifiers & (key.ModControl | key.ModShift | key.ModAlt | key.ModMeta)
	if ev.Rune > 0 {
		if name, ok := s.bindings[editor.Shortcut{Rune: unicode.ToLower(ev.Rune), Modifiers: mods}]; ok {
			return name, true
		}
	}
	name, ok := s.bindings[editor.Shortcut{Code: ev.Code, Modifiers: mods}]
	return name, ok
}

// handleKey reports whether the frame needs repainting.
func (s *session) handleKey(ev key.Event) bool {
	if s.composing {
		return s.composeKey(ev)
	}
	if ev.Direction != key.DirRelease {
		if name, ok := s.lookup(ev); ok {
			s.actions[name]()
			return true
		}
	}
	return s.ed.Key(ev)
}

func (s *session) composeKey(ev key.Event) bool {
	if ev.Direction == key.DirRelease {
		return false
	}
	switch ev.Code {
	case key.CodeReturnEnter:
		s.submitComment()
	case key.CodeEscape:
		s.endComment()
	case key.CodeDeleteBackspace:
		if len(s.draft) > 0 {
			s.draft = s.draft[:len(s.draft)-1]
		}
	default:
		if ev.Rune >= 0 && unicode.IsPrint(ev.Rune) && ev.Modifiers&key.ModControl == 0 {
			s.draft = append(s.draft, ev.Rune)
		}
	}
	return true
}

func (s *session) startComment() {
	if s.ed.Selected() == "" {
		s.setMessage("Select an annotation to comment on it")
		return
	}
	s.composing = true
	s.draft = s.draft[:0]
	s.ed.SetTextFocus(true)
}

func (s *session) endComment() {
	s.composing = false
	s.draft = nil
	s.ed.SetTextFocus(false)
}

func (s *session) submitComment() {
	text := string(s.draft)
	if _, err := s.ed.AddComment(s.ed.Selected(), text); err != nil {
		s.setMessage("comment: %v", err)
		if strings.TrimSpace(text) == "" {
			return
		}
	}
	s.endComment()
}

func (s *session) deleteLastComment() {
	a, ok := s.ed.Annotation(s.ed.Selected())
	if !ok || len(a.Comments) == 0 {
		return
	}
	last := a.Comments[len(a.Comments)-1]
	if err := s.ed.DeleteComment(a.ID, last.ID); err != nil {
		s.setMessage("delete comment: %v", err)
	}
}

func (s *session) toggleComments() {
	a, ok := s.ed.Annotation(s.ed.Selected())
	if !ok {
		return
	}
	if err := s.ed.SetCommentsMinimized(a.ID, !a.MinimizedComments); err != nil {
		s.setMessage("comments: %v", err)
	}
}

// handleMouse feeds a shiny mouse event to the editor and reports whether the
// frame needs repainting.
func (s *session) handleMouse(ev mouse.Event) bool {
	x, y := float64(ev.X), float64(ev.Y)
	p := editor.Pointer{X: x, Y: y, Button: ev.Button, Modifiers: ev.Modifiers}
	switch {
	case ev.Button == mouse.ButtonWheelUp:
		s.ed.Wheel(x, y, -1)
	case ev.Button == mouse.ButtonWheelDown:
		s.ed.Wheel(x, y, 1)
	case ev.Direction == mouse.DirPress:
		if s.messageVisible() && s.pending == "" {
			s.messageUntil = time.Time{}
		}
		s.ed.PointerDown(p)
	case ev.Direction == mouse.DirRelease:
		s.ed.PointerUp(p)
	case ev.Direction == mouse.DirNone:
		s.ed.PointerMove(p)
	default:
		return false
	}
	return true
}

// leave ends any gesture when the pointer leaves the window or it loses
// focus.
func (s *session) leave() {
	s.ed.PointerLeave()
}

func (s *session) paste() {
	data, err := pasteImage()
	if err != nil {
		s.setMessage("%v", err)
		return
	}
	s.upload(clipboard.PasteName, data)
}

func (s *session) capture() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	data, err := captureScreen(ctx)
	if err != nil {
		s.setMessage("capture: %v", err)
		return
	}
	s.upload("screenshot.png", data)
}

func (s *session) upload(name string, data []byte) {
	err := s.ed.Upload(name, bytes.NewReader(data), int64(len(data)))
	var ue *editor.UploadError
	switch {
	case err == nil:
		s.pending = ""
		s.setMessage("Loaded %s", name)
	case errors.Is(err, editor.ErrCancelled):
		// confirmTwice has already set the prompt.
	case errors.As(err, &ue):
		s.setMessage("%s", ue.Message)
		log.Printf("upload %s: %v", name, ue.Err)
	default:
		s.setMessage("upload: %v", err)
	}
}

func (s *session) share() {
	client := s.app.client
	img := s.ed.Image()
	if client == nil {
		s.setMessage("Sharing is not configured")
		return
	}
	if img == nil {
		s.setMessage("Nothing to share")
		return
	}
	var data []byte
	imageID := ""
	if s.sharedFrom == img.ID {
		imageID = s.sharedID
	} else {
		data = img.Data
		if data == nil {
			var err error
			if data, err = encodeBitmap(img.Bitmap); err != nil {
				s.setMessage("share: %v", err)
				return
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp, err := client.Share(ctx, img.Name, data, imageID, s.ed.Annotations())
	if err != nil {
		s.setMessage("share: %v", err)
		return
	}
	s.shareURL = resp.ShareURL
	s.sharedID, s.sharedFrom = resp.Image.ID, img.ID
	if err := copyText(resp.ShareURL); err != nil {
		log.Printf("share: %v", err)
		s.setMessage("Shared at %s", resp.ShareURL)
	} else {
		s.setMessage("Share link copied: %s", resp.ShareURL)
	}
	if preview, err := s.exporter.Flatten(img, s.ed.Annotations()); err == nil {
		s.app.notifier.Share(resp.ShareURL, preview)
	} else {
		s.app.notifier.Share(resp.ShareURL, nil)
	}
}

func (s *session) copyLink() {
	if s.shareURL == "" {
		s.setMessage("No share link yet, press Ctrl+S to share")
		return
	}
	if err := copyText(s.shareURL); err != nil {
		s.setMessage("copy: %v", err)
		return
	}
	s.setMessage("Link copied to clipboard")
	s.app.notifier.Copy(s.shareURL)
}

func (s *session) exportPath(ext string) string {
	name := "annotated"
	if img := s.ed.Image(); img != nil && img.Name != "" {
		name = strings.TrimSuffix(filepath.Base(img.Name), filepath.Ext(img.Name)) + "-annotated"
	}
	return filepath.Join(s.app.ExportDir, name+ext)
}

func (s *session) exportPNG() {
	img := s.ed.Image()
	if img == nil {
		s.setMessage("Nothing to export")
		return
	}
	flat, err := s.exporter.Flatten(img, s.ed.Annotations())
	if err != nil {
		s.setMessage("export: %v", err)
		return
	}
	path := s.exportPath(".png")
	if err := writeFile(path, func(f *os.File) error { return png.Encode(f, flat) }); err != nil {
		s.setMessage("export: %v", err)
		return
	}
	s.setMessage("Saved %s", path)
	s.app.notifier.Export(path)
}

func (s *session) exportPDF() {
	img := s.ed.Image()
	if img == nil {
		s.setMessage("Nothing to export")
		return
	}
	path := s.exportPath(".pdf")
	opts := report.Options{ShareURL: s.shareURL, Generated: now()}
	err := writeFile(path, func(f *os.File) error {
		return report.Write(f, s.exporter, img, s.ed.Annotations(), opts)
	})
	if err != nil {
		s.setMessage("report: %v", err)
		return
	}
	s.setMessage("Saved %s", path)
	s.app.notifier.Export(path)
}

func encodeBitmap(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// status is the text of the bottom bar.
func (s *session) status() string {
	var parts []string
	if s.ed.ReadOnly() {
		parts = append(parts, "view only")
	}
	parts = append(parts, s.ed.Mode().String(), fmt.Sprintf("%.0f%%", s.ed.Scale()*100))
	if c := s.ed.Cursor(); c != editor.CursorDefault {
		parts = append(parts, c.String())
	}
	if n := len(s.ed.SelectedIDs()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	} else if a, ok := s.ed.Annotation(s.ed.Selected()); ok {
		parts = append(parts, fmt.Sprintf("%s, %d comments", a.Shape, len(a.Comments)))
	}
	if s.ed.ReadOnly() {
		parts = append(parts, "1:select 2:pan +/-:zoom ^C:copy link ^E:export")
	} else {
		parts = append(parts, "1-7:tools ^Z/^Y:undo/redo Enter:comment ^S:share ^E:export ^V:paste")
	}
	return strings.Join(parts, "  |  ")
}

// snapshot captures what the paint goroutine needs for one frame.
func (s *session) snapshot(width, height int) paintState {
	st := paintState{
		width:     width,
		height:    height,
		scene:     s.ed.Scene(),
		status:    s.status(),
		composing: s.composing,
		draft:     string(s.draft),
	}
	if s.messageVisible() {
		st.message = s.message
	}
	if a, ok := s.ed.Annotation(s.ed.Selected()); ok {
		st.comments = &a
	}
	return st
}
