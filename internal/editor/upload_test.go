package editor

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/example/annotator/internal/annotation"
)

func newRGBA(w, h int) *image.RGBA { return image.NewRGBA(image.Rect(0, 0, w, h)) }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, newRGBA(w, h)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestUploadReplacesSession(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, Width: 10, Height: 10}}
	var asked string
	e := newTestEditor(WithAnnotations(list), WithConfirm(func(msg string) bool { asked = msg; return true }))
	e.Select("r")
	e.DeleteSelection()
	e.Undo()
	e.SetView(annotation.Point{X: 3, Y: 4}, 2.5)

	data := pngBytes(t, 200, 100)
	if err := e.Upload("shot.png", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asked != ReplaceWarning {
		t.Fatalf("confirmation prompt %q", asked)
	}
	if len(e.Annotations()) != 0 || e.History().CanUndo() || e.History().CanRedo() {
		t.Fatalf("annotations or history survived upload")
	}
	if e.Scale() != 1 || e.Offset() != (annotation.Point{X: 300, Y: 250}) {
		t.Fatalf("view not reset: %v %v", e.Scale(), e.Offset())
	}
	img := e.Image()
	if img.Name != "shot.png" || img.Width != 200 || !bytes.Equal(img.Data, data) {
		t.Fatalf("image %+v", img)
	}
}

func TestUploadDeclined(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, Width: 10, Height: 10}}
	e := newTestEditor(WithAnnotations(list), WithConfirm(func(string) bool { return false }))
	before := e.Image()
	data := pngBytes(t, 4, 4)
	if err := e.Upload("x.png", bytes.NewReader(data), -1); !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v", err)
	}
	if e.Image() != before || len(e.Annotations()) != 1 {
		t.Fatalf("declined upload changed the session")
	}
}

func TestCheckUploadSize(t *testing.T) {
	if err := CheckUploadSize(10, 10); err != nil {
		t.Fatalf("size at limit: %v", err)
	}
	if err := CheckUploadSize(1<<40, 0); err != nil {
		t.Fatalf("zero limit must disable the check: %v", err)
	}
	err := CheckUploadSize(11<<20, 10<<20)
	if !errors.Is(err, ErrFileTooLarge) || err.Error() != "File is too large. Maximum size is 10MB." {
		t.Fatalf("err = %v", err)
	}
}

func TestUploadTooLarge(t *testing.T) {
	e := newTestEditor(WithMaxUploadSize(10))
	data := pngBytes(t, 4, 4)
	for _, size := range []int64{int64(len(data)), -1} {
		err := e.Upload("big.png", bytes.NewReader(data), size)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("size %d: err = %v", size, err)
		}
		if err.Error() != "File is too large. Maximum size is 10B." {
			t.Fatalf("message %q", err.Error())
		}
	}
	if e.Image().Name != "blank.png" {
		t.Fatalf("oversized upload replaced the image")
	}
}

func TestUploadDecodeFailure(t *testing.T) {
	e := New()
	err := e.Upload("notes.txt", strings.NewReader("not an image"), 12)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v", err)
	}
	if err.Error() != DecodeMessage {
		t.Fatalf("message %q", err.Error())
	}
	if e.Image() != nil {
		t.Fatalf("editor left empty-canvas mode")
	}
}

func TestUploadReadOnly(t *testing.T) {
	e := newTestEditor(WithReadOnly(true))
	if err := e.Upload("x.png", bytes.NewReader(nil), 0); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("err = %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		DefaultMaxUpload: "1GB",
		10 << 20:         "10MB",
		1536:             "1.5KB",
		512:              "512B",
	}
	for n, want := range cases {
		if got := FormatSize(n); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadImageKeepsAnnotations(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, Width: 10, Height: 10}}
	e := New(WithAnnotations(list))
	e.SetCanvasSize(1000, 500)
	e.LoadImage(blankImage(500, 250))
	if len(e.Annotations()) != 1 {
		t.Fatalf("late image load dropped annotations")
	}
	if e.Offset() != (annotation.Point{X: 250, Y: 125}) || e.Scale() != 1 {
		t.Fatalf("view %v %v", e.Offset(), e.Scale())
	}
}

func TestDecodeImage(t *testing.T) {
	data := pngBytes(t, 7, 3)
	img, err := DecodeImage("a.png", data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 7 || img.Height != 3 || img.Name != "a.png" || len(img.Data) != len(data) {
		t.Fatalf("image = %+v", img)
	}
	_, err = DecodeImage("bad.png", []byte("nope"))
	var ue *UploadError
	if !errors.As(err, &ue) || ue.Message != DecodeMessage || !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v", err)
	}
}
