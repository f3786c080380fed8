package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
)

func stub(t *testing.T) (store *[]byte, text *string) {
	t.Helper()
	var data []byte
	var s string
	r, wp, wt := readPNG, writePNG, writeText
	readPNG = func() ([]byte, error) { return data, nil }
	writePNG = func(b []byte) error { data = b; return nil }
	writeText = func(v string) error { s = v; return nil }
	t.Cleanup(func() { readPNG, writePNG, writeText = r, wp, wt })
	return &data, &s
}

func TestCopyThenPasteImage(t *testing.T) {
	stub(t)
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	if err := CopyImage(src); err != nil {
		t.Fatal(err)
	}
	data, err := PasteImage()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("pasted bytes are not PNG: %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestPasteEmpty(t *testing.T) {
	stub(t)
	if _, err := PasteImage(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestCopyText(t *testing.T) {
	_, text := stub(t)
	if err := CopyText("http://host/share/abc"); err != nil {
		t.Fatal(err)
	}
	if *text != "http://host/share/abc" {
		t.Fatalf("text = %q", *text)
	}
}

func TestBackendErrorsAreWrapped(t *testing.T) {
	stub(t)
	boom := errors.New("boom")
	writeText = func(string) error { return boom }
	if err := CopyText("x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
