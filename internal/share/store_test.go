package share

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/annotator/internal/annotation"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n0000")

func TestCreateAndGet(t *testing.T) {
	s := newStore(t)
	list := []annotation.Annotation{{
		ID: "a1", Shape: annotation.Arrow, X: 1, Y: 2, Width: 3, Height: -4,
		Comments: []annotation.Comment{{ID: "c1", Text: "hi", CreatedAt: time.Unix(10, 0).UTC()}},
	}}
	img, link, err := s.Create("../shot.png", pngMagic, list)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if img.Filename != "shot.png" || img.ContentType != "image/png" {
		t.Fatalf("image %+v", img)
	}
	if len(link.Token) != 10 || link.ImageID != img.ID {
		t.Fatalf("link %+v", link)
	}
	v, err := s.Get(link.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(v.Annotations) != 1 || v.Annotations[0].Height != -4 || v.Annotations[0].Comments[0].Text != "hi" {
		t.Fatalf("annotations %+v", v.Annotations)
	}
	_, data, err := s.ImageData(link.Token)
	if err != nil || string(data) != string(pngMagic) {
		t.Fatalf("image data %q %v", data, err)
	}
}

func TestGetErrors(t *testing.T) {
	s := newStore(t)
	if _, err := s.Get(""); !errors.Is(err, ErrTokenRequired) {
		t.Errorf("empty token err = %v", err)
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown token err = %v", err)
	}
	if _, err := s.Get("../../etc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("path token err = %v", err)
	}
	if _, err := s.CreateLink("missing"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("missing image err = %v", err)
	}
}

func TestLinkWithoutAnnotations(t *testing.T) {
	s := newStore(t)
	img, err := s.SaveImage("x.png", pngMagic)
	if err != nil {
		t.Fatal(err)
	}
	l, err := s.CreateLink(img.ID)
	if err != nil {
		t.Fatal(err)
	}
	v, err := s.Get(l.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.Annotations == nil || len(v.Annotations) != 0 {
		t.Fatalf("expected empty list, got %#v", v.Annotations)
	}
}

func TestStoredAnnotationsAreRepaired(t *testing.T) {
	s := newStore(t)
	img, _ := s.SaveImage("x.png", pngMagic)
	raw := `[{"x":1,"y":1,"width":-2,"height":2,"shape":"blob","comments":[{"text":"t"}]}]`
	if err := os.WriteFile(filepath.Join(s.Dir(), "annotations", img.ID+".json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	l, _ := s.CreateLink(img.ID)
	v, err := s.Get(l.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	a := v.Annotations[0]
	if a.ID == "" || a.Shape != annotation.Rectangle || a.Width != 2 || a.Comments[0].ID == "" {
		t.Fatalf("not repaired: %+v", a)
	}
}

func TestTokenFromURL(t *testing.T) {
	cases := map[string]string{
		"abc123":                        "abc123",
		"http://host:8080/share/abc123": "abc123",
		"https://x/share/abc123/":       "abc123",
		" http://x/share/abc123?utm=1 ": "abc123",
	}
	for in, want := range cases {
		if got := TokenFromURL(in); got != want {
			t.Errorf("TokenFromURL(%q) = %q", in, got)
		}
	}
}
