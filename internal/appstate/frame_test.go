package appstate

import (
	"context"
	"image/color"
	"reflect"
	"testing"
	"time"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/render"
)

func TestComposeFrameDrawsStatusBar(t *testing.T) {
	a := newTestApp(t)
	s := a.sess
	st := s.snapshot(400, 300)
	img, err := composeFrame(context.Background(), render.New(), st)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Fatalf("frame size %v", img.Bounds())
	}
	want := color.RGBAModel.Convert(render.New().Theme().StatusBackground.Color())
	if got := img.At(399, 299); got != want {
		t.Fatalf("status bar pixel %v, want %v", got, want)
	}
}

func TestComposeFrameCancelled(t *testing.T) {
	s := newTestApp(t).sess
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := composeFrame(ctx, render.New(), s.snapshot(200, 200)); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestSnapshotCarriesSessionState(t *testing.T) {
	s := newTestApp(t).sess
	s.ed.Select("a")
	s.setMessage("hello")
	s.composing = true
	s.draft = []rune("abc")
	st := s.snapshot(640, 480)
	if st.comments == nil || st.comments.ID != "a" {
		t.Fatalf("selected annotation missing: %+v", st.comments)
	}
	if st.message != "hello" || st.draft != "abc" || !st.composing {
		t.Fatalf("snapshot %+v", st)
	}
	// Rendering with the panel and message must not fail.
	st.comments.Comments = []annotation.Comment{{ID: "c", Text: "a fairly long comment that needs wrapping across lines", CreatedAt: time.Now()}}
	if _, err := composeFrame(context.Background(), render.New(), st); err != nil {
		t.Fatal(err)
	}
}

func TestMessageExpires(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldNow := now
	now = func() time.Time { return clock }
	t.Cleanup(func() { now = oldNow })

	s := newTestApp(t).sess
	s.setMessage("saved")
	if !s.messageVisible() {
		t.Fatalf("message hidden immediately")
	}
	clock = clock.Add(messageDuration)
	if s.messageVisible() {
		t.Fatalf("message still visible after %v", messageDuration)
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want []string
	}{
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a\nb", 10, []string{"a", "b"}},
		{"", 5, []string{""}},
	}
	for _, tc := range cases {
		if got := wrap(tc.in, tc.n); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("wrap(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
