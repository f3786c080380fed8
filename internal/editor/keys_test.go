package editor

import (
	"testing"

	"golang.org/x/mobile/event/key"

	"github.com/example/annotator/internal/annotation"
)

func press(r rune, code key.Code, mods key.Modifiers) key.Event {
	return key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress}
}

func TestDigitShortcutsSwitchMode(t *testing.T) {
	e := newTestEditor()
	cases := []struct {
		ev   key.Event
		want Mode
	}{
		{press('3', key.Code3, 0), ModeRectangle},
		{press('4', key.Code4, 0), ModeCircle},
		{press('5', key.Code5, 0), ModeArrow},
		{press('6', key.Code6, 0), ModeLine},
		{press('7', key.Code7, 0), ModePen},
		{press('2', key.Code2, 0), ModePan},
		{press('1', key.Code1, 0), ModeSelect},
	}
	for _, tc := range cases {
		if !e.Key(tc.ev) {
			t.Fatalf("%q not consumed", tc.ev.Rune)
		}
		if e.Mode() != tc.want {
			t.Errorf("%q: mode %v, want %v", tc.ev.Rune, e.Mode(), tc.want)
		}
	}
}

func TestUndoRedoShortcuts(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeRectangle)
	gesture(e, pt(10, 10), pt(50, 50), 1)

	e.Key(press('z', key.CodeZ, key.ModControl))
	if len(e.Annotations()) != 0 {
		t.Fatalf("ctrl+z did not undo")
	}
	e.Key(press('Z', key.CodeZ, key.ModControl|key.ModShift))
	if len(e.Annotations()) != 1 {
		t.Fatalf("ctrl+shift+z did not redo")
	}
	e.Key(press('z', key.CodeZ, key.ModControl))
	e.Key(press('y', key.CodeY, key.ModControl))
	if len(e.Annotations()) != 1 {
		t.Fatalf("ctrl+y did not redo")
	}
}

func TestDeleteAndZoomShortcuts(t *testing.T) {
	list := []annotation.Annotation{{ID: "r", Shape: annotation.Rectangle, Width: 10, Height: 10}}
	e := newTestEditor(WithAnnotations(list))
	e.Select("r")
	e.Key(press(0, key.CodeDeleteBackspace, 0))
	if len(e.Annotations()) != 0 {
		t.Fatalf("backspace did not delete")
	}
	e.Key(press('+', key.CodeEqualSign, key.ModShift))
	if !approx(e.Scale(), 1.2) {
		t.Fatalf("'+' scale %v", e.Scale())
	}
	e.Key(press('-', key.CodeHyphenMinus, 0))
	if !approx(e.Scale(), 1) {
		t.Fatalf("'-' scale %v", e.Scale())
	}
}

func TestTextFocusSuppressesShortcuts(t *testing.T) {
	e := newTestEditor()
	e.SetTextFocus(true)
	if e.Key(press('3', key.Code3, 0)) || e.Mode() != ModeSelect {
		t.Fatalf("shortcut fired while typing")
	}
	if e.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirPress}) {
		t.Fatalf("space consumed while typing")
	}
}

func TestSpaceHoldPans(t *testing.T) {
	e := newTestEditor()
	e.SetMode(ModeLine)
	e.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirPress})
	if e.Mode() != ModePan {
		t.Fatalf("space did not enter pan")
	}
	e.Key(key.Event{Code: key.CodeSpacebar, Direction: key.DirRelease})
	if e.Mode() != ModeLine {
		t.Fatalf("release restored %v", e.Mode())
	}
}

func TestBindingsListing(t *testing.T) {
	ro := newTestEditor(WithReadOnly(true))
	for _, b := range ro.Bindings() {
		if b.Action == "undo" || b.Action == "rectangle" || b.Action == "delete" {
			t.Errorf("read-only view exposes %s", b.Action)
		}
	}
	if ro.Trigger("undo") {
		t.Errorf("undo triggered in read-only view")
	}
	var redo Binding
	for _, b := range newTestEditor().Bindings() {
		if b.Action == "redo" {
			redo = b
		}
	}
	if len(redo.Keys) != 2 || redo.Keys[0].String() != "Ctrl+Shift+Z" {
		t.Fatalf("redo keys %v", redo.Keys)
	}
}
