package editor

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/mobile/event/key"
)

// Shortcut is a key binding. Rune matches printable keys case-insensitively;
// Code matches the rest.
type Shortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

func (s Shortcut) String() string {
	var parts []string
	if s.Modifiers&key.ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if s.Modifiers&key.ModShift != 0 {
		parts = append(parts, "Shift")
	}
	switch {
	case s.Rune != 0:
		parts = append(parts, strings.ToUpper(string(s.Rune)))
	case s.Code == key.CodeDeleteForward:
		parts = append(parts, "Delete")
	case s.Code == key.CodeDeleteBackspace:
		parts = append(parts, "Backspace")
	default:
		parts = append(parts, fmt.Sprintf("key%d", s.Code))
	}
	return strings.Join(parts, "+")
}

const modMask = key.ModControl | key.ModShift | key.ModAlt | key.ModMeta

func (e *Editor) register(name string, fn func(), keys ...Shortcut) {
	e.actions[name] = fn
	for _, k := range keys {
		e.bindings[k] = name
	}
}

func (e *Editor) bindShortcuts() {
	e.bindings = map[Shortcut]string{}
	e.actions = map[string]func(){}
	ctrl := key.ModControl

	e.register("select", func() { e.SetMode(ModeSelect) }, Shortcut{Rune: '1'})
	e.register("pan", func() { e.SetMode(ModePan) }, Shortcut{Rune: '2'})
	e.register("zoom-in", e.ZoomIn, Shortcut{Rune: '+'}, Shortcut{Rune: '='})
	e.register("zoom-out", e.ZoomOut, Shortcut{Rune: '-'})
	if e.readOnly {
		return
	}
	e.register("rectangle", func() { e.SetMode(ModeRectangle) }, Shortcut{Rune: '3'})
	e.register("circle", func() { e.SetMode(ModeCircle) }, Shortcut{Rune: '4'})
	e.register("arrow", func() { e.SetMode(ModeArrow) }, Shortcut{Rune: '5'})
	e.register("line", func() { e.SetMode(ModeLine) }, Shortcut{Rune: '6'})
	e.register("pen", func() { e.SetMode(ModePen) }, Shortcut{Rune: '7'})
	e.register("undo", e.Undo, Shortcut{Rune: 'z', Modifiers: ctrl})
	e.register("redo", e.Redo,
		Shortcut{Rune: 'z', Modifiers: ctrl | key.ModShift},
		Shortcut{Rune: 'y', Modifiers: ctrl})
	e.register("delete", e.DeleteSelection,
		Shortcut{Code: key.CodeDeleteForward},
		Shortcut{Code: key.CodeDeleteBackspace})
}

func (e *Editor) lookup(ev key.Event) (string, bool) {
	mods := ev.Modifiers & modMask
	if ev.Rune > 0 {
		r := unicode.ToLower(ev.Rune)
		if name, ok := e.bindings[Shortcut{Rune: r, Modifiers: mods}]; ok {
			return name, true
		}
		// Shifted punctuation such as '+' arrives with ModShift set.
		if name, ok := e.bindings[Shortcut{Rune: r, Modifiers: mods &^ key.ModShift}]; ok {
			return name, true
		}
	}
	name, ok := e.bindings[Shortcut{Code: ev.Code, Modifiers: mods}]
	return name, ok
}

// Key handles a keyboard event and reports whether it was consumed. Space
// held down pans temporarily. Bindings are ignored while a text field has
// focus.
func (e *Editor) Key(ev key.Event) bool {
	if e.textFocus {
		return false
	}
	if ev.Code == key.CodeSpacebar {
		switch ev.Direction {
		case key.DirPress:
			e.StartTemporaryPan()
		case key.DirRelease:
			e.EndTemporaryPan()
		}
		return true
	}
	if ev.Direction == key.DirRelease {
		return false
	}
	name, ok := e.lookup(ev)
	if !ok {
		return false
	}
	return e.Trigger(name)
}

// Trigger runs the named action, reporting false when it is not bound in
// this editor.
func (e *Editor) Trigger(name string) bool {
	fn, ok := e.actions[name]
	if !ok {
		return false
	}
	fn()
	return true
}

// Binding describes an action and the keys bound to it.
type Binding struct {
	Action string
	Keys   []Shortcut
}

// Bindings lists the available actions sorted by name.
func (e *Editor) Bindings() []Binding {
	byAction := map[string][]Shortcut{}
	for k, name := range e.bindings {
		byAction[name] = append(byAction[name], k)
	}
	out := make([]Binding, 0, len(byAction))
	for name, keys := range byAction {
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out = append(out, Binding{Action: name, Keys: keys})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}
