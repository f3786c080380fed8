package editor

import (
	"fmt"
	"strings"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/geometry"
)

// Mode is the active tool.
type Mode int

const (
	ModeSelect Mode = iota
	ModePan
	ModeRectangle
	ModeCircle
	ModeArrow
	ModeLine
	ModePen
)

var modeNames = [...]string{"select", "pan", "rectangle", "circle", "arrow", "line", "pen"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return ModeSelect, fmt.Errorf("unknown mode %q", s)
}

// Draws reports whether the mode creates annotations.
func (m Mode) Draws() bool { return m >= ModeRectangle && m <= ModePen }

// Shape returns the annotation shape drawn by m.
func (m Mode) Shape() annotation.Shape {
	switch m {
	case ModeCircle:
		return annotation.Circle
	case ModeArrow:
		return annotation.Arrow
	case ModeLine:
		return annotation.Line
	case ModePen:
		return annotation.Path
	}
	return annotation.Rectangle
}

// Cursor is the pointer style the host should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorCrosshair
	CursorMove
	CursorGrab
	CursorGrabbing
	CursorResizeNWSE
	CursorResizeNESW
	CursorResizeNS
	CursorResizeEW
)

var cursorNames = [...]string{"default", "pointer", "crosshair", "move", "grab", "grabbing", "nwse-resize", "nesw-resize", "ns-resize", "ew-resize"}

func (c Cursor) String() string {
	if c >= 0 && int(c) < len(cursorNames) {
		return cursorNames[c]
	}
	return "default"
}

func cursorForHandle(h geometry.Handle) Cursor {
	switch h {
	case geometry.HandleNW, geometry.HandleSE:
		return CursorResizeNWSE
	case geometry.HandleNE, geometry.HandleSW:
		return CursorResizeNESW
	case geometry.HandleN, geometry.HandleS:
		return CursorResizeNS
	case geometry.HandleE, geometry.HandleW:
		return CursorResizeEW
	case geometry.HandleRotate:
		return CursorGrab
	}
	return CursorDefault
}
