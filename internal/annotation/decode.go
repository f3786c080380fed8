package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"
)

type rawComment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type rawAnnotation struct {
	ID                string       `json:"id"`
	X                 float64      `json:"x"`
	Y                 float64      `json:"y"`
	Width             float64      `json:"width"`
	Height            float64      `json:"height"`
	Rotation          float64      `json:"rotation"`
	Shape             Shape        `json:"shape"`
	Points            []Point      `json:"points"`
	Comments          []rawComment `json:"comments"`
	MinimizedComments bool         `json:"minimizedComments"`
}

// Decode reads a JSON annotation list. Entries are repaired rather than
// rejected: missing ids are generated, missing or unparsable comment
// timestamps become the current time, unknown shapes become rectangles and
// path boxes are refit from their points.
func Decode(r io.Reader) ([]Annotation, error) {
	var raw []rawAnnotation
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode annotations: %w", err)
	}
	out := make([]Annotation, 0, len(raw))
	for _, ra := range raw {
		out = append(out, ra.repair())
	}
	return out, nil
}

// Unmarshal is Decode for an in-memory document.
func Unmarshal(data []byte) ([]Annotation, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes list as indented JSON.
func Encode(w io.Writer, list []Annotation) error {
	if list == nil {
		list = []Annotation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

func (ra rawAnnotation) repair() Annotation {
	a := Annotation{
		ID:                ra.ID,
		X:                 ra.X,
		Y:                 ra.Y,
		Width:             ra.Width,
		Height:            ra.Height,
		Rotation:          ra.Rotation,
		Shape:             ra.Shape,
		MinimizedComments: ra.MinimizedComments,
		Comments:          make([]Comment, 0, len(ra.Comments)),
	}
	if a.ID == "" {
		a.ID = NewID()
	}
	if !a.Shape.Valid() {
		log.Printf("annotation %s: unknown shape %q, using rectangle", a.ID, ra.Shape)
		a.Shape = Rectangle
	}
	if a.Shape == Path {
		a.Points = append([]Point(nil), ra.Points...)
		a.FitPoints()
	}
	a.Normalize()
	for _, rc := range ra.Comments {
		c := Comment{ID: rc.ID, Text: rc.Text}
		if c.ID == "" {
			c.ID = NewID()
		}
		ts, err := time.Parse(time.RFC3339Nano, rc.CreatedAt)
		if err != nil {
			ts = now()
		}
		c.CreatedAt = ts
		a.Comments = append(a.Comments, c)
	}
	return a
}
