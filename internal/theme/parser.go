package theme

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/gogpu/gg"
)

var rgbaType = reflect.TypeOf(gg.RGBA{})

// Parse reads a theme definition from r. Each line is "Key: #RRGGBB" or
// "Key: #RRGGBBAA"; unknown keys are ignored and unset keys keep the
// Default value.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := Set(t, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return t, scanner.Err()
}

// Set assigns one field by case-insensitive name. Unknown keys are ignored.
func Set(t *Theme, key, value string) error {
	if strings.EqualFold(key, "Name") {
		t.Name = value
		return nil
	}
	field := reflect.ValueOf(t).Elem().FieldByNameFunc(func(n string) bool {
		return strings.EqualFold(n, key)
	})
	if !field.IsValid() || field.Type() != rgbaType {
		return nil
	}
	col, err := ParseColor(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	field.Set(reflect.ValueOf(col))
	return nil
}

// Format writes t in the format Parse reads.
func Format(w io.Writer, t *Theme) error {
	if _, err := fmt.Fprintf(w, "Name: %s\n", t.Name); err != nil {
		return err
	}
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type != rgbaType {
			continue
		}
		c := val.Field(i).Interface().(gg.RGBA)
		if _, err := fmt.Fprintf(w, "%s: %s\n", typ.Field(i).Name, Hex(c)); err != nil {
			return err
		}
	}
	return nil
}

// Hex renders c as #RRGGBB, or #RRGGBBAA when not opaque.
func Hex(c gg.RGBA) string {
	b := func(v float64) uint8 { return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255)) }
	if c.A >= 1 {
		return fmt.Sprintf("#%02X%02X%02X", b(c.R), b(c.G), b(c.B))
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", b(c.R), b(c.G), b(c.B), b(c.A))
}

// ParseColor accepts #RRGGBB and #RRGGBBAA.
func ParseColor(s string) (gg.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return gg.RGBA{}, fmt.Errorf("color %q must start with #", s)
	}
	if len(hex) != 6 && len(hex) != 8 {
		return gg.RGBA{}, fmt.Errorf("color %q: invalid hex length", s)
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return gg.RGBA{}, fmt.Errorf("color %q: invalid hex digit %q", s, c)
		}
	}
	return gg.Hex(hex), nil
}
