package theme

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves theme names to palettes.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader returns a Loader rooted at the standard per-user and system
// theme directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "annotator", "themes"),
		SystemDir: "/usr/share/annotator/themes",
	}
}

// Load resolves name in this order: an existing file path, the built-in
// palettes, the embedded theme files, ConfigDir, then SystemDir. An empty
// name yields Default.
func (l *Loader) Load(name string) (*Theme, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return Default(), nil
	case "dark":
		return Dark(), nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}
	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if f, err := EmbeddedThemes.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return parseNamed(f, filename)
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, filename)
		if _, err := os.Stat(p); err == nil {
			return parseFile(p)
		}
	}
	return nil, fmt.Errorf("theme %q not found", name)
}

// Names lists the built-in and embedded theme names.
func Names() []string {
	names := []string{"default", "dark"}
	entries, err := EmbeddedThemes.ReadDir("defaults")
	if err != nil {
		return names
	}
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".theme"))
	}
	return names
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseNamed(f, path)
}

func parseNamed(r io.Reader, name string) (*Theme, error) {
	t, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return t, nil
}
