package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/example/annotator/internal/theme"
)

// DefaultMaxUpload matches the editor's built-in ceiling.
const DefaultMaxUpload int64 = 1 << 30

// Notify selects which events raise a desktop notification.
type Notify struct {
	Share  bool
	Export bool
	Copy   bool
}

// Server holds settings for the share view server.
type Server struct {
	Advertise bool
	Instance  string
}

// Config holds the application configuration.
type Config struct {
	Theme      string
	ShareDir   string
	MaxUpload  int64
	ServerAddr string
	Notify     Notify
	Server     Server
	Themes     map[string]*theme.Theme
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		MaxUpload: DefaultMaxUpload,
		Notify:    Notify{Share: true},
		Themes:    make(map[string]*theme.Theme),
	}
}

// ApplyEnv overrides file settings with ANNOTATOR_THEME and
// ANNOTATOR_SHARE_DIR.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ANNOTATOR_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("ANNOTATOR_SHARE_DIR"); v != "" {
		c.ShareDir = v
	}
}

// ResolveTheme returns the configured theme, preferring inline
// [theme.<name>] sections over the loader.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t, nil
	}
	return l.Load(c.Theme)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.ShareDir != "" {
		fmt.Fprintf(&sb, "share_dir = %s\n", c.ShareDir)
	}
	fmt.Fprintf(&sb, "max_upload = %s\n", FormatSize(c.MaxUpload))
	if c.ServerAddr != "" {
		fmt.Fprintf(&sb, "server_addr = %s\n", c.ServerAddr)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "share = %v\n", c.Notify.Share)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[server]\n")
	fmt.Fprintf(&sb, "advertise = %v\n", c.Server.Advertise)
	if c.Server.Instance != "" {
		fmt.Fprintf(&sb, "instance = %s\n", c.Server.Instance)
	}
	sb.WriteString("\n")

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = theme.Format(&sb, c.Themes[name])
		sb.WriteString("\n")
	}
	return sb.String()
}
