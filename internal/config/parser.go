package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/annotator/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		key, value, ok := splitKV(line)
		if !ok {
			continue
		}

		var err error
		switch {
		case current != nil:
			err = theme.Set(current, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "server":
			err = setServerField(&cfg.Server, key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

// splitKV accepts "key = value" and "Key: value".
func splitKV(line string) (key, value string, ok bool) {
	sep := "="
	if i, j := strings.Index(line, "="), strings.Index(line, ":"); i < 0 || (j >= 0 && j < i) {
		sep = ":"
	}
	key, value, ok = strings.Cut(line, sep)
	if !ok {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(key), value, true
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "share_dir":
		cfg.ShareDir = value
	case "server_addr":
		cfg.ServerAddr = value
	case "max_upload":
		n, err := ParseSize(value)
		if err != nil {
			return fmt.Errorf("max_upload: %w", err)
		}
		cfg.MaxUpload = n
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "share":
		n.Share = b
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setServerField(s *Server, key, value string) error {
	switch strings.ToLower(key) {
	case "advertise":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		s.Advertise = b
	case "instance":
		s.Instance = value
	}
	return nil
}
