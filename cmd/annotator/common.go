package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/annotator/internal/annotation"
	"github.com/example/annotator/internal/editor"
)

// readImage loads and decodes an image file, keeping its bytes for sharing.
// Files over limit are rejected before they are read.
func readImage(path string, limit int64) (*annotation.CanvasImage, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := editor.CheckUploadSize(fi.Size(), limit); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return editor.DecodeImage(filepath.Base(path), data)
}

func readAnnotations(path string) ([]annotation.Annotation, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	list, err := annotation.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("annotations %s: %w", path, err)
	}
	return list, nil
}

// shareDir is where locally served shares are stored.
func (r *root) shareDir() (string, error) {
	if r.config.ShareDir != "" {
		return r.config.ShareDir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("share directory: %w", err)
	}
	return filepath.Join(dir, "annotator", "shares"), nil
}

// serverURL picks the share server from the flag or the config file.
func (r *root) serverURL(flagValue string) string {
	u := strings.TrimSpace(flagValue)
	if u == "" {
		u = strings.TrimSpace(r.config.ServerAddr)
	}
	if u != "" && !strings.Contains(u, "://") {
		u = "http://" + u
	}
	return strings.TrimRight(u, "/")
}

func isLink(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// linkBase returns the server root of a share link such as
// http://host:8470/share/abc.
func linkBase(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("share link %q: %w", link, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("share link %q: missing host", link)
	}
	return u.Scheme + "://" + u.Host, nil
}
