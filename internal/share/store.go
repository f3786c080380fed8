// Package share persists shared sessions and serves them to read-only
// viewers over HTTP.
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/annotator/internal/annotation"
)

var (
	// ErrTokenRequired is returned when a lookup has no token.
	ErrTokenRequired = errors.New("token is required")
	// ErrNotFound is returned for unknown tokens.
	ErrNotFound = errors.New("shared link not found")
	// ErrImageNotFound is returned for unknown image ids.
	ErrImageNotFound = errors.New("image not found")
)

// Image describes a stored image.
type Image struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url,omitempty"`
}

// Link maps a token to an image.
type Link struct {
	Token     string    `json:"token"`
	ImageID   string    `json:"imageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// View is what a token resolves to.
type View struct {
	Image       Image                   `json:"image"`
	Annotations []annotation.Annotation `json:"annotations"`
}

// Store keeps images, their annotations and share links as files under a
// directory:
//
//	images/<id>        raw bytes
//	images/<id>.json   Image metadata
//	annotations/<id>.json
//	links/<token>.json
type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates the directory layout under dir.
func NewStore(dir string) (*Store, error) {
	for _, sub := range []string{"images", "annotations", "links"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("share store: %w", err)
		}
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the storage root.
func (s *Store) Dir() string { return s.dir }

// NewToken returns a fresh share token.
func NewToken() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:10] }

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\.`)
}

func (s *Store) path(parts ...string) string {
	return filepath.Join(append([]string{s.dir}, parts...)...)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SaveImage stores data and returns its metadata.
func (s *Store) SaveImage(filename string, data []byte) (Image, error) {
	img := Image{
		ID:          uuid.NewString(),
		Filename:    filepath.Base(filename),
		ContentType: http.DetectContentType(data),
		CreatedAt:   s.now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path("images", img.ID), data, 0o644); err != nil {
		return Image{}, fmt.Errorf("save image: %w", err)
	}
	if err := writeJSON(s.path("images", img.ID+".json"), img); err != nil {
		return Image{}, fmt.Errorf("save image metadata: %w", err)
	}
	return img, nil
}

func (s *Store) image(id string) (Image, error) {
	var img Image
	if !validID(id) {
		return img, ErrImageNotFound
	}
	if err := readJSON(s.path("images", id+".json"), &img); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return img, ErrImageNotFound
		}
		return img, fmt.Errorf("image %s: %w", id, err)
	}
	return img, nil
}

// Image returns the metadata for id.
func (s *Store) Image(id string) (Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.image(id)
}

// SetAnnotations replaces the annotations stored for an image.
func (s *Store) SetAnnotations(imageID string, list []annotation.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.image(imageID); err != nil {
		return err
	}
	if list == nil {
		list = []annotation.Annotation{}
	}
	if err := writeJSON(s.path("annotations", imageID+".json"), list); err != nil {
		return fmt.Errorf("save annotations: %w", err)
	}
	return nil
}

// CreateLink issues a token for an existing image.
func (s *Store) CreateLink(imageID string) (Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.image(imageID); err != nil {
		return Link{}, err
	}
	l := Link{Token: NewToken(), ImageID: imageID, CreatedAt: s.now().UTC()}
	if err := writeJSON(s.path("links", l.Token+".json"), l); err != nil {
		return Link{}, fmt.Errorf("save link: %w", err)
	}
	return l, nil
}

// Link resolves a token.
func (s *Store) Link(token string) (Link, error) {
	var l Link
	if token == "" {
		return l, ErrTokenRequired
	}
	if !validID(token) {
		return l, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := readJSON(s.path("links", token+".json"), &l); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l, ErrNotFound
		}
		return l, fmt.Errorf("link %s: %w", token, err)
	}
	return l, nil
}

// Get resolves a token to the image and its annotations. Stored entries
// are repaired the same way as any other annotation input.
func (s *Store) Get(token string) (View, error) {
	l, err := s.Link(token)
	if err != nil {
		return View{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, err := s.image(l.ImageID)
	if err != nil {
		return View{}, err
	}
	v := View{Image: img, Annotations: []annotation.Annotation{}}
	f, err := os.Open(s.path("annotations", l.ImageID+".json"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return v, nil
	case err != nil:
		return View{}, fmt.Errorf("annotations %s: %w", l.ImageID, err)
	}
	defer f.Close()
	list, err := annotation.Decode(f)
	if err != nil {
		return View{}, fmt.Errorf("annotations %s: %w", l.ImageID, err)
	}
	v.Annotations = list
	return v, nil
}

// ImageData returns the raw bytes behind a token.
func (s *Store) ImageData(token string) (Image, []byte, error) {
	l, err := s.Link(token)
	if err != nil {
		return Image{}, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, err := s.image(l.ImageID)
	if err != nil {
		return Image{}, nil, err
	}
	data, err := os.ReadFile(s.path("images", img.ID))
	if err != nil {
		return Image{}, nil, fmt.Errorf("image %s: %w", img.ID, err)
	}
	return img, data, nil
}

// Create stores a new image with its annotations and returns a link to it.
func (s *Store) Create(filename string, data []byte, list []annotation.Annotation) (Image, Link, error) {
	img, err := s.SaveImage(filename, data)
	if err != nil {
		return Image{}, Link{}, err
	}
	if err := s.SetAnnotations(img.ID, list); err != nil {
		return Image{}, Link{}, err
	}
	l, err := s.CreateLink(img.ID)
	if err != nil {
		return Image{}, Link{}, err
	}
	return img, l, nil
}
