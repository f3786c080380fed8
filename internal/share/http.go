package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/example/annotator/internal/annotation"
)

// MaxUpload bounds multipart bodies accepted by POST /api/view.
const MaxUpload int64 = 1 << 30

// Handler serves the share API:
//
//	POST /api/view          multipart "file" or "imageId", plus "annotations"
//	GET  /api/view?token=   the shared image metadata and annotations
//	GET  /api/image/{token} the raw image
type Handler struct {
	store *Store
	// BaseURL overrides the origin used in returned links.
	BaseURL string
	mux     *http.ServeMux
}

// NewHandler returns the API handler for store.
func NewHandler(store *Store, baseURL string) *Handler {
	h := &Handler{store: store, BaseURL: strings.TrimSuffix(baseURL, "/"), mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /api/view", h.getView)
	h.mux.HandleFunc("POST /api/view", h.postView)
	h.mux.HandleFunc("GET /api/image/{token}", h.getImage)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }

// ShareResponse is the body returned by POST /api/view.
type ShareResponse struct {
	Image    Image  `json:"image"`
	ShareURL string `json:"shareUrl"`
	Token    string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("share: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResponse(w, status, errorResponse{Error: msg})
}

func (h *Handler) origin(r *http.Request) string {
	if h.BaseURL != "" {
		return h.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// lookupError maps store errors to status codes and messages.
func lookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenRequired):
		writeError(w, http.StatusBadRequest, "Token is required")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Shared link not found")
	case errors.Is(err, ErrImageNotFound):
		writeError(w, http.StatusNotFound, "Image not found")
	default:
		log.Printf("share: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch shared view")
	}
}

func (h *Handler) getView(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	v, err := h.store.Get(token)
	if err != nil {
		lookupError(w, err)
		return
	}
	v.Image.URL = h.origin(r) + "/api/image/" + token
	writeJSONResponse(w, http.StatusOK, v)
}

func (h *Handler) getImage(w http.ResponseWriter, r *http.Request) {
	img, data, err := h.store.ImageData(r.PathValue("token"))
	if err != nil {
		lookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Filename))
	if _, err := w.Write(data); err != nil {
		log.Printf("share: write image: %v", err)
	}
}

// parseAnnotations tolerates a missing or malformed field; the share still
// goes ahead without annotations, matching the lenient decoding elsewhere.
func parseAnnotations(r *http.Request) []annotation.Annotation {
	raw := r.FormValue("annotations")
	if raw == "" {
		return nil
	}
	list, err := annotation.Unmarshal([]byte(raw))
	if err != nil {
		log.Printf("share: ignoring annotations: %v", err)
		return nil
	}
	return list
}

func (h *Handler) postView(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	list := parseAnnotations(r)

	var img Image
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		if img, err = h.store.SaveImage(header.Filename, data); err != nil {
			log.Printf("share: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to process upload and share")
			return
		}
	case r.FormValue("imageId") != "":
		if img, err = h.store.Image(r.FormValue("imageId")); err != nil {
			lookupError(w, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "No file or imageId provided")
		return
	}

	if list != nil {
		if err := h.store.SetAnnotations(img.ID, list); err != nil {
			log.Printf("share: %v", err)
		}
	}
	link, err := h.store.CreateLink(img.ID)
	if err != nil {
		log.Printf("share: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to process upload and share")
		return
	}
	log.Printf("share: %s -> image %s (%d annotations)", link.Token, img.ID, len(list))
	writeJSONResponse(w, http.StatusOK, ShareResponse{
		Image:    img,
		ShareURL: h.origin(r) + "/share/" + link.Token,
		Token:    link.Token,
	})
}

// TokenFromURL extracts the token from a share URL, or returns s unchanged
// when it is already a bare token.
func TokenFromURL(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), "/")
	if i := strings.LastIndex(s, "/share/"); i >= 0 {
		s = s[i+len("/share/"):]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return s
}
