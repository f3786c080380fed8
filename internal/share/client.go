package share

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/example/annotator/internal/annotation"
)

// Client talks to a share server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimSuffix(baseURL, "/"), HTTP: http.DefaultClient}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return statusError(resp.StatusCode, e.Error)
		}
		return statusError(resp.StatusCode, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(code int, msg string) error {
	switch code {
	case http.StatusBadRequest:
		if msg == "Token is required" {
			return ErrTokenRequired
		}
	case http.StatusNotFound:
		if msg == "Image not found" {
			return ErrImageNotFound
		}
		return ErrNotFound
	}
	return fmt.Errorf("share server: %d %s", code, msg)
}

// Share uploads an image with its annotations. When data is empty and
// imageID is set, the image already on the server is reused.
func (c *Client) Share(ctx context.Context, filename string, data []byte, imageID string, list []annotation.Annotation) (ShareResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if len(data) > 0 {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			return ShareResponse{}, err
		}
		if _, err := fw.Write(data); err != nil {
			return ShareResponse{}, err
		}
	} else if imageID != "" {
		if err := mw.WriteField("imageId", imageID); err != nil {
			return ShareResponse{}, err
		}
	}
	var enc bytes.Buffer
	if err := annotation.Encode(&enc, list); err != nil {
		return ShareResponse{}, err
	}
	if err := mw.WriteField("annotations", enc.String()); err != nil {
		return ShareResponse{}, err
	}
	if err := mw.Close(); err != nil {
		return ShareResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/view", &body)
	if err != nil {
		return ShareResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out ShareResponse
	if err := c.do(req, &out); err != nil {
		return ShareResponse{}, fmt.Errorf("share: %w", err)
	}
	return out, nil
}

// Fetch resolves a token or share URL to its view.
func (c *Client) Fetch(ctx context.Context, token string) (View, error) {
	u := c.BaseURL + "/api/view?token=" + url.QueryEscape(TokenFromURL(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return View{}, err
	}
	var v View
	if err := c.do(req, &v); err != nil {
		return View{}, fmt.Errorf("fetch %s: %w", token, err)
	}
	return v, nil
}

// Download returns the raw image for a view, following the URL the server
// supplied.
func (c *Client) Download(ctx context.Context, v View) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Image.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxUpload))
}
