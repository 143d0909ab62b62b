package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// BackendResolver resolves the file backend base URL at call time, so a
// changed configuration is observed on the very next request.
type BackendResolver interface {
	BackendURL(ctx context.Context) (string, error)
}

// Asset is a binary payload (zip bundle or thumbnail) streamed to the file
// backend as one part of a multipart request.
type Asset struct {
	Name   string
	Reader io.Reader
}

// UploadRequest carries everything the backend's /upload endpoint accepts.
type UploadRequest struct {
	ID           string
	Title        string
	Description  string
	MarkdownText string
	Zip          *Asset
	Thumbnail    *Asset
}

// FileTransfer is the client side of the external file-storage service.
type FileTransfer interface {
	Upload(ctx context.Context, req UploadRequest) error
	Reupload(ctx context.Context, id string, zip, thumbnail *Asset) error
	Delete(ctx context.Context, id string) error
	Feedback(ctx context.Context, id, text string) error
}

// FileClient talks to the file backend over HTTP multipart. All methods
// return an error satisfying ErrBackendUnreachable when the request cannot
// complete or the backend answers with a non-2xx status.
type FileClient struct {
	http    *http.Client
	backend BackendResolver
}

func NewFileClient(backend BackendResolver) *FileClient {
	return &FileClient{
		// Game bundles can be large; give uploads room to finish.
		http:    &http.Client{Timeout: 5 * time.Minute},
		backend: backend,
	}
}

func (c *FileClient) Upload(ctx context.Context, req UploadRequest) error {
	return c.post(ctx, "/upload", func(w *multipart.Writer) error {
		fields := []struct{ key, value string }{
			{"id", req.ID},
			{"title", req.Title},
			{"description", req.Description},
			{"markdownText", req.MarkdownText},
		}
		for _, f := range fields {
			if err := w.WriteField(f.key, f.value); err != nil {
				return err
			}
		}
		if err := writeAsset(w, "zip", req.Zip); err != nil {
			return err
		}
		return writeAsset(w, "img", req.Thumbnail)
	})
}

func (c *FileClient) Reupload(ctx context.Context, id string, zip, thumbnail *Asset) error {
	return c.post(ctx, "/reupload", func(w *multipart.Writer) error {
		if err := w.WriteField("id", id); err != nil {
			return err
		}
		if err := writeAsset(w, "zip", zip); err != nil {
			return err
		}
		return writeAsset(w, "img", thumbnail)
	})
}

func (c *FileClient) Delete(ctx context.Context, id string) error {
	return c.post(ctx, "/delete", func(w *multipart.Writer) error {
		return w.WriteField("id", id)
	})
}

func (c *FileClient) Feedback(ctx context.Context, id, text string) error {
	return c.post(ctx, "/feedback", func(w *multipart.Writer) error {
		if err := w.WriteField("id", id); err != nil {
			return err
		}
		return w.WriteField("text", text)
	})
}

func (c *FileClient) post(ctx context.Context, path string, build func(w *multipart.Writer) error) error {
	base, err := c.backend.BackendURL(ctx)
	if err != nil {
		return fmt.Errorf("%w: resolve backend url: %v", ErrBackendUnreachable, err)
	}
	if base == "" {
		return fmt.Errorf("%w: backend url is not configured", ErrBackendUnreachable)
	}

	// The body streams through a pipe; zip bundles are never held in memory.
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	go func() {
		err := build(w)
		if err == nil {
			err = w.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(base, "/")+path, pr)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrBackendUnreachable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: POST %s returned %d: %s",
			ErrBackendUnreachable, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func writeAsset(w *multipart.Writer, field string, asset *Asset) error {
	if asset == nil {
		return nil
	}
	part, err := w.CreateFormFile(field, asset.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, asset.Reader)
	return err
}
