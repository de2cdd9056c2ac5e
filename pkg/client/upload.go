package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/upload"
)

// UploadClient stores and removes files against a form backend's media
// endpoint. It satisfies the upload manager's Uploader contract: multipart
// POST to create, DELETE by remote id to remove.
type UploadClient struct {
	endpoint string
	http     Doer
	logger   *slog.Logger
}

// UploadOption customises an UploadClient.
type UploadOption func(*UploadClient)

// WithUploadHTTPClient replaces the default HTTP client.
func WithUploadHTTPClient(doer Doer) UploadOption {
	return func(c *UploadClient) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithUploadLogger attaches a structured logger.
func WithUploadLogger(logger *slog.Logger) UploadOption {
	return func(c *UploadClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewUploadClient builds a client talking to the supplied media endpoint.
func NewUploadClient(endpoint string, options ...UploadOption) (*UploadClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("client: upload endpoint is required")
	}

	c := &UploadClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

type uploadResponse struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Upload streams the file as a multipart form and decodes the stored file's
// identity from the response.
func (c *UploadClient) Upload(ctx context.Context, file upload.File) (upload.FileMeta, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	if file.ContentType != "" {
		header.Set("Content-Type", file.ContentType)
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return upload.FileMeta{}, fmt.Errorf("client: build upload form: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return upload.FileMeta{}, fmt.Errorf("client: read file %s: %w", file.Name, err)
	}
	if err := writer.Close(); err != nil {
		return upload.FileMeta{}, fmt.Errorf("client: finalise upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return upload.FileMeta{}, fmt.Errorf("client: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return upload.FileMeta{}, fmt.Errorf("client: upload %s: %w", file.Name, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return upload.FileMeta{}, fmt.Errorf("client: upload %s: %s: %s", file.Name, res.Status, bodyExcerpt(res.Body))
	}

	var stored uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&stored); err != nil {
		return upload.FileMeta{}, fmt.Errorf("client: decode upload response: %w", err)
	}
	if stored.ID == "" {
		return upload.FileMeta{}, fmt.Errorf("client: upload response missing file id")
	}

	c.logger.Debug("file uploaded",
		slog.String("file", file.Name),
		slog.String("remote_id", stored.ID),
		slog.Duration("elapsed", time.Since(started)),
	)

	meta := upload.FileMeta{
		RemoteID:    stored.ID,
		URL:         stored.URL,
		Name:        stored.Name,
		Size:        stored.Size,
		ContentType: file.ContentType,
	}
	if meta.Name == "" {
		meta.Name = file.Name
	}
	if meta.Size == 0 {
		meta.Size = file.Size
	}
	return meta, nil
}

// Delete removes a stored file by its remote id. A 404 is treated as success
// since the resource is already gone.
func (c *UploadClient) Delete(ctx context.Context, remoteID string) error {
	if strings.TrimSpace(remoteID) == "" {
		return fmt.Errorf("client: remote file id is required")
	}

	target := c.endpoint + "/" + url.PathEscape(remoteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("client: build delete request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: delete file %s: %w", remoteID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		c.logger.Debug("file already removed", slog.String("remote_id", remoteID))
		return nil
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("client: delete file %s: %s: %s", remoteID, res.Status, bodyExcerpt(res.Body))
	}
	return nil
}
