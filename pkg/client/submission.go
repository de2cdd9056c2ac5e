package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Doer is the subset of http.Client the clients depend on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SubmissionClient posts completed answer sets to a form backend endpoint.
// It satisfies the engine's Submitter contract.
type SubmissionClient struct {
	endpoint string
	http     Doer
	logger   *slog.Logger
}

// SubmissionOption customises a SubmissionClient.
type SubmissionOption func(*SubmissionClient)

// WithSubmissionHTTPClient replaces the default HTTP client.
func WithSubmissionHTTPClient(doer Doer) SubmissionOption {
	return func(c *SubmissionClient) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithSubmissionLogger attaches a structured logger.
func WithSubmissionLogger(logger *slog.Logger) SubmissionOption {
	return func(c *SubmissionClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewSubmissionClient builds a client posting submissions to the supplied
// endpoint.
func NewSubmissionClient(endpoint string, options ...SubmissionOption) (*SubmissionClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("client: submission endpoint is required")
	}

	c := &SubmissionClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

type submissionPayload struct {
	FormID  string         `json:"formId"`
	Answers map[string]any `json:"answers"`
}

// Submit posts the answer map as a JSON document. Non-2xx responses are
// returned as errors carrying the status and a truncated body excerpt.
func (c *SubmissionClient) Submit(ctx context.Context, formID string, answers map[string]any) error {
	body, err := json.Marshal(submissionPayload{FormID: formID, Answers: answers})
	if err != nil {
		return fmt.Errorf("client: encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("client: build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: submit form %s: %w", formID, err)
	}
	defer res.Body.Close()

	c.logger.Debug("form submitted",
		slog.String("form", formID),
		slog.Int("status", res.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("client: submit form %s: %s: %s", formID, res.Status, bodyExcerpt(res.Body))
	}
	return nil
}

// bodyExcerpt reads a short prefix of an error response body for diagnostics.
func bodyExcerpt(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(data) == 0 {
		return "(no body)"
	}
	return strings.TrimSpace(string(data))
}
