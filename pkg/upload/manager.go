// Package upload manages exactly one asynchronous remote resource per
// file-typed field: upload, preview metadata, and best-effort remote
// deletion. Different fields upload independently; a single field never has
// two uploads in flight.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formflow/pkg/flow"
)

// ErrUploadInFlight is returned when a field already has an upload running.
// Input surfaces should be disabled while uploading; this guards re-entrant
// calls that slip through anyway.
var ErrUploadInFlight = errors.New("upload: an upload is already in flight for this field")

// Uploader is the external service contract: upload a file, delete it later
// by its remote identifier.
type Uploader interface {
	Upload(ctx context.Context, file File) (FileMeta, error)
	Delete(ctx context.Context, remoteID string) error
}

// Option customises manager construction.
type Option func(*Manager)

// WithLogger sets the structured logger used for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager tracks per-field upload state for one form session and writes
// completed uploads into the shared answer map. Methods are safe for
// concurrent use; uploads for different fields may overlap.
type Manager struct {
	mu       sync.Mutex
	uploader Uploader
	answers  *flow.Answers
	logger   *slog.Logger
	fields   map[string]*fieldState
}

type fieldState struct {
	status Status
	// generation detects stale completions: any reset or removal bumps it,
	// and a result carrying an older generation is discarded.
	generation uint64
}

// NewManager builds a manager over the shared answer map.
func NewManager(uploader Uploader, answers *flow.Answers, options ...Option) *Manager {
	m := &Manager{
		uploader: uploader,
		answers:  answers,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		fields:   make(map[string]*fieldState),
	}
	if m.answers == nil {
		m.answers = flow.NewAnswers()
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Status returns the current lifecycle state for a field; fields without any
// interaction report idle.
func (m *Manager) Status(fieldID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.fields[fieldID]; ok {
		return st.status
	}
	return Status{State: StateIdle}
}

// Upload transitions the field to uploading, calls the external service, and
// on success records the file metadata in the answer map. On failure the field
// moves to the error state and the answer map stays untouched; the user may
// retry. A completion that arrives after Remove or Reset is discarded.
func (m *Manager) Upload(ctx context.Context, fieldID string, file File) error {
	if m.uploader == nil {
		return errors.New("upload: no uploader configured")
	}

	m.mu.Lock()
	st := m.ensure(fieldID)
	if st.status.State == StateUploading {
		m.mu.Unlock()
		return ErrUploadInFlight
	}
	st.status = Status{State: StateUploading}
	generation := st.generation
	m.mu.Unlock()

	meta, err := m.uploader.Upload(ctx, file)

	m.mu.Lock()
	stale := st.generation != generation
	if !stale {
		if err != nil {
			st.status = Status{State: StateError, Err: err.Error()}
		} else {
			st.status = Status{State: StateUploaded, Meta: meta}
			m.answers.Set(fieldID, meta)
		}
	}
	m.mu.Unlock()

	if stale {
		m.logger.Debug("discarding stale upload result", "field", fieldID, "file", file.Name)
		if err == nil && meta.RemoteID != "" {
			m.deleteBestEffort(context.WithoutCancel(ctx), fieldID, meta.RemoteID)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("upload: field %s: %w", fieldID, err)
	}
	return nil
}

// Remove clears the field's answer and resets it to idle. When the field holds
// an uploaded file with a remote identifier, the external delete runs
// best-effort: a cleanup failure is logged, never surfaced, because the user's
// intent to drop the value must not be blocked by it.
func (m *Manager) Remove(ctx context.Context, fieldID string) {
	m.mu.Lock()
	st := m.ensure(fieldID)
	remoteID := ""
	if st.status.State == StateUploaded {
		remoteID = st.status.Meta.RemoteID
	}
	st.status = Status{State: StateIdle}
	st.generation++
	m.answers.Delete(fieldID)
	m.mu.Unlock()

	if remoteID != "" {
		m.deleteBestEffort(ctx, fieldID, remoteID)
	}
}

// Reset removes every tracked field, issuing best-effort deletes for uploaded
// files, and returns the manager to its freshly constructed state.
func (m *Manager) Reset(ctx context.Context) {
	m.mu.Lock()
	remote := make(map[string]string)
	for fieldID, st := range m.fields {
		if st.status.State == StateUploaded && st.status.Meta.RemoteID != "" {
			remote[fieldID] = st.status.Meta.RemoteID
		}
		// In-flight uploads hold the old pointer; bumping the generation
		// makes their completion stale.
		st.generation++
		m.answers.Delete(fieldID)
	}
	m.fields = make(map[string]*fieldState)
	m.mu.Unlock()

	for fieldID, remoteID := range remote {
		m.deleteBestEffort(ctx, fieldID, remoteID)
	}
}

// Forget drops all tracked state without touching remote files or the answer
// map. Used after a successful submission, when the uploaded files belong to
// the submitted payload and must outlive the session.
func (m *Manager) Forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.fields {
		st.generation++
	}
	m.fields = make(map[string]*fieldState)
}

func (m *Manager) ensure(fieldID string) *fieldState {
	st, ok := m.fields[fieldID]
	if !ok {
		st = &fieldState{}
		m.fields[fieldID] = st
	}
	return st
}

func (m *Manager) deleteBestEffort(ctx context.Context, fieldID, remoteID string) {
	if m.uploader == nil {
		return
	}
	if err := m.uploader.Delete(ctx, remoteID); err != nil {
		m.logger.Warn("remote file delete failed", "field", fieldID, "remoteId", remoteID, "error", err)
	}
}
