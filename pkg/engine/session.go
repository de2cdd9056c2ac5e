// Package engine ties the pieces of a single form render together: the
// question-flow navigator, the shared answer map, scope-limited validation,
// per-field upload lifecycle, and the final submission. One Session exists per
// active form instance, constructed on mount and discarded on successful
// submission or unmount.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
)

var (
	// ErrSubmitInFlight guards double submission while a call is pending.
	ErrSubmitInFlight = errors.New("engine: a submission is already in flight")

	// ErrFlowIncomplete is returned when SubmitAttempt runs before the
	// question flow reached the field set; question selection advances the
	// navigator directly and never goes through submit.
	ErrFlowIncomplete = errors.New("engine: question flow is not complete")
)

// Submitter is the external submission service contract: a flat answer map
// keyed by field identifier (questions use their namespaced key).
type Submitter interface {
	Submit(ctx context.Context, formID string, answers map[string]any) error
}

// Option customises session construction.
type Option func(*Session)

// WithSubmitter wires the external submission service.
func WithSubmitter(submitter Submitter) Option {
	return func(s *Session) {
		s.submitter = submitter
	}
}

// WithUploader wires the external file service used by file-typed fields.
func WithUploader(uploader upload.Uploader) Option {
	return func(s *Session) {
		s.uploader = uploader
	}
}

// WithLogger sets the structured logger shared with the navigator and the
// upload manager.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnSuccess installs a callback invoked instead of the default state reset
// when a submission succeeds. The caller then owns teardown.
func WithOnSuccess(fn func()) Option {
	return func(s *Session) {
		s.onSuccess = fn
	}
}

// Session owns all mutable state of one form render. Methods are safe for
// concurrent use, though the expected caller is a single event loop; locking
// exists because upload and submission completions may land on other
// goroutines.
type Session struct {
	mu        sync.Mutex
	def       model.FormDefinition
	answers   *flow.Answers
	nav       *flow.Navigator
	uploads   *upload.Manager
	uploader  upload.Uploader
	submitter Submitter
	logger    *slog.Logger
	onSuccess func()

	submitting bool
	// epoch detects stale submission outcomes: back navigation and resets
	// bump it, and an outcome carrying an older epoch is discarded.
	epoch uint64
}

// NewSession builds a session over an immutable form definition.
func NewSession(def model.FormDefinition, options ...Option) *Session {
	s := &Session{
		def:    def,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.answers = flow.NewAnswers()
	s.nav = flow.NewNavigator(def, s.answers, flow.WithLogger(s.logger))
	s.uploads = upload.NewManager(s.uploader, s.answers, upload.WithLogger(s.logger))
	return s
}

// Definition returns the immutable form definition.
func (s *Session) Definition() model.FormDefinition {
	return s.def
}

// VisibleFields returns the subset a renderer should display and a validator
// should check: the current question while the flow is open, the full field
// set afterwards.
func (s *Session) VisibleFields() []model.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

func (s *Session) visibleLocked() []model.Field {
	if current, ok := s.nav.Current(); ok {
		return []model.Field{current}
	}
	return s.def.FieldSet()
}

// FlowComplete reports whether the field set is on display.
func (s *Session) FlowComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.FlowComplete()
}

// CanGoBack reports whether a Back call would do anything.
func (s *Session) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nav.History()) > 0
}

// Select records the chosen option on the current question and advances the
// flow.
func (s *Session) Select(questionID, optionValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Select(questionID, optionValue)
}

// Back undoes the last forward transition. A pending submission becomes stale.
func (s *Session) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := s.nav.Back()
	if moved {
		s.epoch++
	}
	return moved
}

// SetAnswer records a value for a field-set input. Question and file fields
// are rejected; questions are answered through Select, files through
// UploadFile.
func (s *Session) SetAnswer(fieldID string, value any) error {
	field, err := s.fieldSetField(fieldID)
	if err != nil {
		return err
	}
	if field.Type == model.FieldTypeFile {
		return fmt.Errorf("engine: field %s is file-typed, use UploadFile", fieldID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers.Set(fieldID, value)
	return nil
}

// Answer returns the recorded value for an answer-map key.
func (s *Session) Answer(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Get(key)
}

// Answers returns a detached snapshot of the answer map.
func (s *Session) Answers() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Snapshot()
}

// UploadFile starts the upload lifecycle for a file-typed field. The call
// blocks for the external round trip; run it off the event loop and consult
// UploadStatus for progress.
func (s *Session) UploadFile(ctx context.Context, fieldID string, file upload.File) error {
	field, err := s.fieldSetField(fieldID)
	if err != nil {
		return err
	}
	if field.Type != model.FieldTypeFile {
		return fmt.Errorf("engine: field %s is not file-typed", fieldID)
	}
	return s.uploads.Upload(ctx, fieldID, file)
}

// RemoveFile clears a file field's value, deleting the remote file
// best-effort.
func (s *Session) RemoveFile(ctx context.Context, fieldID string) {
	s.uploads.Remove(ctx, fieldID)
}

// UploadStatus returns the lifecycle state of a file field.
func (s *Session) UploadStatus(fieldID string) upload.Status {
	return s.uploads.Status(fieldID)
}

// SubmitAttempt validates the currently visible subset and, when the field set
// is on display and valid, calls the submission service with the full answer
// map. An invalid subset aborts with per-field errors and no network call. On
// success the session resets (or the success callback runs instead); on
// failure all state is kept so the user can retry.
func (s *Session) SubmitAttempt(ctx context.Context) (validation.Result, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return validation.Result{}, ErrSubmitInFlight
	}

	result := validation.Validate(s.visibleLocked(), s.answers)
	if !result.Valid {
		s.mu.Unlock()
		return result, nil
	}
	if !s.nav.FlowComplete() {
		s.mu.Unlock()
		return result, ErrFlowIncomplete
	}
	if s.submitter == nil {
		s.mu.Unlock()
		return result, errors.New("engine: no submitter configured")
	}

	s.submitting = true
	epoch := s.epoch
	formID := s.def.ID
	payload := s.answers.Snapshot()
	s.mu.Unlock()

	err := s.submitter.Submit(ctx, formID, payload)

	s.mu.Lock()
	s.submitting = false
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.Debug("discarding stale submission outcome", "form", formID)
		return result, nil
	}
	if err != nil {
		s.mu.Unlock()
		return result, fmt.Errorf("engine: submit form %s: %w", formID, err)
	}

	callback := s.onSuccess
	if callback == nil {
		s.resetLocked()
	}
	s.mu.Unlock()

	if callback != nil {
		callback()
	}
	return result, nil
}

// Reset discards all collected state without touching remote files: the
// navigator returns to its initial node, the answer map empties, upload
// tracking drops. Used after a successful submission.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.epoch++
	s.answers.Clear()
	s.nav.Reset()
	s.uploads.Forget()
}

// Teardown is the unmount boundary for an abandoned session: uploaded files
// are deleted best-effort before the local state is discarded.
func (s *Session) Teardown(ctx context.Context) {
	s.uploads.Reset(ctx)
	s.Reset()
}

func (s *Session) fieldSetField(fieldID string) (model.Field, error) {
	for _, field := range s.def.FieldSet() {
		if field.ID == fieldID {
			return field, nil
		}
	}
	return model.Field{}, fmt.Errorf("engine: unknown field %q", fieldID)
}
