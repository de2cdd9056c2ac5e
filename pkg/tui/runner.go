// Package tui runs a form session interactively in the terminal: question
// flow as select prompts with back navigation, then the field set with one
// prompt per input, then submission with inline validation feedback.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/upload"
)

const backEntry = "(go back)"

// Option configures a Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner walks a session from first question to accepted submission.
type Runner struct {
	session *engine.Session
	driver  PromptDriver
	logger  *slog.Logger
}

// NewRunner builds a runner over the supplied session. Without options it
// prompts on the real terminal.
func NewRunner(session *engine.Session, options ...Option) *Runner {
	r := &Runner{
		session: session,
		driver:  newSurveyDriver(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Run drives the session to a successful submission. It returns ErrAborted
// when the user interrupts a prompt, or the submission error when the backend
// rejects the final payload.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.runFlow(ctx); err != nil {
		return err
	}
	return r.runFieldSet(ctx)
}

func (r *Runner) runFlow(ctx context.Context) error {
	for !r.session.FlowComplete() {
		fields := r.session.VisibleFields()
		if len(fields) == 0 {
			return nil
		}
		question := fields[0]

		labels := make([]string, 0, len(question.Options)+1)
		for _, opt := range question.Options {
			labels = append(labels, optionLabel(opt))
		}
		if r.session.CanGoBack() {
			labels = append(labels, backEntry)
		}

		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: promptMessage(question),
			Options: labels,
			Help:    question.Note,
		})
		if err != nil {
			return err
		}

		if idx < 0 || idx >= len(question.Options) {
			r.session.Back()
			continue
		}
		if err := r.session.Select(question.ID, question.Options[idx].Value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runFieldSet(ctx context.Context) error {
	for {
		for _, field := range r.session.VisibleFields() {
			if err := r.promptField(ctx, field); err != nil {
				return err
			}
		}

		result, err := r.session.SubmitAttempt(ctx)
		if err != nil {
			return fmt.Errorf("tui: submit: %w", err)
		}
		if result.Valid {
			return r.driver.Info(ctx, "Thanks, your form was submitted.")
		}

		for fieldID, message := range result.Errors {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", fieldID, message)); err != nil {
				return err
			}
		}
		r.logger.Debug("submission rejected by validation", slog.Int("errors", len(result.Errors)))
	}
}

func (r *Runner) promptField(ctx context.Context, field model.Field) error {
	switch {
	case field.Type == model.FieldTypeFile:
		return r.promptFile(ctx, field)
	case field.Type == model.FieldTypeTextarea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: promptMessage(field),
			Default: r.currentAnswer(field.ID),
			Help:    field.Note,
		})
		if err != nil {
			return err
		}
		return r.setAnswer(field.ID, value)
	case field.Type == model.FieldTypeCheckbox && len(field.Options) == 0:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: promptMessage(field),
			Help:    field.Note,
		})
		if err != nil {
			return err
		}
		if !checked {
			return r.setAnswer(field.ID, "")
		}
		return r.setAnswer(field.ID, "true")
	case field.Type.HasOptions():
		labels := make([]string, 0, len(field.Options))
		for _, opt := range field.Options {
			labels = append(labels, optionLabel(opt))
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: promptMessage(field),
			Options: labels,
			Help:    field.Note,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil
		}
		return r.setAnswer(field.ID, field.Options[idx].Value)
	default:
		value, err := r.driver.Input(ctx, InputConfig{
			Message: promptMessage(field),
			Default: r.currentAnswer(field.ID),
			Help:    inputHelp(field),
		})
		if err != nil {
			return err
		}
		return r.setAnswer(field.ID, value)
	}
}

func (r *Runner) promptFile(ctx context.Context, field model.Field) error {
	if status := r.session.UploadStatus(field.ID); status.State == upload.StateUploaded {
		keep, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Keep uploaded file %s?", status.Meta.Name),
			Default: true,
		})
		if err != nil {
			return err
		}
		if keep {
			return nil
		}
		r.session.RemoveFile(ctx, field.ID)
	}

	path, err := r.driver.Input(ctx, InputConfig{
		Message: promptMessage(field) + " (file path, empty to skip)",
		Help:    field.Note,
	})
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return r.driver.Info(ctx, fmt.Sprintf("cannot open %s: %v", path, err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return r.driver.Info(ctx, fmt.Sprintf("cannot stat %s: %v", path, err))
	}

	if err := r.session.UploadFile(ctx, field.ID, upload.File{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: contentTypeFor(path),
		Content:     file,
	}); err != nil {
		if errors.Is(err, upload.ErrUploadInFlight) {
			return err
		}
		return r.driver.Info(ctx, fmt.Sprintf("upload failed: %v", err))
	}
	return nil
}

func (r *Runner) setAnswer(fieldID, value string) error {
	if err := r.session.SetAnswer(fieldID, value); err != nil {
		return fmt.Errorf("tui: record answer: %w", err)
	}
	return nil
}

func (r *Runner) currentAnswer(fieldID string) string {
	value, ok := r.session.Answer(fieldID)
	if !ok {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func promptMessage(field model.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.ID
}

func inputHelp(field model.Field) string {
	if field.Note != "" {
		return field.Note
	}
	return field.Placeholder
}

func optionLabel(opt model.Option) string {
	if strings.TrimSpace(opt.Label) != "" {
		return opt.Label
	}
	return opt.Value
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
