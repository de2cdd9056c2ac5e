// Package formflow drives dynamic question-flow forms: a branching question
// navigator, scope-limited validation, asynchronous per-field file uploads,
// and submission orchestration over a pluggable backend.
//
// The root package re-exports the types most integrations need; the pkg/
// subpackages remain available for callers wiring the pieces individually.
package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/definition"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/upload"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Field models an individual input inside a form definition.
type Field = model.Field

// FieldType enumerates the input kinds a form definition may declare.
type FieldType = model.FieldType

// Option is a selectable choice on a choice-typed field.
type Option = model.Option

// FormDefinition is the immutable input to the form engine.
type FormDefinition = model.FormDefinition

// Session is a live run of one form: navigation, answers, uploads, and
// submission state.
type Session = engine.Session

// SessionOption customises session construction.
type SessionOption = engine.Option

// Submitter delivers a completed answer set to a backend.
type Submitter = engine.Submitter

// Uploader stores and removes files against a remote backend.
type Uploader = upload.Uploader

// File is the local payload handed to an upload call.
type File = upload.File

// FileMeta describes an uploaded remote file.
type FileMeta = upload.FileMeta

// UploadStatus is the tagged lifecycle state of one file field.
type UploadStatus = upload.Status

// ValidationResult reports per-field validation messages for a submit attempt.
type ValidationResult = validation.Result

// NewSession builds a session over a validated definition. Use
// engine.WithSubmitter and engine.WithUploader (re-exported here) to connect
// backends.
func NewSession(def FormDefinition, options ...SessionOption) *Session {
	return engine.NewSession(def, options...)
}

// WithSubmitter connects the backend that receives completed submissions.
var WithSubmitter = engine.WithSubmitter

// WithUploader connects the backend that stores file-field uploads.
var WithUploader = engine.WithUploader

// WithOnSuccess replaces the post-submission reset with a caller-supplied
// callback.
var WithOnSuccess = engine.WithOnSuccess

// Parse decodes a JSON or YAML form definition document.
func Parse(data []byte) (FormDefinition, error) {
	return definition.Parse(data)
}

// ParseFile reads and parses a definition document from disk.
func ParseFile(path string) (FormDefinition, error) {
	return definition.ParseFile(path)
}

// FromOperation derives a field-set-only definition from an OpenAPI
// operation's request schema.
func FromOperation(ctx context.Context, raw []byte, operationID string) (FormDefinition, error) {
	return definition.FromOperation(ctx, raw, operationID)
}
