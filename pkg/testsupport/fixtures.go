// Package testsupport provides shared fixtures and golden-file helpers for
// contract tests across the module.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

// BranchingDefinition returns a small form exercising every flow feature: an
// explicit branch, an end-marker option, a sequential fallthrough, and a field
// set with required, optional, and file inputs.
func BranchingDefinition(t *testing.T) model.FormDefinition {
	t.Helper()

	def, err := model.NewFormDefinition("contact", "Contact us", []model.Field{
		{
			ID:   "q1",
			Type: model.FieldTypeQuestion,
			Options: []model.Option{
				{Value: "optA", Label: "Ask a question", NextQuestionID: "q2"},
				{Value: "optB", Label: "Just browsing", IsEnd: true},
			},
		},
		{
			ID:   "q2",
			Type: model.FieldTypeQuestion,
			Options: []model.Option{
				{Value: "optC", Label: "Product"},
			},
		},
		{ID: "name", Type: model.FieldTypeText, Required: true, Label: "Your name"},
		{ID: "email", Type: model.FieldTypeEmail, Required: true, Label: "Email"},
		{ID: "attachment", Type: model.FieldTypeFile, Label: "Attachment"},
	})
	if err != nil {
		t.Fatalf("build fixture definition: %v", err)
	}
	return def
}

// FieldSetOnlyDefinition returns a form with no question flow, so a session
// over it starts directly on the field set.
func FieldSetOnlyDefinition(t *testing.T) model.FormDefinition {
	t.Helper()

	def, err := model.NewFormDefinition("newsletter", "Newsletter", []model.Field{
		{ID: "email", Type: model.FieldTypeEmail, Required: true},
		{ID: "frequency", Type: model.FieldTypeSelect, Options: []model.Option{
			{Value: "weekly"}, {Value: "monthly"},
		}},
	})
	if err != nil {
		t.Fatalf("build fixture definition: %v", err)
	}
	return def
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
