package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/model"
)

func TestValidate_RequiredFieldMissing(t *testing.T) {
	fields := []model.Field{
		{ID: "name", Type: model.FieldTypeText, Required: true},
		{ID: "note", Type: model.FieldTypeTextarea},
	}

	result := Validate(fields, flow.NewAnswers())

	if result.Valid {
		t.Fatalf("expected validation failure for missing required field")
	}
	want := map[string]string{"name": msgRequired}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_BlankStringFailsRequired(t *testing.T) {
	fields := []model.Field{{ID: "name", Type: model.FieldTypeText, Required: true}}
	answers := flow.NewAnswers()
	answers.Set("name", "   ")

	if result := Validate(fields, answers); result.Valid {
		t.Fatalf("blank answer must fail a required check")
	}
}

func TestValidate_NeverReportsOutsideSubset(t *testing.T) {
	// Only "name" is in scope; "email" is required but unanswered and must
	// not be reported.
	subset := []model.Field{{ID: "name", Type: model.FieldTypeText, Required: true}}
	answers := flow.NewAnswers()
	answers.Set("name", "Ada")

	result := Validate(subset, answers)

	if !result.Valid {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if _, ok := result.Errors["email"]; ok {
		t.Fatalf("validation must be limited to the supplied subset")
	}
}

func TestValidate_QuestionUsesNamespacedKey(t *testing.T) {
	fields := []model.Field{{ID: "q1", Type: model.FieldTypeQuestion, Required: true}}
	answers := flow.NewAnswers()
	answers.Set(flow.QuestionKey("q1"), "optA")

	if result := Validate(fields, answers); !result.Valid {
		t.Fatalf("expected namespaced answer to satisfy the question, got %v", result.Errors)
	}
}

func TestValidate_Formats(t *testing.T) {
	cases := []struct {
		name      string
		fieldType model.FieldType
		value     string
		wantMsg   string
	}{
		{"valid email", model.FieldTypeEmail, "ada@example.com", ""},
		{"invalid email", model.FieldTypeEmail, "not-an-email", msgInvalidEmail},
		{"valid phone", model.FieldTypePhone, "+1 (555) 867-5309", ""},
		{"invalid phone", model.FieldTypePhone, "call me", msgInvalidPhone},
		{"valid number", model.FieldTypeNumber, "12.5", ""},
		{"invalid number", model.FieldTypeNumber, "twelve", msgInvalidNum},
		{"valid date", model.FieldTypeDate, "2026-08-31", ""},
		{"invalid date", model.FieldTypeDate, "31/08/2026", msgInvalidDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := []model.Field{{ID: "f", Type: tc.fieldType}}
			answers := flow.NewAnswers()
			answers.Set("f", tc.value)

			result := Validate(fields, answers)

			if tc.wantMsg == "" {
				if !result.Valid {
					t.Fatalf("expected %q to pass, got %v", tc.value, result.Errors)
				}
				return
			}
			if result.Valid || result.Errors["f"] != tc.wantMsg {
				t.Fatalf("expected %q for %q, got %v", tc.wantMsg, tc.value, result.Errors)
			}
		})
	}
}

func TestValidate_FormatSkippedWhenOptionalAndEmpty(t *testing.T) {
	fields := []model.Field{{ID: "email", Type: model.FieldTypeEmail}}

	if result := Validate(fields, flow.NewAnswers()); !result.Valid {
		t.Fatalf("optional empty field must not fail format checks: %v", result.Errors)
	}
}
