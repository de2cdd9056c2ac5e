// Package validation checks a given subset of fields against the current
// answer map. Validation is scope-limited by design: callers pass only the
// fields currently visible (the active question, or the field set once the
// flow completes), so fields not yet reached are never blocked and fields
// already passed are not re-checked unless revisited.
package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/model"
)

const (
	msgRequired     = "this field is required"
	msgInvalidEmail = "must be a valid email address"
	msgInvalidPhone = "must be a valid phone number"
	msgInvalidNum   = "must be a number"
	msgInvalidDate  = "must be a date in YYYY-MM-DD format"
)

var (
	// Use a singleton validator instance to avoid recreating it.
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()

		// Loose phone check: digits with optional +, spaces, dashes,
		// dots and parentheses. The e164 tag is too strict for values
		// typed into a contact form.
		_ = validatorInstance.RegisterValidation("loosephone", func(fl validator.FieldLevel) bool {
			return isLoosePhone(fl.Field().String())
		})
	})
	return validatorInstance
}

// Result is the structured outcome of a validation pass. Errors maps field
// identifiers to a single human-readable message; non-failing fields produce
// no entry.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// Validate checks each field in the subset against the answer map. Required
// fields fail when their key is absent or blank; typed fields additionally
// fail format checks when a non-empty answer is present. It never reports an
// error for a field outside the subset and never returns an error value;
// validation failure is data, not a fault.
func Validate(fields []model.Field, answers *flow.Answers) Result {
	result := Result{Valid: true}

	for _, field := range fields {
		key := answerKey(field)

		if answers.Empty(key) {
			if field.Required {
				result.attach(field.ID, msgRequired)
			}
			continue
		}

		if message := formatError(field.Type, answers.String(key)); message != "" {
			result.attach(field.ID, message)
		}
	}

	return result
}

func (r *Result) attach(fieldID, message string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[fieldID] = message
	r.Valid = false
}

func answerKey(field model.Field) string {
	if field.Type == model.FieldTypeQuestion {
		return flow.QuestionKey(field.ID)
	}
	return field.ID
}

func formatError(fieldType model.FieldType, value string) string {
	v := getValidator()
	switch fieldType {
	case model.FieldTypeEmail:
		if v.Var(value, "email") != nil {
			return msgInvalidEmail
		}
	case model.FieldTypePhone:
		if v.Var(value, "loosephone") != nil {
			return msgInvalidPhone
		}
	case model.FieldTypeNumber:
		if v.Var(value, "numeric") != nil {
			return msgInvalidNum
		}
	case model.FieldTypeDate:
		if v.Var(value, "datetime=2006-01-02") != nil {
			return msgInvalidDate
		}
	}
	return ""
}

func isLoosePhone(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	digits := 0
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 5
}
