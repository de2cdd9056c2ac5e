package model

import (
	"fmt"
	"strings"
)

// FieldType enumerates the input kinds a form definition may declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypePhone    FieldType = "phone"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
	FieldTypeQuestion FieldType = "question"
)

// Valid reports whether the type is one of the declared field kinds.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypeNumber,
		FieldTypePhone, FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeDate, FieldTypeFile, FieldTypeQuestion:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the type carries a choice list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox, FieldTypeQuestion:
		return true
	default:
		return false
	}
}

// Option is a selectable choice on a choice-typed field. Question options may
// additionally carry branching metadata: an explicit next node, or an end
// marker that terminates the question flow regardless of remaining nodes.
type Option struct {
	Value          string `json:"value" yaml:"value"`
	Label          string `json:"label,omitempty" yaml:"label,omitempty"`
	Image          string `json:"image,omitempty" yaml:"image,omitempty"`
	NextQuestionID string `json:"nextQuestionId,omitempty" yaml:"nextQuestionId,omitempty"`
	IsEnd          bool   `json:"isEnd,omitempty" yaml:"isEnd,omitempty"`
}

// Field models an individual input inside a form definition. Struct fields are
// annotated so definition documents can be serialised directly.
type Field struct {
	ID          string    `json:"id" yaml:"id"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required" yaml:"required"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Note        string    `json:"note,omitempty" yaml:"note,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Option returns the option carrying the supplied value, if any.
func (f Field) Option(value string) (Option, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// FormDefinition is the immutable input to the form engine: an ordered field
// list partitioned at construction into the question flow and the field set.
type FormDefinition struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`

	questions []Field
	fieldSet  []Field
}

// NewFormDefinition validates the field list and partitions question-typed
// fields away from the ordinary field set, preserving declared order in both.
func NewFormDefinition(id, name string, fields []Field) (FormDefinition, error) {
	def := FormDefinition{
		ID:     strings.TrimSpace(id),
		Name:   strings.TrimSpace(name),
		Fields: append([]Field(nil), fields...),
	}
	if def.ID == "" {
		return FormDefinition{}, fmt.Errorf("model: form definition requires an id")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, field := range def.Fields {
		if strings.TrimSpace(field.ID) == "" {
			return FormDefinition{}, fmt.Errorf("model: form %s declares a field with an empty id", def.ID)
		}
		if !field.Type.Valid() {
			return FormDefinition{}, fmt.Errorf("model: field %s has unknown type %q", field.ID, field.Type)
		}
		if _, dup := seen[field.ID]; dup {
			return FormDefinition{}, fmt.Errorf("model: duplicate field id %q", field.ID)
		}
		seen[field.ID] = struct{}{}

		if field.Type == FieldTypeQuestion {
			def.questions = append(def.questions, field)
		} else {
			def.fieldSet = append(def.fieldSet, field)
		}
	}

	return def, nil
}

// Questions returns the ordered question flow.
func (d FormDefinition) Questions() []Field {
	return d.questions
}

// FieldSet returns the ordered non-question fields shown once the flow
// completes (or immediately when the flow is empty).
func (d FormDefinition) FieldSet() []Field {
	return d.fieldSet
}

// Question looks up a flow node by id.
func (d FormDefinition) Question(id string) (Field, bool) {
	for _, q := range d.questions {
		if q.ID == id {
			return q, true
		}
	}
	return Field{}, false
}
