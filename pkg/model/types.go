package model

import internalmodel "github.com/goliatone/go-formflow/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeText     = internalmodel.FieldTypeText
	FieldTypeTextarea = internalmodel.FieldTypeTextarea
	FieldTypeEmail    = internalmodel.FieldTypeEmail
	FieldTypeNumber   = internalmodel.FieldTypeNumber
	FieldTypePhone    = internalmodel.FieldTypePhone
	FieldTypeSelect   = internalmodel.FieldTypeSelect
	FieldTypeRadio    = internalmodel.FieldTypeRadio
	FieldTypeCheckbox = internalmodel.FieldTypeCheckbox
	FieldTypeDate     = internalmodel.FieldTypeDate
	FieldTypeFile     = internalmodel.FieldTypeFile
	FieldTypeQuestion = internalmodel.FieldTypeQuestion
)

type Option = internalmodel.Option
type Field = internalmodel.Field
type FormDefinition = internalmodel.FormDefinition

// NewFormDefinition re-exports the internal constructor.
func NewFormDefinition(id, name string, fields []Field) (FormDefinition, error) {
	return internalmodel.NewFormDefinition(id, name, fields)
}
