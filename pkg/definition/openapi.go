package definition

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// FromOperation derives a form definition from an OpenAPI operation's request
// schema: each top-level property becomes a field-set entry, the schema's
// required list drives the Required flag. Question flows are an authoring
// concept and only exist in definition documents; OpenAPI sources produce
// field sets only.
func FromOperation(ctx context.Context, raw []byte, operationID string) (model.FormDefinition, error) {
	if err := ctx.Err(); err != nil {
		return model.FormDefinition{}, err
	}
	if strings.TrimSpace(operationID) == "" {
		return model.FormDefinition{}, fmt.Errorf("definition: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("definition: load openapi document: %w", err)
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return model.FormDefinition{}, fmt.Errorf("definition: operation %q not found", operationID)
	}

	schema := requestSchema(operation)
	if schema == nil {
		return model.FormDefinition{}, fmt.Errorf("definition: operation %q has no request schema", operationID)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]model.Field, 0, len(names))
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		fields = append(fields, fieldFromSchema(name, ref.Value, required[name]))
	}

	def, err := model.NewFormDefinition(operationID, operation.Summary, fields)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("definition: %w", err)
	}
	return def, nil
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldFromSchema(name string, schema *openapi3.Schema, required bool) model.Field {
	field := model.Field{
		ID:       name,
		Type:     fieldType(schema),
		Required: required,
		Label:    sanitizeText(schema.Title),
		Note:     sanitizeText(schema.Description),
	}
	if len(schema.Enum) > 0 {
		field.Options = make([]model.Option, 0, len(schema.Enum))
		for _, entry := range schema.Enum {
			value := fmt.Sprint(entry)
			field.Options = append(field.Options, model.Option{Value: value})
		}
	}
	return field
}

func fieldType(schema *openapi3.Schema) model.FieldType {
	types := schema.Type
	switch {
	case types.Is(openapi3.TypeBoolean):
		return model.FieldTypeCheckbox
	case types.Is(openapi3.TypeInteger), types.Is(openapi3.TypeNumber):
		return model.FieldTypeNumber
	case types.Is(openapi3.TypeString):
		if len(schema.Enum) > 0 {
			return model.FieldTypeSelect
		}
		switch schema.Format {
		case "email":
			return model.FieldTypeEmail
		case "date":
			return model.FieldTypeDate
		case "binary", "byte":
			return model.FieldTypeFile
		}
		if schema.MaxLength == nil && schema.Format == "" && schema.Pattern == "" && looksLong(schema) {
			return model.FieldTypeTextarea
		}
		return model.FieldTypeText
	default:
		return model.FieldTypeText
	}
}

// looksLong treats explicitly long minimums as textarea hints.
func looksLong(schema *openapi3.Schema) bool {
	return schema.MinLength > 120
}
