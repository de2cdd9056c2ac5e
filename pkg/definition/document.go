package definition

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

type documentFile struct {
	ID     string        `json:"id" yaml:"id"`
	Name   string        `json:"name" yaml:"name"`
	Fields []model.Field `json:"fields" yaml:"fields"`
}

// Parse decodes a JSON or YAML form definition document. Field labels, notes,
// placeholders, and option labels are sanitised to plain text; unknown field
// types and duplicate identifiers are rejected.
func Parse(data []byte) (model.FormDefinition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.FormDefinition{}, fmt.Errorf("definition: document is empty")
	}

	doc, err := parseDocument(data)
	if err != nil {
		return model.FormDefinition{}, err
	}

	for i := range doc.Fields {
		field := &doc.Fields[i]
		field.Label = sanitizeText(field.Label)
		field.Placeholder = sanitizeText(field.Placeholder)
		field.Note = sanitizeText(field.Note)
		for j := range field.Options {
			field.Options[j].Label = sanitizeText(field.Options[j].Label)
		}
	}

	def, err := model.NewFormDefinition(doc.ID, doc.Name, doc.Fields)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("definition: %w", err)
	}
	return def, nil
}

// ParseFile reads and parses a definition document from disk.
func ParseFile(path string) (model.FormDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("definition: read %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return model.FormDefinition{}, fmt.Errorf("definition: parse %s: %w", path, err)
	}
	return def, nil
}

func parseDocument(data []byte) (documentFile, error) {
	var doc documentFile
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("definition: document is neither valid JSON nor valid YAML")
}
