package output

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	documentSchema     = mustSchema("schemas/document.schema.json")
	consolidatedSchema = mustSchema("schemas/consolidated.schema.json")
)

func mustSchema(name string) *gojsonschema.Schema {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return s
}

// FieldError is one schema violation at a JSON path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for i, e := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, e.Field, e.Message)
	}
	return sb.String()
}

// CheckOutput validates a per-document output. data may be a
// PerDocumentOutput, a decoded map, or raw JSON bytes.
func CheckOutput(data any) error {
	return check(documentSchema, data)
}

// CheckConsolidated validates a consolidated output.
func CheckConsolidated(data any) error {
	return check(consolidatedSchema, data)
}

// ValidateOutput reports whether data is a structurally valid per-document
// output, logging each violation.
func ValidateOutput(data any, log *slog.Logger) bool {
	return report(CheckOutput(data), "per-document", log)
}

// ValidateConsolidated reports whether data is a structurally valid
// consolidated output, logging each violation.
func ValidateConsolidated(data any, log *slog.Logger) bool {
	return report(CheckConsolidated(data), "consolidated", log)
}

func check(schema *gojsonschema.Schema, data any) error {
	var loader gojsonschema.JSONLoader
	switch v := data.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(v)
	case json.RawMessage:
		loader = gojsonschema.NewBytesLoader(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode for validation: %w", err)
		}
		loader = gojsonschema.NewBytesLoader(raw)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

func report(err error, kind string, log *slog.Logger) bool {
	if err == nil {
		return true
	}
	if log == nil {
		log = slog.Default()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, fe := range ve.Errors {
			log.Error("output validation failed", "kind", kind, "field", fe.Field, "error", fe.Message)
		}
		return false
	}
	log.Error("output validation failed", "kind", kind, "error", err)
	return false
}
