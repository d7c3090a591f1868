package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/artpar/schemakit/core/schema"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatDocument formats the document as JSON.
func (f *JSONFormatter) FormatDocument(w io.Writer, doc schema.Document, opts FormatOptions) error {
	return f.encode(w, doc, opts.Compact)
}

// FormatList formats a list of records as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, columns []string, records []map[string]any, opts FormatOptions) error {
	data := project(records, opts.Columns)
	if data == nil {
		data = []map[string]any{}
	}

	output := map[string]any{
		"count": len(data),
		"data":  data,
	}
	return f.encode(w, output, opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output, false)
}

// encode writes JSON to the writer.
func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewJSONFormatter()); err != nil {
		fmt.Printf("failed to register json formatter: %v\n", err)
	}
}
