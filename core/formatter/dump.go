package formatter

import (
	"fmt"
	"io"

	"github.com/artpar/schemakit/core/schema"
	"github.com/davecgh/go-spew/spew"
)

// DumpFormatter prints Go values with their types, for debugging readers
// and classification.
type DumpFormatter struct {
	config *spew.ConfigState
}

// NewDumpFormatter creates a new dump formatter. Map keys are sorted so the
// output is stable.
func NewDumpFormatter() *DumpFormatter {
	return &DumpFormatter{
		config: &spew.ConfigState{
			Indent:                  "  ",
			SortKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		},
	}
}

// Name returns the formatter name.
func (f *DumpFormatter) Name() string {
	return "dump"
}

// Description returns the formatter description.
func (f *DumpFormatter) Description() string {
	return "Go value dump with types"
}

// FormatDocument dumps the document.
func (f *DumpFormatter) FormatDocument(w io.Writer, doc schema.Document, opts FormatOptions) error {
	f.config.Fdump(w, doc)
	return nil
}

// FormatList dumps the records.
func (f *DumpFormatter) FormatList(w io.Writer, columns []string, records []map[string]any, opts FormatOptions) error {
	f.config.Fdump(w, project(records, opts.Columns))
	return nil
}

// FormatError dumps the error chain.
func (f *DumpFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	f.config.Fdump(w, err)
	return nil
}

func init() {
	if err := Register(NewDumpFormatter()); err != nil {
		fmt.Printf("failed to register dump formatter: %v\n", err)
	}
}
