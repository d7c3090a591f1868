package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/artpar/schemakit/core/convention"
	"github.com/artpar/schemakit/core/schema"
)

// TableFormatter formats output as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatDocument prints one table per non-empty definition kind.
func (f *TableFormatter) FormatDocument(w io.Writer, doc schema.Document, opts FormatOptions) error {
	if doc.Summary().Total() == 0 {
		fmt.Fprintln(w, "No definitions found.")
		return nil
	}

	var sections [][][]string

	if len(doc.Schema) > 0 {
		rows := [][]string{{"ENTITY", "TABLE", "FIELDS", "PRIMARY KEY", "TIMESTAMPS"}}
		for _, name := range doc.EntityNames() {
			e := doc.Schema[name]
			table := e.Table
			if table == "" {
				table = convention.TableName(name)
			}
			rows = append(rows, []string{
				name,
				table,
				strings.Join(e.FieldNames(), ","),
				strings.Join(e.PrimaryKey, ","),
				f.formatValue(e.Timestamps, 0),
			})
		}
		sections = append(sections, rows)
	}

	if len(doc.Relationships) > 0 {
		rows := [][]string{{"RELATIONSHIP", "FROM", "TO", "FOREIGN KEY", "THROUGH"}}
		for _, def := range doc.Relationships {
			r := schema.DecodeRelationship(def)
			rows = append(rows, []string{r.Type, r.From, r.To, dash(r.ForeignKey), dash(r.Through)})
		}
		sections = append(sections, rows)
	}

	if len(doc.Indexes) > 0 {
		rows := [][]string{{"INDEX", "ON", "FIELDS", "UNIQUE"}}
		for _, def := range doc.Indexes {
			idx := schema.DecodeIndex(def)
			rows = append(rows, []string{dash(idx.Name), dash(idx.On), strings.Join(idx.Fields, ","), f.formatValue(idx.Unique, 0)})
		}
		sections = append(sections, rows)
	}

	if len(doc.Migrations) > 0 {
		rows := [][]string{{"MIGRATION", "DEFINITION"}}
		for _, m := range doc.Migrations {
			rows = append(rows, []string{m.Version, f.formatValue(m.Migration, opts.MaxWidth)})
		}
		sections = append(sections, rows)
	}

	if len(doc.Seeds) > 0 {
		rows := [][]string{{"SEED", "DATA"}}
		for _, s := range doc.Seeds {
			rows = append(rows, []string{s.Name, f.formatValue(s.Seeds, opts.MaxWidth)})
		}
		sections = append(sections, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, rows := range sections {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		if opts.NoHeader {
			rows = rows[1:]
		}
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}
	return tw.Flush()
}

// FormatList formats a list of records as a table.
func (f *TableFormatter) FormatList(w io.Writer, columns []string, records []map[string]any, opts FormatOptions) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	if len(opts.Columns) > 0 {
		columns = opts.Columns
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Print header
	if !opts.NoHeader {
		headers := make([]string, len(columns))
		for i, col := range columns {
			headers[i] = strings.ToUpper(col)
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	// Print rows
	for _, record := range records {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = f.formatValue(record[col], opts.MaxWidth)
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}

	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return nil
}

// formatValue formats a value for display.
func (f *TableFormatter) formatValue(val any, maxWidth int) string {
	if val == nil {
		return "-"
	}

	var str string
	switch v := val.(type) {
	case string:
		str = v
	case bool:
		if v {
			str = "yes"
		} else {
			str = "no"
		}
	case []byte:
		str = "[binary]"
	case float64:
		// Check if it's a whole number
		if v == float64(int64(v)) {
			str = fmt.Sprintf("%d", int64(v))
		} else {
			str = fmt.Sprintf("%.2f", v)
		}
	case fmt.Stringer:
		str = v.String()
	default:
		b, _ := json.Marshal(v)
		str = string(b)
	}

	// Truncate if needed
	if maxWidth > 3 && len(str) > maxWidth {
		str = str[:maxWidth-3] + "..."
	}

	return str
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	Register(NewTableFormatter())
}
