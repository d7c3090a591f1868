package schema

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation errors:\n  - %s", strings.Join(e.Problems, "\n  - "))
}

// Validate checks the cross-references of a loaded document: field types,
// ref targets, relationship endpoints, index columns and migration versions.
// Loading never validates; callers opt in.
func Validate(doc Document) error {
	var errs []string

	for _, name := range doc.EntityNames() {
		e := doc.Schema[name]

		if !isValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("entity name %q is not a valid identifier", name))
		}

		for _, fname := range e.FieldNames() {
			if err := validateField(doc, name, fname, e.Fields[fname]); err != nil {
				errs = append(errs, err.Error())
			}
		}

		for _, pk := range e.PrimaryKey {
			if !hasColumn(e, pk) {
				errs = append(errs, fmt.Sprintf("entity %s: primary key %q is not a field", name, pk))
			}
		}
	}

	for i, def := range doc.Relationships {
		r := DecodeRelationship(def)
		for _, end := range []string{r.From, r.To} {
			if _, ok := doc.Schema[end]; !ok {
				errs = append(errs, fmt.Sprintf("relationship %d (%s -> %s): unknown entity %q", i, r.From, r.To, end))
			}
		}
	}

	for _, def := range doc.Indexes {
		idx := DecodeIndex(def)
		e, ok := doc.Schema[idx.On]
		if !ok {
			errs = append(errs, fmt.Sprintf("index %s: unknown entity %q", idx.Name, idx.On))
			continue
		}
		for _, col := range idx.Fields {
			if !hasColumn(e, col) {
				errs = append(errs, fmt.Sprintf("index %s: entity %s has no field %q", idx.Name, idx.On, col))
			}
		}
	}

	seen := make(map[string]bool, len(doc.Migrations))
	for _, m := range doc.Migrations {
		if seen[m.Version] {
			errs = append(errs, fmt.Sprintf("migration %s: duplicate version", m.Version))
		}
		seen[m.Version] = true
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}

func validateField(doc Document, entity, name string, f Field) error {
	if !isValidIdentifier(name) {
		return fmt.Errorf("entity %s: field name %q is not a valid identifier", entity, name)
	}
	if !f.Type.IsKnown() {
		return fmt.Errorf("entity %s: field %s has unknown type %q", entity, name, f.Type)
	}

	switch f.Type {
	case FieldTypeRef:
		if f.To == "" {
			return fmt.Errorf("entity %s: ref field %s has no target", entity, name)
		}
		if _, ok := doc.Schema[f.To]; !ok {
			return fmt.Errorf("entity %s: ref field %s targets unknown entity %q", entity, name, f.To)
		}
	case FieldTypeEnum:
		if len(f.Values) == 0 {
			return fmt.Errorf("entity %s: enum field %s has no values", entity, name)
		}
		if s, ok := f.Default.(string); ok && !slices.Contains(f.Values, s) {
			return fmt.Errorf("entity %s: enum field %s default %q is not a value", entity, name, s)
		}
	}
	return nil
}

// hasColumn reports whether col is a declared field or an implicit column.
func hasColumn(e Entity, col string) bool {
	if _, ok := e.Fields[col]; ok {
		return true
	}
	switch col {
	case "id":
		return true
	case "created_at", "updated_at":
		return e.Timestamps
	}
	return false
}

// isValidIdentifier checks if s is a valid identifier.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
