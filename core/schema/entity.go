package schema

import "sort"

// Entity is a normalized schema entity definition.
type Entity struct {
	// Table overrides the derived table name.
	Table string `json:"table,omitempty" yaml:"table,omitempty" msgpack:"table,omitempty"`

	// Description for documentation.
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`

	// PrimaryKey lists the key fields. Defaults to ["id"].
	PrimaryKey []string `json:"primary_key" yaml:"primary_key" msgpack:"primary_key"`

	// Timestamps adds created_at and updated_at. Defaults to true.
	Timestamps bool `json:"timestamps" yaml:"timestamps" msgpack:"timestamps"`

	// Fields by name.
	Fields map[string]Field `json:"fields" yaml:"fields" msgpack:"fields"`

	// Options keeps entity-level keys that have no dedicated slot.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty" msgpack:"options,omitempty"`

	// Raw is the definition as loaded.
	Raw Definition `json:"-" yaml:"-" msgpack:"-"`
}

// Field is a normalized entity field.
type Field struct {
	Type        FieldType `json:"type" yaml:"type" msgpack:"type"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty" msgpack:"required,omitempty"`
	Unique      bool      `json:"unique,omitempty" yaml:"unique,omitempty" msgpack:"unique,omitempty"`
	Index       bool      `json:"index,omitempty" yaml:"index,omitempty" msgpack:"index,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty" msgpack:"default,omitempty"`
	Values      []string  `json:"values,omitempty" yaml:"values,omitempty" msgpack:"values,omitempty"`
	To          string    `json:"to,omitempty" yaml:"to,omitempty" msgpack:"to,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
}

// FieldType is the declared type of a field.
type FieldType string

const (
	// Primitive types
	FieldTypeString    FieldType = "string"
	FieldTypeInt       FieldType = "int"
	FieldTypeFloat     FieldType = "float"
	FieldTypeBool      FieldType = "bool"
	FieldTypeTimestamp FieldType = "timestamp"
	FieldTypeDuration  FieldType = "duration"
	FieldTypeJSON      FieldType = "json"
	FieldTypeBytes     FieldType = "bytes"

	// Semantic types (string with validation)
	FieldTypeEmail FieldType = "email"
	FieldTypeURL   FieldType = "url"
	FieldTypeUUID  FieldType = "uuid"

	// Special types
	FieldTypeEnum    FieldType = "enum"    // Values
	FieldTypeRef     FieldType = "ref"     // To (foreign key)
	FieldTypeSecret  FieldType = "secret"  // Hashed, never exposed
	FieldTypeStrings FieldType = "strings" // Array of strings
	FieldTypeInts    FieldType = "ints"    // Array of ints
)

// typeAliases maps common spellings onto canonical field types.
var typeAliases = map[string]FieldType{
	"text":     FieldTypeString,
	"str":      FieldTypeString,
	"varchar":  FieldTypeString,
	"integer":  FieldTypeInt,
	"int64":    FieldTypeInt,
	"bigint":   FieldTypeInt,
	"number":   FieldTypeFloat,
	"double":   FieldTypeFloat,
	"decimal":  FieldTypeFloat,
	"boolean":  FieldTypeBool,
	"datetime": FieldTypeTimestamp,
	"date":     FieldTypeTimestamp,
	"time":     FieldTypeTimestamp,
	"object":   FieldTypeJSON,
	"map":      FieldTypeJSON,
	"blob":     FieldTypeBytes,
	"binary":   FieldTypeBytes,
	"password": FieldTypeSecret,
	"[]string": FieldTypeStrings,
	"[]int":    FieldTypeInts,
}

// IsKnown reports whether t is one of the canonical field types.
func (t FieldType) IsKnown() bool {
	switch t {
	case FieldTypeString, FieldTypeInt, FieldTypeFloat, FieldTypeBool,
		FieldTypeTimestamp, FieldTypeDuration, FieldTypeJSON, FieldTypeBytes,
		FieldTypeEmail, FieldTypeURL, FieldTypeUUID,
		FieldTypeEnum, FieldTypeRef, FieldTypeSecret,
		FieldTypeStrings, FieldTypeInts:
		return true
	default:
		return false
	}
}

// FieldNames returns the entity's field names in sorted order.
func (e Entity) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
