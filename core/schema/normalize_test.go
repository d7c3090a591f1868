package schema

import (
	"reflect"
	"testing"
)

func TestStandardizeDefinition_Terse(t *testing.T) {
	def := map[string]any{
		"name":   "string",
		"age":    "integer",
		"active": true,
		"score":  1.5,
		"role":   []any{"admin", "member"},
		"plan":   map[string]any{"to": "Plan", "required": true},
		"notes":  nil,
	}

	e := StandardizeDefinition(def)

	want := map[string]Field{
		"name":   {Type: FieldTypeString},
		"age":    {Type: FieldTypeInt},
		"active": {Type: FieldTypeBool, Default: true},
		"score":  {Type: FieldTypeFloat, Default: 1.5},
		"role":   {Type: FieldTypeEnum, Values: []string{"admin", "member"}},
		"plan":   {Type: FieldTypeRef, To: "Plan", Required: true},
		"notes":  {Type: FieldTypeString},
	}
	if !reflect.DeepEqual(e.Fields, want) {
		t.Errorf("Fields = %+v, want %+v", e.Fields, want)
	}
	if !reflect.DeepEqual(e.PrimaryKey, []string{"id"}) {
		t.Errorf("PrimaryKey = %v, want [id]", e.PrimaryKey)
	}
	if !e.Timestamps {
		t.Error("Timestamps = false, want true")
	}
	if !reflect.DeepEqual(e.Raw, def) {
		t.Error("Raw does not hold the original definition")
	}
}

func TestStandardizeDefinition_Explicit(t *testing.T) {
	def := map[string]any{
		"table":       "people",
		"description": "A person",
		"primary_key": "uuid",
		"timestamps":  "no",
		"soft_delete": true,
		"fields": map[string]any{
			"uuid":  map[string]any{"type": "uuid", "unique": true},
			"email": map[string]any{"type": "email", "index": "yes", "description": "login"},
			"tier":  map[string]any{"values": []any{"free", "pro"}, "default": "free"},
		},
	}

	e := StandardizeDefinition(def)

	if e.Table != "people" || e.Description != "A person" {
		t.Errorf("Table/Description = %q/%q", e.Table, e.Description)
	}
	if !reflect.DeepEqual(e.PrimaryKey, []string{"uuid"}) {
		t.Errorf("PrimaryKey = %v, want [uuid]", e.PrimaryKey)
	}
	if e.Timestamps {
		t.Error("Timestamps = true, want false")
	}
	if e.Options["soft_delete"] != true {
		t.Errorf("Options = %v, want soft_delete kept", e.Options)
	}

	tests := []struct {
		field string
		want  Field
	}{
		{"uuid", Field{Type: FieldTypeUUID, Unique: true}},
		{"email", Field{Type: FieldTypeEmail, Index: true, Description: "login"}},
		{"tier", Field{Type: FieldTypeEnum, Values: []string{"free", "pro"}, Default: "free"}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := e.Fields[tt.field]; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fields[%s] = %+v, want %+v", tt.field, got, tt.want)
			}
		})
	}
}

func TestStandardizeDefinition_FieldList(t *testing.T) {
	def := map[string]any{
		"fields": []any{
			"title",
			map[string]any{"name": "views", "type": "int"},
			map[string]any{"type": "string"},
			42,
		},
	}

	e := StandardizeDefinition(def)

	want := map[string]Field{
		"title": {Type: FieldTypeString},
		"views": {Type: FieldTypeInt},
	}
	if !reflect.DeepEqual(e.Fields, want) {
		t.Errorf("Fields = %+v, want %+v", e.Fields, want)
	}
}

func TestStandardizeDefinition_BadTypedSlots(t *testing.T) {
	def := map[string]any{
		"table":  42,
		"fields": map[string]any{},
	}

	e := StandardizeDefinition(def)

	if e.Table != "" {
		t.Errorf("Table = %q, want empty", e.Table)
	}
	if e.Options["table"] != 42 {
		t.Errorf("Options = %v, want table kept as option", e.Options)
	}
}

func TestStandardizeDefinition_NonMapping(t *testing.T) {
	for _, def := range []Definition{nil, "x", 3, []any{"a"}} {
		e := StandardizeDefinition(def)
		if len(e.Fields) != 0 {
			t.Errorf("StandardizeDefinition(%v) has fields %v", def, e.Fields)
		}
		if e.Fields == nil {
			t.Errorf("StandardizeDefinition(%v) has nil Fields", def)
		}
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want FieldType
	}{
		{"", FieldTypeString},
		{"  TEXT ", FieldTypeString},
		{"Boolean", FieldTypeBool},
		{"datetime", FieldTypeTimestamp},
		{"password", FieldTypeSecret},
		{"[]string", FieldTypeStrings},
		{"uuid", FieldTypeUUID},
		{"geometry", FieldType("geometry")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeType(tt.in); got != tt.want {
				t.Errorf("normalizeType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFieldType_IsKnown(t *testing.T) {
	if !FieldTypeRef.IsKnown() {
		t.Error("ref should be known")
	}
	if FieldType("geometry").IsKnown() {
		t.Error("geometry should not be known")
	}
}
