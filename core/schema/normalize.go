package schema

import "strings"

// StandardizeDefinition brings an entity definition into the canonical
// Entity shape. It never fails: input it cannot interpret yields an entity
// without fields, and Raw always holds the original definition.
func StandardizeDefinition(def Definition) Entity {
	e := Entity{
		PrimaryKey: []string{"id"},
		Timestamps: true,
		Fields:     map[string]Field{},
		Raw:        def,
	}

	m, ok := asMap(def)
	if !ok {
		return e
	}

	fields, explicit := m["fields"]
	if !explicit {
		// Terse form: every key is a field.
		for name, v := range m {
			e.Fields[name] = standardizeField(v)
		}
		return e
	}

	standardizeFields(e.Fields, fields)

	for key, v := range m {
		switch key {
		case "fields":
		case "table":
			if s, ok := v.(string); ok {
				e.Table = s
				continue
			}
			e.setOption(key, v)
		case "description":
			if s, ok := v.(string); ok {
				e.Description = s
				continue
			}
			e.setOption(key, v)
		case "primary_key":
			if pk := strList(m, key); len(pk) > 0 {
				e.PrimaryKey = pk
				continue
			}
			e.setOption(key, v)
		case "timestamps":
			if b, ok := boolean(m, key); ok {
				e.Timestamps = b
				continue
			}
			e.setOption(key, v)
		default:
			e.setOption(key, v)
		}
	}

	return e
}

func (e *Entity) setOption(key string, v any) {
	if e.Options == nil {
		e.Options = map[string]any{}
	}
	e.Options[key] = v
}

// standardizeFields accepts either a mapping of name to field, or a list of
// names and {name: ...} mappings.
func standardizeFields(dst map[string]Field, fields Definition) {
	if fm, ok := asMap(fields); ok {
		for name, v := range fm {
			dst[name] = standardizeField(v)
		}
		return
	}

	list, ok := asList(fields)
	if !ok {
		return
	}
	for _, item := range list {
		switch v := item.(type) {
		case string:
			dst[v] = Field{Type: FieldTypeString}
		default:
			m, ok := asMap(v)
			if !ok {
				continue
			}
			if name, ok := str(m, "name"); ok {
				dst[name] = standardizeField(m)
			}
		}
	}
}

func standardizeField(v Definition) Field {
	switch val := v.(type) {
	case nil:
		return Field{Type: FieldTypeString}
	case string:
		return Field{Type: normalizeType(val)}
	case bool:
		return Field{Type: FieldTypeBool, Default: val}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Field{Type: FieldTypeInt, Default: val}
	case float32, float64:
		return Field{Type: FieldTypeFloat, Default: val}
	}

	if values, ok := asList(v); ok {
		f := Field{Type: FieldTypeEnum}
		for _, item := range values {
			if s, ok := item.(string); ok {
				f.Values = append(f.Values, s)
			}
		}
		return f
	}

	m, ok := asMap(v)
	if !ok {
		return Field{Type: FieldTypeJSON}
	}

	f := Field{
		Default: m["default"],
		Values:  strList(m, "values"),
	}
	f.To, _ = str(m, "to")
	f.Description, _ = str(m, "description")
	f.Required, _ = boolean(m, "required")
	f.Unique, _ = boolean(m, "unique")
	f.Index, _ = boolean(m, "index")

	switch t, ok := str(m, "type"); {
	case ok:
		f.Type = normalizeType(t)
	case f.To != "":
		f.Type = FieldTypeRef
	case len(f.Values) > 0:
		f.Type = FieldTypeEnum
	default:
		f.Type = FieldTypeString
	}

	return f
}

func normalizeType(s string) FieldType {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return FieldTypeString
	}
	if alias, ok := typeAliases[t]; ok {
		return alias
	}
	return FieldType(t)
}
