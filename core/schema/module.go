package schema

import "github.com/artpar/schemakit/core/convention"

// DefaultExport is the export key of a file's primary definition.
const DefaultExport = "default"

// Export is one named top-level definition of a schema file.
type Export struct {
	Key   string
	Value Definition
}

// RawModule is a loaded schema file. Exports keep source declaration order,
// which decides the order of migrations and seeds.
type RawModule struct {
	Path    string
	Exports []Export
}

// Keys returns the export keys in declaration order.
func (m RawModule) Keys() []string {
	keys := make([]string, len(m.Exports))
	for i, e := range m.Exports {
		keys[i] = e.Key
	}
	return keys
}

// Lookup returns the value of the last export named key.
func (m RawModule) Lookup(key string) (Definition, bool) {
	for i := len(m.Exports) - 1; i >= 0; i-- {
		if m.Exports[i].Key == key {
			return m.Exports[i].Value, true
		}
	}
	return nil, false
}

// asWhole reports whether the module's exports together form one migration
// or one seed, returning the combined definition. A migration file with a
// top-level up key is one migration. A seed file whose named exports are
// all lists is one seed keyed by entity.
func (m RawModule) asWhole() (Definition, bool) {
	if len(m.Exports) == 0 {
		return nil, false
	}

	if convention.IsMigrationPath(m.Path) {
		if _, ok := m.Lookup("up"); ok {
			return m.merged(), true
		}
		return nil, false
	}

	if !convention.IsSeedPath(m.Path) {
		return nil, false
	}
	for _, e := range m.Exports {
		if e.Key == DefaultExport {
			return nil, false
		}
		if _, ok := asList(e.Value); !ok {
			return nil, false
		}
	}
	return m.merged(), true
}

// merged returns the exports as one mapping. Later duplicates win.
func (m RawModule) merged() map[string]any {
	out := make(map[string]any, len(m.Exports))
	for _, e := range m.Exports {
		out[e.Key] = e.Value
	}
	return out
}
