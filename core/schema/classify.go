package schema

import "github.com/artpar/schemakit/core/convention"

// rule pairs a kind with the predicate that selects it.
type rule struct {
	kind  Kind
	match func(def Definition, filePath string) bool
}

// rules is evaluated top to bottom; the first match wins. Anything left
// over is an entity.
var rules = []rule{
	{KindRelationship, func(def Definition, _ string) bool { return IsRelationship(def) }},
	{KindIndex, func(def Definition, _ string) bool { return IsIndex(def) }},
	{KindMigration, IsMigration},
	{KindSeed, IsSeed},
}

// Classify returns the kind of an export loaded from filePath.
func Classify(def Definition, filePath string) Kind {
	for _, r := range rules {
		if r.match(def, filePath) {
			return r.kind
		}
	}
	return KindEntity
}

// IsRelationship reports whether def has the relationship shape.
func IsRelationship(def Definition) bool {
	m, ok := asMap(def)
	if !ok {
		return false
	}
	if hasKind(m, "relationship") {
		return true
	}
	_, hasFrom := str(m, "from")
	_, hasTo := str(m, "to")
	return hasFrom && hasTo
}

// IsIndex reports whether def has the index shape.
func IsIndex(def Definition) bool {
	m, ok := asMap(def)
	if !ok {
		return false
	}
	if hasKind(m, "index") {
		return true
	}
	if _, ok := str(m, "on"); !ok {
		return false
	}
	return len(indexColumns(m)) > 0
}

// IsMigration reports whether def is a migration. A mapping with an up key
// qualifies inside a migration file, or anywhere when it also has a down key.
func IsMigration(def Definition, filePath string) bool {
	m, ok := asMap(def)
	if !ok {
		return false
	}
	if _, ok := m["up"]; !ok {
		return false
	}
	if convention.IsMigrationPath(filePath) {
		return true
	}
	_, hasDown := m["down"]
	return hasDown
}

// IsSeed reports whether def is seed data: a list of records, or a map of
// lists, inside a seed file.
func IsSeed(def Definition, filePath string) bool {
	if !convention.IsSeedPath(filePath) {
		return false
	}
	if _, ok := asList(def); ok {
		return true
	}
	m, ok := asMap(def)
	if !ok || len(m) == 0 {
		return false
	}
	for _, v := range m {
		if _, ok := asList(v); !ok {
			return false
		}
	}
	return true
}
