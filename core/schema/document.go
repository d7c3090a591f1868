package schema

import (
	"sort"
	"strconv"
)

// Definition is a decoded, format-neutral value as produced by a module
// reader: map[string]any, []any, string, bool, numbers or nil.
type Definition = any

// Document is the consolidated result of loading a schema directory.
type Document struct {
	// Schema maps entity names to normalized entities. Last write wins.
	Schema map[string]Entity `json:"schema" yaml:"schema" msgpack:"schema"`

	// Relationships in file-then-export order.
	Relationships []Definition `json:"relationships" yaml:"relationships" msgpack:"relationships"`

	// Indexes in file-then-export order.
	Indexes []Definition `json:"indexes" yaml:"indexes" msgpack:"indexes"`

	// Migrations in file-then-export order.
	Migrations []Migration `json:"migrations" yaml:"migrations" msgpack:"migrations"`

	// Seeds in file-then-export order.
	Seeds []Seed `json:"seeds" yaml:"seeds" msgpack:"seeds"`
}

// Migration is a migration definition versioned by its file stem.
type Migration struct {
	Version   string     `json:"version" yaml:"version" msgpack:"version"`
	Migration Definition `json:"migration" yaml:"migration" msgpack:"migration"`
}

// Seed is seed data named by its file stem.
type Seed struct {
	Name  string     `json:"name" yaml:"name" msgpack:"name"`
	Seeds Definition `json:"seeds" yaml:"seeds" msgpack:"seeds"`
}

// Empty returns a fully formed document with empty containers.
func Empty() Document {
	return Document{
		Schema:        map[string]Entity{},
		Relationships: []Definition{},
		Indexes:       []Definition{},
		Migrations:    []Migration{},
		Seeds:         []Seed{},
	}
}

// Combine returns a new document holding doc followed by partial.
// Ordered collections concatenate; entities from partial overwrite entities
// of the same name in doc. Nil fields of partial are no-ops. Neither input
// is modified.
func Combine(doc, partial Document) Document {
	out := Document{
		Schema:        make(map[string]Entity, len(doc.Schema)+len(partial.Schema)),
		Relationships: concat(doc.Relationships, partial.Relationships),
		Indexes:       concat(doc.Indexes, partial.Indexes),
		Migrations:    concat(doc.Migrations, partial.Migrations),
		Seeds:         concat(doc.Seeds, partial.Seeds),
	}
	for name, entity := range doc.Schema {
		out.Schema[name] = entity
	}
	for name, entity := range partial.Schema {
		out.Schema[name] = entity
	}
	return out
}

// Fold combines partials into doc from left to right.
func Fold(doc Document, partials ...Document) Document {
	out := Combine(doc, Document{})
	for _, p := range partials {
		out = Combine(out, p)
	}
	return out
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// MigrationIDs returns one bookkeeping key per migration, in document order.
// A version is its own key the first time it appears; repeats from the same
// file are numbered ("001_init#2").
func (d Document) MigrationIDs() []string {
	versions := make([]string, len(d.Migrations))
	for i, m := range d.Migrations {
		versions[i] = m.Version
	}
	return ordinal(versions)
}

// SeedIDs returns one bookkeeping key per seed, numbered like MigrationIDs.
func (d Document) SeedIDs() []string {
	names := make([]string, len(d.Seeds))
	for i, s := range d.Seeds {
		names[i] = s.Name
	}
	return ordinal(names)
}

func ordinal(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		seen[name]++
		if n := seen[name]; n > 1 {
			out[i] = name + "#" + strconv.Itoa(n)
		} else {
			out[i] = name
		}
	}
	return out
}

// EntityNames returns the entity names in sorted order.
func (d Document) EntityNames() []string {
	names := make([]string, 0, len(d.Schema))
	for name := range d.Schema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary counts definitions per kind.
type Summary struct {
	Entities      int `json:"entities" yaml:"entities"`
	Relationships int `json:"relationships" yaml:"relationships"`
	Indexes       int `json:"indexes" yaml:"indexes"`
	Migrations    int `json:"migrations" yaml:"migrations"`
	Seeds         int `json:"seeds" yaml:"seeds"`
}

// Summary returns the number of definitions of each kind.
func (d Document) Summary() Summary {
	return Summary{
		Entities:      len(d.Schema),
		Relationships: len(d.Relationships),
		Indexes:       len(d.Indexes),
		Migrations:    len(d.Migrations),
		Seeds:         len(d.Seeds),
	}
}

// Count returns the count for a single kind.
func (s Summary) Count(k Kind) int {
	switch k {
	case KindRelationship:
		return s.Relationships
	case KindIndex:
		return s.Indexes
	case KindMigration:
		return s.Migrations
	case KindSeed:
		return s.Seeds
	case KindEntity:
		return s.Entities
	default:
		return 0
	}
}

// Total returns the number of definitions across all kinds.
func (s Summary) Total() int {
	return s.Entities + s.Relationships + s.Indexes + s.Migrations + s.Seeds
}
