package schema

import (
	"strings"

	"github.com/artpar/schemakit/core/convention"
)

// Relationship cardinalities.
const (
	OneToOne   = "one_to_one"
	OneToMany  = "one_to_many"
	ManyToOne  = "many_to_one"
	ManyToMany = "many_to_many"
)

var cardinalityAliases = map[string]string{
	"one_to_one":      OneToOne,
	"has_one":         OneToOne,
	"one_to_many":     OneToMany,
	"has_many":        OneToMany,
	"many_to_one":     ManyToOne,
	"belongs_to":      ManyToOne,
	"many_to_many":    ManyToMany,
	"belongs_to_many": ManyToMany,
}

// Relationship is a typed view of a relationship definition.
type Relationship struct {
	Name       string `json:"name,omitempty"`
	Type       string `json:"type"`
	From       string `json:"from"`
	To         string `json:"to"`
	ForeignKey string `json:"foreign_key,omitempty"`
	Through    string `json:"through,omitempty"`
	OnDelete   string `json:"on_delete,omitempty"`
}

// DecodeRelationship reads a relationship definition. Missing cardinality
// defaults to many_to_one and the foreign key to <target>_id on the owning
// side.
func DecodeRelationship(def Definition) Relationship {
	m, _ := asMap(def)

	r := Relationship{}
	r.Name, _ = str(m, "name")
	r.From, _ = str(m, "from")
	r.To, _ = str(m, "to")
	r.ForeignKey, _ = str(m, "foreign_key")
	r.Through, _ = str(m, "through")
	r.OnDelete, _ = str(m, "on_delete")

	r.Type = ManyToOne
	if t, ok := str(m, "type"); ok {
		if c, ok := cardinalityAliases[convention.Snake(t)]; ok {
			r.Type = c
		}
	}

	if r.ForeignKey == "" {
		switch r.Type {
		case ManyToOne, OneToOne:
			r.ForeignKey = convention.Snake(r.To) + "_id"
		case OneToMany:
			r.ForeignKey = convention.Snake(r.From) + "_id"
		}
	}
	if r.Through == "" && r.Type == ManyToMany {
		r.Through = convention.Snake(r.From) + "_" + convention.TableName(r.To)
	}

	return r
}

// Index is a typed view of an index definition.
type Index struct {
	Name   string   `json:"name"`
	On     string   `json:"on"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique,omitempty"`
}

// DecodeIndex reads an index definition, deriving a name when none is set.
func DecodeIndex(def Definition) Index {
	m, _ := asMap(def)

	idx := Index{Fields: indexColumns(m)}
	idx.Name, _ = str(m, "name")
	idx.On, _ = str(m, "on")
	idx.Unique, _ = boolean(m, "unique")

	if idx.Name == "" && idx.On != "" {
		idx.Name = "idx_" + convention.TableName(idx.On) + "_" + strings.Join(idx.Fields, "_")
	}
	return idx
}

func indexColumns(m map[string]any) []string {
	if cols := strList(m, "fields"); len(cols) > 0 {
		return cols
	}
	return strList(m, "columns")
}
