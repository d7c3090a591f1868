// Package atlas synchronizes the entity tables of a schema document with a
// live database using Atlas schema diffing.
package atlas

import (
	"fmt"
	"sort"

	sqlschema "ariga.io/atlas/sql/schema"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/core/convention"
	"github.com/artpar/schemakit/core/schema"
)

// BuildSchema converts the entities, relationships and indexes of doc into
// the desired Atlas schema named name. Table and column order is
// deterministic.
func BuildSchema(doc schema.Document, dialect dbconn.Dialect, name string) (*sqlschema.Schema, error) {
	b := &builder{
		doc:     doc,
		dialect: dialect,
		tables:  map[string]*sqlschema.Table{},
		byName:  map[string]*sqlschema.Table{},
	}

	for _, entity := range doc.EntityNames() {
		if err := b.table(entity, doc.Schema[entity]); err != nil {
			return nil, err
		}
	}
	for _, entity := range doc.EntityNames() {
		if err := b.refs(entity, doc.Schema[entity]); err != nil {
			return nil, err
		}
	}
	for _, def := range doc.Relationships {
		if err := b.relationship(schema.DecodeRelationship(def)); err != nil {
			return nil, err
		}
	}
	for _, def := range doc.Indexes {
		if err := b.index(schema.DecodeIndex(def)); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(b.byName))
	for n := range b.byName {
		names = append(names, n)
	}
	sort.Strings(names)

	s := sqlschema.New(name)
	for _, n := range names {
		s.AddTables(b.byName[n])
	}
	return s, nil
}

// TableNames returns the tables BuildSchema manages for doc.
func TableNames(doc schema.Document) []string {
	s, err := BuildSchema(doc, dbconn.DialectSQLite, "")
	if err != nil {
		return nil
	}
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

type builder struct {
	doc     schema.Document
	dialect dbconn.Dialect
	tables  map[string]*sqlschema.Table // by entity
	byName  map[string]*sqlschema.Table // by table name
}

// comments reports whether the dialect stores table and column comments.
func (b *builder) comments() bool {
	return b.dialect != dbconn.DialectSQLite
}

func tableName(entity string, e schema.Entity) string {
	if e.Table != "" {
		return e.Table
	}
	return convention.TableName(entity)
}

func (b *builder) table(entity string, e schema.Entity) error {
	name := tableName(entity, e)
	if _, dup := b.byName[name]; dup {
		return fmt.Errorf("entity %s: table %s is already used", entity, name)
	}

	t := sqlschema.NewTable(name)
	if e.Description != "" && b.comments() {
		t.SetComment(e.Description)
	}

	// Implicit key column first, then fields in name order.
	if _, declared := e.Fields["id"]; !declared && contains(e.PrimaryKey, "id") {
		t.AddColumns(sqlschema.NewColumn("id").SetType(keyType(b.dialect)))
	}
	for _, fname := range e.FieldNames() {
		f := e.Fields[fname]
		c := sqlschema.NewColumn(fname).SetType(b.columnType(f)).SetNull(!f.Required && !contains(e.PrimaryKey, fname))
		if f.Description != "" && b.comments() {
			c.SetComment(f.Description)
		}
		t.AddColumns(c)
	}
	if e.Timestamps {
		for _, col := range []string{"created_at", "updated_at"} {
			if _, ok := t.Column(col); !ok {
				t.AddColumns(sqlschema.NewColumn(col).SetType(timeType(b.dialect)).SetNull(true))
			}
		}
	}

	var pk []*sqlschema.Column
	for _, col := range e.PrimaryKey {
		c, ok := t.Column(col)
		if !ok {
			return fmt.Errorf("entity %s: primary key column %q is not a field", entity, col)
		}
		pk = append(pk, c)
	}
	if len(pk) > 0 {
		t.SetPrimaryKey(sqlschema.NewPrimaryKey(pk...))
	}

	for _, fname := range e.FieldNames() {
		f := e.Fields[fname]
		c, _ := t.Column(fname)
		switch {
		case f.Unique && !(len(pk) == 1 && pk[0] == c):
			t.AddIndexes(sqlschema.NewUniqueIndex(fmt.Sprintf("uniq_%s_%s", name, fname)).AddColumns(c))
		case f.Index:
			t.AddIndexes(sqlschema.NewIndex(fmt.Sprintf("idx_%s_%s", name, fname)).AddColumns(c))
		}
	}

	b.tables[entity] = t
	b.byName[name] = t
	return nil
}

// refs adds a foreign key for every ref field.
func (b *builder) refs(entity string, e schema.Entity) error {
	t := b.tables[entity]
	for _, fname := range e.FieldNames() {
		f := e.Fields[fname]
		if f.Type != schema.FieldTypeRef {
			continue
		}
		c, _ := t.Column(fname)
		if err := b.foreignKey(t, c, f.To, ""); err != nil {
			return fmt.Errorf("entity %s: field %s: %w", entity, fname, err)
		}
	}
	return nil
}

func (b *builder) relationship(r schema.Relationship) error {
	from, ok := b.tables[r.From]
	if !ok {
		return fmt.Errorf("relationship %s -> %s: unknown entity %q", r.From, r.To, r.From)
	}
	to, ok := b.tables[r.To]
	if !ok {
		return fmt.Errorf("relationship %s -> %s: unknown entity %q", r.From, r.To, r.To)
	}

	switch r.Type {
	case schema.ManyToOne, schema.OneToOne:
		c := b.keyColumn(from, r.ForeignKey)
		if r.Type == schema.OneToOne {
			from.AddIndexes(sqlschema.NewUniqueIndex(fmt.Sprintf("uniq_%s_%s", from.Name, c.Name)).AddColumns(c))
		}
		return b.foreignKey(from, c, r.To, r.OnDelete)
	case schema.OneToMany:
		c := b.keyColumn(to, r.ForeignKey)
		return b.foreignKey(to, c, r.From, r.OnDelete)
	case schema.ManyToMany:
		return b.through(r, from, to)
	}
	return nil
}

func (b *builder) through(r schema.Relationship, from, to *sqlschema.Table) error {
	if _, exists := b.byName[r.Through]; exists {
		return nil
	}

	t := sqlschema.NewTable(r.Through)
	left := convention.Snake(r.From) + "_id"
	right := convention.Snake(r.To) + "_id"
	if left == right {
		right = "related_" + right
	}
	lc := sqlschema.NewColumn(left).SetType(keyType(b.dialect))
	rc := sqlschema.NewColumn(right).SetType(keyType(b.dialect))
	t.AddColumns(lc, rc)
	t.SetPrimaryKey(sqlschema.NewPrimaryKey(lc, rc))

	b.byName[r.Through] = t
	if err := b.foreignKey(t, lc, r.From, "cascade"); err != nil {
		return err
	}
	return b.foreignKey(t, rc, r.To, "cascade")
}

// keyColumn returns the named column, adding a nullable key column when the
// entity does not declare it.
func (b *builder) keyColumn(t *sqlschema.Table, name string) *sqlschema.Column {
	if c, ok := t.Column(name); ok {
		return c
	}
	c := sqlschema.NewColumn(name).SetType(keyType(b.dialect)).SetNull(true)
	t.AddColumns(c)
	return c
}

func (b *builder) foreignKey(t *sqlschema.Table, c *sqlschema.Column, target, onDelete string) error {
	ref, ok := b.tables[target]
	if !ok {
		return fmt.Errorf("unknown entity %q", target)
	}
	if ref.PrimaryKey == nil || len(ref.PrimaryKey.Parts) != 1 {
		return fmt.Errorf("entity %q has no single-column primary key", target)
	}
	symbol := fmt.Sprintf("fk_%s_%s", t.Name, c.Name)
	if _, exists := t.ForeignKey(symbol); exists {
		return nil
	}

	fk := sqlschema.NewForeignKey(symbol).
		AddColumns(c).
		SetRefTable(ref).
		AddRefColumns(ref.PrimaryKey.Parts[0].C).
		SetOnDelete(referenceOption(onDelete))
	t.AddForeignKeys(fk)
	return nil
}

func referenceOption(s string) sqlschema.ReferenceOption {
	switch convention.Snake(s) {
	case "cascade":
		return sqlschema.Cascade
	case "set_null":
		return sqlschema.SetNull
	case "restrict":
		return sqlschema.Restrict
	case "set_default":
		return sqlschema.SetDefault
	default:
		return sqlschema.NoAction
	}
}

func (b *builder) index(idx schema.Index) error {
	e, ok := b.doc.Schema[idx.On]
	if !ok {
		return fmt.Errorf("index %s: unknown entity %q", idx.Name, idx.On)
	}
	t := b.tables[idx.On]

	var cols []*sqlschema.Column
	for _, name := range idx.Fields {
		c, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("index %s: table %s has no column %q", idx.Name, tableName(idx.On, e), name)
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return fmt.Errorf("index %s: no columns", idx.Name)
	}
	if _, exists := t.Index(idx.Name); exists {
		return nil
	}

	i := sqlschema.NewIndex(idx.Name)
	if idx.Unique {
		i = sqlschema.NewUniqueIndex(idx.Name)
	}
	t.AddIndexes(i.AddColumns(cols...))
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
