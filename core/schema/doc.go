/*
Package schema defines the consolidated schema document and the algorithm
that folds loaded schema files into it.

A schema directory holds files whose top-level keys are exports. Every
export is classified into exactly one kind and merged into a Document:

	# users.schema.yaml
	User:
	  fields:
	    name:  string
	    email: { type: email, unique: true }
	    plan:  { type: ref, to: Plan }

	# links.relationships.yaml
	user_plan: { from: User, to: Plan, type: many_to_one }

	# lookup.indexes.yaml
	user_email: { on: User, fields: [email], unique: true }

	# 001_init.migration.yaml
	up:   CREATE TABLE audit (id TEXT)
	down: DROP TABLE audit

	# demo.seed.yaml
	users:
	  - { name: admin, email: admin@example.com }
	plans:
	  - { code: free }

# Classification

Exports are matched against a fixed rule table, first match wins:

  - relationship: kind: relationship, or both from and to strings
  - index:        kind: index, or an on string with a fields/columns list
  - migration:    an up key, in a migration file or next to a down key
  - seed:         a list (or map of lists) in a seed file
  - entity:       everything else

A migration file with a top-level up key, and a seed file whose top-level
keys all hold lists, are read as a single export: the file is the
definition.

Definitions that almost match a shape fall through to entity. An entity with
fields literally named from and to must use the explicit fields form.

# Naming

Entities are stored under their export key. The default export takes the
singular PascalCase of the file stem, so users.schema.yaml with a default
export yields User.

# Merging

Ordered collections (relationships, indexes, migrations, seeds) only grow by
append in file-then-export order. The entity map is last-write-wins.
Combine and Fold never mutate their inputs.
*/
package schema
