// Package loader turns a directory of schema files into a single schema
// document.
//
// Files are discovered by a ports.FileFinder, read into ordered exports by a
// ports.ModuleReader, classified and folded file by file, and finally handed
// to an optional ports.Synchronizer. Loading is sequential: the merge order
// is the finder's file order followed by each file's export order.
package loader

import (
	"context"

	"github.com/artpar/schemakit/core/convention"
	"github.com/artpar/schemakit/core/schema"
	"github.com/artpar/schemakit/ports"
)

// Config selects what to load.
type Config struct {
	// Path is the schema directory. When empty, Load returns an empty
	// document without touching any collaborator.
	Path string

	// Category filters discovered files. Defaults to "schema".
	Category string

	// Database receives the complete document after a successful load.
	// Optional.
	Database ports.Synchronizer
}

// Loader aggregates schema files into a document.
type Loader struct {
	finder ports.FileFinder
	reader ports.ModuleReader
}

// New creates a loader.
func New(finder ports.FileFinder, reader ports.ModuleReader) *Loader {
	return &Loader{finder: finder, reader: reader}
}

// Load discovers, reads and merges every schema file under cfg.Path.
// Errors from the finder, reader and synchronizer are returned unchanged and
// no partial document is returned with them.
func (l *Loader) Load(ctx context.Context, cfg Config) (schema.Document, error) {
	if cfg.Path == "" {
		return schema.Empty(), nil
	}

	category := cfg.Category
	if category == "" {
		category = convention.CategorySchema
	}

	files, err := l.finder.Find(cfg.Path, category)
	if err != nil {
		return schema.Document{}, err
	}

	doc := schema.Empty()
	for _, file := range files {
		mod, err := l.reader.Read(file)
		if err != nil {
			return schema.Document{}, err
		}
		mod.Path = file
		doc = schema.Combine(doc, schema.ParseDefinitions(mod))
	}

	if cfg.Database != nil {
		if err := cfg.Database.Synchronize(ctx, doc); err != nil {
			return schema.Document{}, err
		}
	}

	return doc, nil
}
