// Package ports defines interfaces (contracts) between the loader core and
// its collaborators. Implementations live in adapters/.
package ports

import (
	"context"

	"github.com/artpar/schemakit/core/schema"
)

// -----------------------------------------------------------------------------
// Discovery Ports
// -----------------------------------------------------------------------------

// FileFinder discovers schema files.
type FileFinder interface {
	// Find returns the files under dir belonging to category. The order is
	// deterministic and decides the merge order of the loaded document.
	Find(dir, category string) ([]string, error)
}

// FileFinderFunc adapts a function to FileFinder.
type FileFinderFunc func(dir, category string) ([]string, error)

// Find calls f.
func (f FileFinderFunc) Find(dir, category string) ([]string, error) {
	return f(dir, category)
}

// -----------------------------------------------------------------------------
// Module Ports
// -----------------------------------------------------------------------------

// ModuleReader loads a schema file into its ordered exports.
type ModuleReader interface {
	Read(path string) (schema.RawModule, error)
}

// ModuleReaderFunc adapts a function to ModuleReader.
type ModuleReaderFunc func(path string) (schema.RawModule, error)

// Read calls f.
func (f ModuleReaderFunc) Read(path string) (schema.RawModule, error) {
	return f(path)
}

// -----------------------------------------------------------------------------
// Synchronization Ports
// -----------------------------------------------------------------------------

// Synchronizer applies a loaded document to external storage.
type Synchronizer interface {
	// Synchronize is called once per successful load with the complete
	// document.
	Synchronize(ctx context.Context, doc schema.Document) error
}

// SynchronizerFunc adapts a function to Synchronizer.
type SynchronizerFunc func(ctx context.Context, doc schema.Document) error

// Synchronize calls f.
func (f SynchronizerFunc) Synchronize(ctx context.Context, doc schema.Document) error {
	return f(ctx, doc)
}

// Synchronizers runs several synchronizers in order and stops at the first
// failure.
type Synchronizers []Synchronizer

// Synchronize calls each synchronizer in turn.
func (s Synchronizers) Synchronize(ctx context.Context, doc schema.Document) error {
	for _, sync := range s {
		if sync == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sync.Synchronize(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
