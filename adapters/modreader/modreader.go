// Package modreader loads schema files into ordered exports.
//
// Every top-level key of a file is one export, in declaration order. A file
// whose top-level value is not a mapping becomes a single "default" export.
// Decoders are selected by file extension.
package modreader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/artpar/schemakit/core/schema"
	"github.com/artpar/schemakit/ports"
)

// ErrUnsupportedFormat is returned for a file extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported module format")

// ParseError reports a file that could not be decoded.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s module %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decoder turns file contents into ordered exports.
type Decoder interface {
	// Format returns the format name (e.g., "yaml", "toml").
	Format() string

	// Extensions returns the file extensions handled, with leading dot.
	Extensions() []string

	// Decode parses data read from path.
	Decode(path string, data []byte) ([]schema.Export, error)
}

// Registry dispatches reads to decoders by file extension.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// New creates a registry with the YAML, TOML and CUE decoders.
func New() *Registry {
	r := NewRegistry()
	for _, d := range []Decoder{NewYAMLDecoder(), NewTOMLDecoder(), NewCUEDecoder()} {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a decoder for each of its extensions.
func (r *Registry) Register(d Decoder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range d.Extensions() {
		ext = strings.ToLower(ext)
		if existing, exists := r.decoders[ext]; exists {
			return fmt.Errorf("extension %q already handled by %s decoder", ext, existing.Format())
		}
	}
	for _, ext := range d.Extensions() {
		r.decoders[strings.ToLower(ext)] = d
	}
	return nil
}

// Lookup returns the decoder for a file path.
func (r *Registry) Lookup(path string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decoders[strings.ToLower(filepath.Ext(path))]
	return d, ok
}

// Extensions returns every registered extension in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Read loads the file at path.
func (r *Registry) Read(path string) (schema.RawModule, error) {
	d, ok := r.Lookup(path)
	if !ok {
		return schema.RawModule{}, fmt.Errorf("read %s: %w", path, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.RawModule{}, fmt.Errorf("read file %s: %w", path, err)
	}

	exports, err := d.Decode(path, data)
	if err != nil {
		return schema.RawModule{}, &ParseError{Path: path, Format: d.Format(), Err: err}
	}

	return schema.RawModule{Path: path, Exports: exports}, nil
}

// Ensure interface compliance.
var _ ports.ModuleReader = (*Registry)(nil)

// single wraps a non-mapping top-level value as the default export.
func single(v any) []schema.Export {
	return []schema.Export{{Key: schema.DefaultExport, Value: v}}
}

// normalize converts decoded values into the shapes the classifier expects:
// string-keyed maps and []any lists, recursively.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
