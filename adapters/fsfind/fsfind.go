// Package fsfind discovers schema files on the local filesystem.
package fsfind

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/artpar/schemakit/core/convention"
	"github.com/artpar/schemakit/ports"
)

// ErrUnknownCategory is returned for a category no file can belong to.
var ErrUnknownCategory = errors.New("unknown category")

// DefaultExtensions are the module formats the bundled readers understand.
var DefaultExtensions = []string{".yaml", ".yml", ".json", ".toml", ".cue"}

// Finder walks a directory tree for schema files.
type Finder struct {
	extensions map[string]bool
}

// New creates a finder accepting the given extensions. With none, it
// accepts DefaultExtensions.
func New(extensions ...string) *Finder {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	f := &Finder{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = true
	}
	return f
}

// Find returns matching files under dir in lexical walk order. Entries whose
// name starts with "." or "_" are skipped, directories included.
func (f *Finder) Find(dir, category string) ([]string, error) {
	if !convention.KnownCategory(category) {
		return nil, fmt.Errorf("find %s: %w %q", dir, ErrUnknownCategory, category)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("find %s: not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !f.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if !convention.InCategory(path, category) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", dir, err)
	}

	return files, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Ensure interface compliance.
var _ ports.FileFinder = (*Finder)(nil)
