package modreader

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/artpar/schemakit/core/schema"
)

// CUEDecoder evaluates CUE files. Only regular, concrete top-level fields
// become exports; definitions and hidden fields are skipped.
type CUEDecoder struct{}

// NewCUEDecoder creates a CUE decoder.
func NewCUEDecoder() *CUEDecoder {
	return &CUEDecoder{}
}

// Format returns the format name.
func (d *CUEDecoder) Format() string {
	return "cue"
}

// Extensions returns the handled extensions.
func (d *CUEDecoder) Extensions() []string {
	return []string{".cue"}
}

// Decode evaluates the file in a fresh context.
func (d *CUEDecoder) Decode(path string, data []byte) ([]schema.Export, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}

	if v.Kind() != cue.StructKind {
		var out any
		if err := v.Decode(&out); err != nil {
			return nil, err
		}
		return single(normalize(out)), nil
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, err
	}

	var exports []schema.Export
	for iter.Next() {
		var out any
		if err := iter.Value().Decode(&out); err != nil {
			return nil, err
		}
		exports = append(exports, schema.Export{
			Key:   iter.Selector().Unquoted(),
			Value: normalize(out),
		})
	}
	return exports, nil
}
