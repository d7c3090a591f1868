package modreader

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/artpar/schemakit/core/schema"
)

// TOMLDecoder decodes TOML files.
type TOMLDecoder struct{}

// NewTOMLDecoder creates a TOML decoder.
func NewTOMLDecoder() *TOMLDecoder {
	return &TOMLDecoder{}
}

// Format returns the format name.
func (d *TOMLDecoder) Format() string {
	return "toml"
}

// Extensions returns the handled extensions.
func (d *TOMLDecoder) Extensions() []string {
	return []string{".toml"}
}

// Decode unmarshals the document and orders exports by the first
// appearance of each top-level key, either as a key/value or as the head of
// a table header.
func (d *TOMLDecoder) Decode(_ string, data []byte) ([]schema.Export, error) {
	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, err
	}

	order, err := topLevelKeys(data)
	if err != nil {
		return nil, err
	}

	exports := make([]schema.Export, 0, len(values))
	for _, key := range order {
		v, ok := values[key]
		if !ok {
			continue
		}
		exports = append(exports, schema.Export{Key: key, Value: normalize(v)})
	}
	return exports, nil
}

// topLevelKeys lists top-level keys in declaration order.
func topLevelKeys(data []byte) ([]string, error) {
	var (
		order   []string
		seen    = map[string]bool{}
		inTable bool
	)
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}

	p := unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			inTable = true
			if k, ok := firstKey(e); ok {
				add(k)
			}
		case unstable.KeyValue:
			// Key/values after a table header belong to that table.
			if inTable {
				continue
			}
			if k, ok := firstKey(e); ok {
				add(k)
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return order, nil
}

func firstKey(n *unstable.Node) (string, bool) {
	it := n.Key()
	if !it.Next() {
		return "", false
	}
	return string(it.Node().Data), true
}
