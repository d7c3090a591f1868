package modreader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/artpar/schemakit/core/schema"
)

// YAMLDecoder decodes YAML files. JSON files are read with the same decoder.
type YAMLDecoder struct{}

// NewYAMLDecoder creates a YAML decoder.
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

// Format returns the format name.
func (d *YAMLDecoder) Format() string {
	return "yaml"
}

// Extensions returns the handled extensions.
func (d *YAMLDecoder) Extensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// Decode walks the document node so top-level keys keep their order.
func (d *YAMLDecoder) Decode(_ string, data []byte) ([]schema.Export, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	// Empty file.
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.AliasNode && doc.Alias != nil {
		doc = doc.Alias
	}

	if doc.Kind != yaml.MappingNode {
		var v any
		if err := doc.Decode(&v); err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		return single(normalize(v)), nil
	}

	exports := make([]schema.Export, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: export key must be a scalar", key.Line)
		}

		var v any
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("export %q: %w", key.Value, err)
		}
		exports = append(exports, schema.Export{Key: key.Value, Value: normalize(v)})
	}

	return exports, nil
}
