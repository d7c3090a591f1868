package schema

import "github.com/artpar/schemakit/core/convention"

// ParseDefinitions classifies every export of a module in declaration order
// and returns the module's partial document. A migration or seed file whose
// top-level keys are the definition itself is classified as one export.
func ParseDefinitions(mod RawModule) Document {
	doc := Empty()
	stem := convention.FileStem(mod.Path)

	if whole, ok := mod.asWhole(); ok {
		mod = RawModule{Path: mod.Path, Exports: []Export{{Key: DefaultExport, Value: whole}}}
	}

	for _, export := range mod.Exports {
		def := export.Value

		switch Classify(def, mod.Path) {
		case KindRelationship:
			doc.Relationships = append(doc.Relationships, def)
		case KindIndex:
			doc.Indexes = append(doc.Indexes, def)
		case KindMigration:
			doc.Migrations = append(doc.Migrations, Migration{Version: stem, Migration: def})
		case KindSeed:
			doc.Seeds = append(doc.Seeds, Seed{Name: stem, Seeds: def})
		default:
			doc.Schema[DefinitionName(export.Key, mod.Path)] = StandardizeDefinition(def)
		}
	}

	return doc
}
