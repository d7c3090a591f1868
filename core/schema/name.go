package schema

import "github.com/artpar/schemakit/core/convention"

// DefinitionName returns the name an entity export is stored under. The
// default export is named after its file ("user_profiles.schema.yaml" ->
// "UserProfile"); every other export keeps its key.
func DefinitionName(exportKey, filePath string) string {
	if exportKey == "" || exportKey == DefaultExport {
		return convention.Pascal(convention.Singularize(convention.FileStem(filePath)))
	}
	return exportKey
}
