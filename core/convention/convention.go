// Package convention holds the naming and file-layout conventions shared by
// the loader and its adapters: artifact suffixes, file stems, categories and
// identifier casing.
package convention

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Artifact suffixes recognized in file names of the form name.<suffix>.<ext>.
const (
	SuffixSchema       = "schema"
	SuffixRelationship = "relationship"
	SuffixIndex        = "index"
	SuffixMigration    = "migration"
	SuffixSeed         = "seed"
)

// Directory names that mark every file beneath them.
const (
	MigrationsDir = "migrations"
	SeedsDir      = "seeds"
)

// Category names accepted by file discovery.
const (
	CategorySchema    = "schema"
	CategoryMigration = "migration"
	CategorySeed      = "seed"
)

// suffixAliases maps every accepted spelling to its canonical suffix.
var suffixAliases = map[string]string{
	"schema":        SuffixSchema,
	"schemas":       SuffixSchema,
	"relationship":  SuffixRelationship,
	"relationships": SuffixRelationship,
	"relation":      SuffixRelationship,
	"relations":     SuffixRelationship,
	"index":         SuffixIndex,
	"indexes":       SuffixIndex,
	"indices":       SuffixIndex,
	"migration":     SuffixMigration,
	"migrations":    SuffixMigration,
	"seed":          SuffixSeed,
	"seeds":         SuffixSeed,
}

// categories lists the canonical suffixes each category accepts.
// The empty suffix stands for a plain file name without an artifact marker.
var categories = map[string][]string{
	CategorySchema:    {"", SuffixSchema, SuffixRelationship, SuffixIndex, SuffixMigration, SuffixSeed},
	CategoryMigration: {SuffixMigration},
	CategorySeed:      {SuffixSeed},
}

// ArtifactSuffix returns the canonical artifact suffix of a file path, or ""
// when the name carries none ("users.schema.yaml" -> "schema").
func ArtifactSuffix(path string) string {
	_, suffix := splitName(path)
	return suffix
}

// FileStem returns the base name of path without its extension and without
// a recognized artifact suffix ("db/001_init.migration.yaml" -> "001_init").
func FileStem(path string) string {
	stem, _ := splitName(path)
	return stem
}

func splitName(path string) (stem, suffix string) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	inner := filepath.Ext(base)
	if inner == "" {
		return base, ""
	}

	canonical, ok := suffixAliases[strings.ToLower(inner[1:])]
	if !ok {
		return base, ""
	}
	return strings.TrimSuffix(base, inner), canonical
}

// UnknownSuffix reports whether the file name carries an inner extension that
// is not a recognized artifact suffix ("app.config.yaml").
func UnknownSuffix(path string) bool {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	inner := filepath.Ext(base)
	if inner == "" {
		return false
	}
	_, ok := suffixAliases[strings.ToLower(inner[1:])]
	return !ok
}

// InDir reports whether any parent directory of path is named dir.
func InDir(path, dir string) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if strings.EqualFold(part, dir) {
			return true
		}
	}
	return false
}

// IsMigrationPath reports whether path follows the migration file convention.
func IsMigrationPath(path string) bool {
	return ArtifactSuffix(path) == SuffixMigration || InDir(path, MigrationsDir)
}

// IsSeedPath reports whether path follows the seed file convention.
func IsSeedPath(path string) bool {
	return ArtifactSuffix(path) == SuffixSeed || InDir(path, SeedsDir)
}

// KnownCategory reports whether category names a registered category.
func KnownCategory(category string) bool {
	_, ok := categories[category]
	return ok
}

// InCategory reports whether the file at path belongs to category.
func InCategory(path, category string) bool {
	if UnknownSuffix(path) {
		return false
	}
	suffix := ArtifactSuffix(path)
	for _, s := range categories[category] {
		if s == suffix {
			return true
		}
	}
	// Files inside a migrations/ or seeds/ tree belong to that category
	// even without a suffix.
	switch category {
	case CategoryMigration:
		return suffix == "" && InDir(path, MigrationsDir)
	case CategorySeed:
		return suffix == "" && InDir(path, SeedsDir)
	}
	return false
}

// Pascal converts an identifier in any common casing to PascalCase
// ("user_profile" -> "UserProfile").
func Pascal(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}

	// Casers carry state and must not be shared between goroutines.
	caser := cases.Title(language.English, cases.NoLower)

	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

// Snake converts an identifier to snake_case ("UserProfile" -> "user_profile",
// "HTTPServer" -> "http_server").
func Snake(s string) string {
	var b strings.Builder
	for i, word := range splitWords(s) {
		if i > 0 {
			b.WriteByte('_')
		}
		b.WriteString(strings.ToLower(word))
	}
	return b.String()
}

// TableName derives the default table name for an entity.
func TableName(entity string) string {
	return Snake(Pluralize(Pascal(entity)))
}

// splitWords splits on separators and on lower-to-upper case boundaries.
func splitWords(s string) []string {
	runes := []rune(s)

	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}
