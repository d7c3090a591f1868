package schema

// Kind is the category an export is classified into.
type Kind int

const (
	// KindEntity is a plain named data-shape definition.
	KindEntity Kind = iota

	// KindRelationship describes an association between two entities.
	KindRelationship

	// KindIndex describes a lookup structure over entity fields.
	KindIndex

	// KindMigration is a versioned schema change.
	KindMigration

	// KindSeed is named fixture data.
	KindSeed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindRelationship:
		return "relationship"
	case KindIndex:
		return "index"
	case KindMigration:
		return "migration"
	case KindSeed:
		return "seed"
	default:
		return "unknown"
	}
}

// Kinds returns every kind in classification order, entity last.
func Kinds() []Kind {
	return []Kind{KindRelationship, KindIndex, KindMigration, KindSeed, KindEntity}
}
