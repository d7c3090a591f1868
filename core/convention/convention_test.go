package convention

import "testing"

func TestFileStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"users.yaml", "users"},
		{"schema/users.schema.yaml", "users"},
		{"db/001_init.migration.yaml", "001_init"},
		{"db/001_init.migrations.toml", "001_init"},
		{"fixtures/users.seeds.cue", "users"},
		{"app.config.yaml", "app.config"},
		{"noext", "noext"},
		{"/abs/path/Orders.Schema.JSON", "Orders"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FileStem(tt.path); got != tt.want {
				t.Errorf("FileStem(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestArtifactSuffix(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"users.yaml", ""},
		{"users.schema.yaml", SuffixSchema},
		{"links.relationships.yaml", SuffixRelationship},
		{"lookup.indexes.yml", SuffixIndex},
		{"001.migration.json", SuffixMigration},
		{"users.seed.yaml", SuffixSeed},
		{"app.config.yaml", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ArtifactSuffix(tt.path); got != tt.want {
				t.Errorf("ArtifactSuffix(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestInCategory(t *testing.T) {
	tests := []struct {
		path     string
		category string
		want     bool
	}{
		{"users.yaml", CategorySchema, true},
		{"users.schema.yaml", CategorySchema, true},
		{"001_init.migration.yaml", CategorySchema, true},
		{"users.seed.yaml", CategorySchema, true},
		{"app.config.yaml", CategorySchema, false},
		{"001_init.migration.yaml", CategoryMigration, true},
		{"users.schema.yaml", CategoryMigration, false},
		{"migrations/001_init.yaml", CategoryMigration, true},
		{"seeds/users.yaml", CategorySeed, true},
		{"users.yaml", CategorySeed, false},
		{"users.yaml", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.category+"/"+tt.path, func(t *testing.T) {
			if got := InCategory(tt.path, tt.category); got != tt.want {
				t.Errorf("InCategory(%q, %q) = %v, want %v", tt.path, tt.category, got, tt.want)
			}
		})
	}
}

func TestPathMarkers(t *testing.T) {
	if !IsMigrationPath("db/001_init.migration.yaml") {
		t.Error("suffix should mark a migration")
	}
	if !IsMigrationPath("db/migrations/001_init.yaml") {
		t.Error("migrations/ directory should mark a migration")
	}
	if IsMigrationPath("db/users.schema.yaml") {
		t.Error("schema file should not be a migration")
	}
	if !IsSeedPath("seeds/users.yaml") {
		t.Error("seeds/ directory should mark a seed")
	}
	if IsSeedPath("users.yaml") {
		t.Error("plain file should not be a seed")
	}
}

func TestPascal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user", "User"},
		{"user_profile", "UserProfile"},
		{"user-profile", "UserProfile"},
		{"userProfile", "UserProfile"},
		{"UserProfile", "UserProfile"},
		{"HTTPServer", "HTTPServer"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Pascal(tt.in); got != tt.want {
				t.Errorf("Pascal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User", "user"},
		{"UserProfile", "user_profile"},
		{"HTTPServer", "http_server"},
		{"user_id", "user_id"},
		{"order2Item", "order2_item"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Snake(tt.in); got != tt.want {
				t.Errorf("Snake(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		entity string
		want   string
	}{
		{"User", "users"},
		{"UserProfile", "user_profiles"},
		{"Person", "people"},
		{"Category", "categories"},
		{"address", "addresses"},
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			if got := TableName(tt.entity); got != tt.want {
				t.Errorf("TableName(%q) = %q, want %q", tt.entity, got, tt.want)
			}
		})
	}
}
