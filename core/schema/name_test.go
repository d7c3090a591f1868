package schema

import "testing"

func TestDefinitionName(t *testing.T) {
	tests := []struct {
		key  string
		path string
		want string
	}{
		{DefaultExport, "schema/users.schema.yaml", "User"},
		{DefaultExport, "user_profiles.yaml", "UserProfile"},
		{DefaultExport, "api-keys.toml", "ApiKey"},
		{DefaultExport, "categories.cue", "Category"},
		{"", "addresses.yaml", "Address"},
		{"Account", "users.yaml", "Account"},
		{"lowercase", "users.yaml", "lowercase"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"@"+tt.path, func(t *testing.T) {
			if got := DefinitionName(tt.key, tt.path); got != tt.want {
				t.Errorf("DefinitionName(%q, %q) = %q, want %q", tt.key, tt.path, got, tt.want)
			}
		})
	}
}
