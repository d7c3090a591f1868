package schema

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		path string
		want Kind
	}{
		{
			name: "relationship by from/to",
			def:  map[string]any{"from": "User", "to": "Plan"},
			path: "links.yaml",
			want: KindRelationship,
		},
		{
			name: "relationship by kind marker",
			def:  map[string]any{"kind": "relationship"},
			path: "links.yaml",
			want: KindRelationship,
		},
		{
			name: "index by on/fields",
			def:  map[string]any{"on": "User", "fields": []any{"email"}},
			path: "lookup.yaml",
			want: KindIndex,
		},
		{
			name: "index by columns",
			def:  map[string]any{"on": "User", "columns": "email"},
			path: "lookup.yaml",
			want: KindIndex,
		},
		{
			name: "index by kind marker",
			def:  map[string]any{"kind": "INDEX"},
			path: "lookup.yaml",
			want: KindIndex,
		},
		{
			name: "relationship wins over index",
			def:  map[string]any{"from": "User", "to": "Plan", "on": "User", "fields": []any{"plan_id"}},
			path: "both.yaml",
			want: KindRelationship,
		},
		{
			name: "migration in migration file",
			def:  map[string]any{"up": "CREATE TABLE x (id TEXT)"},
			path: "db/001_init.migration.yaml",
			want: KindMigration,
		},
		{
			name: "migration in migrations dir",
			def:  map[string]any{"up": []any{"CREATE TABLE x (id TEXT)"}},
			path: "db/migrations/001_init.yaml",
			want: KindMigration,
		},
		{
			name: "migration by up/down anywhere",
			def:  map[string]any{"up": "a", "down": "b"},
			path: "users.yaml",
			want: KindMigration,
		},
		{
			name: "up alone outside migration file is an entity",
			def:  map[string]any{"up": "string"},
			path: "users.yaml",
			want: KindEntity,
		},
		{
			name: "seed list in seed file",
			def:  []any{map[string]any{"name": "admin"}},
			path: "users.seed.yaml",
			want: KindSeed,
		},
		{
			name: "seed map of lists in seeds dir",
			def:  map[string]any{"User": []any{map[string]any{"name": "admin"}}},
			path: "seeds/users.yaml",
			want: KindSeed,
		},
		{
			name: "list outside seed file is an entity",
			def:  []any{"a", "b"},
			path: "users.yaml",
			want: KindEntity,
		},
		{
			name: "seed file mapping with non-list values is an entity",
			def:  map[string]any{"name": "string"},
			path: "users.seed.yaml",
			want: KindEntity,
		},
		{
			name: "migration wins over seed",
			def:  map[string]any{"up": []any{"a"}, "down": []any{"b"}},
			path: "seeds/users.yaml",
			want: KindMigration,
		},
		{
			name: "plain entity",
			def:  map[string]any{"fields": map[string]any{"name": "string"}},
			path: "users.schema.yaml",
			want: KindEntity,
		},
		{
			name: "almost a relationship",
			def:  map[string]any{"from": "User"},
			path: "links.yaml",
			want: KindEntity,
		},
		{
			name: "scalar",
			def:  "hello",
			path: "x.yaml",
			want: KindEntity,
		},
		{
			name: "nil",
			def:  nil,
			path: "x.yaml",
			want: KindEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.def, tt.path); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_ExactlyOneKind(t *testing.T) {
	defs := []Definition{
		nil,
		"x",
		42,
		[]any{},
		map[string]any{},
		map[string]any{"from": "A", "to": "B", "on": "A", "fields": []any{"x"}, "up": "u", "down": "d"},
		map[any]any{"from": "A", "to": "B"},
	}

	for _, def := range defs {
		got := Classify(def, "seeds/x.migration.yaml")

		matches := 0
		for _, k := range Kinds() {
			if k == got {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("Classify(%v) = %v, not exactly one known kind", def, got)
		}
	}
}

func TestClassify_NonStringKeyedMap(t *testing.T) {
	def := map[any]any{"from": "User", "to": "Plan"}
	if got := Classify(def, "x.yaml"); got != KindRelationship {
		t.Errorf("Classify() = %v, want relationship", got)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindEntity, "entity"},
		{KindRelationship, "relationship"},
		{KindIndex, "index"},
		{KindMigration, "migration"},
		{KindSeed, "seed"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRulesOrder(t *testing.T) {
	want := []Kind{KindRelationship, KindIndex, KindMigration, KindSeed}
	if len(rules) != len(want) {
		t.Fatalf("rules has %d entries, want %d", len(rules), len(want))
	}
	for i, k := range want {
		if rules[i].kind != k {
			t.Errorf("rules[%d] = %v, want %v", i, rules[i].kind, k)
		}
	}
}
