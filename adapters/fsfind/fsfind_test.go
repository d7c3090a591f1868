package fsfind_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/schemakit/adapters/fsfind"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}
	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestFinder_Find(t *testing.T) {
	root := writeTree(t,
		"users.schema.yaml",
		"plans.yml",
		"links.relationship.json",
		"lookup.index.toml",
		"teams.cue",
		"001_init.migration.yaml",
		"users.seed.yaml",
		"migrations/002_more.yaml",
		"seeds/plans.yaml",
		"app.config.yaml",
		"README.md",
		".hidden.yaml",
		"_draft.yaml",
		"_scratch/users.yaml",
		".git/config.yaml",
		"nested/deep/orders.yaml",
	)

	tests := []struct {
		category string
		want     []string
	}{
		{
			category: "schema",
			want: []string{
				"001_init.migration.yaml",
				"links.relationship.json",
				"lookup.index.toml",
				"migrations/002_more.yaml",
				"nested/deep/orders.yaml",
				"plans.yml",
				"seeds/plans.yaml",
				"teams.cue",
				"users.schema.yaml",
				"users.seed.yaml",
			},
		},
		{
			category: "migration",
			want:     []string{"001_init.migration.yaml", "migrations/002_more.yaml"},
		},
		{
			category: "seed",
			want:     []string{"seeds/plans.yaml", "users.seed.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			files, err := fsfind.New().Find(root, tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(t, root, files))
		})
	}
}

func TestFinder_Extensions(t *testing.T) {
	root := writeTree(t, "a.yaml", "b.toml", "c.json")

	files, err := fsfind.New("toml", ".JSON").Find(root, "schema")
	require.NoError(t, err)

	assert.Equal(t, []string{"b.toml", "c.json"}, rel(t, root, files))
}

func TestFinder_Deterministic(t *testing.T) {
	root := writeTree(t, "c.yaml", "a.yaml", "b/z.yaml", "b/a.yaml")

	first, err := fsfind.New().Find(root, "schema")
	require.NoError(t, err)
	second, err := fsfind.New().Find(root, "schema")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a.yaml", "b/a.yaml", "b/z.yaml", "c.yaml"}, rel(t, root, first))
}

func TestFinder_Errors(t *testing.T) {
	root := writeTree(t, "a.yaml")

	_, err := fsfind.New().Find(filepath.Join(root, "missing"), "schema")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fsfind.New().Find(filepath.Join(root, "a.yaml"), "schema")
	assert.Error(t, err)

	_, err = fsfind.New().Find(root, "fixtures")
	assert.ErrorIs(t, err, fsfind.ErrUnknownCategory)
}

func TestFinder_EmptyDir(t *testing.T) {
	files, err := fsfind.New().Find(t.TempDir(), "schema")
	require.NoError(t, err)
	assert.Empty(t, files)
}
