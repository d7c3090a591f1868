package migrator_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/adapters/migrator"
	"github.com/artpar/schemakit/core/schema"
)

func openDB(t *testing.T) *dbconn.DB {
	t.Helper()
	db, err := dbconn.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func docWith(migrations ...schema.Migration) schema.Document {
	doc := schema.Empty()
	doc.Migrations = append(doc.Migrations, migrations...)
	return doc
}

func tableExists(t *testing.T, db *dbconn.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestMigrator_Synchronize(t *testing.T) {
	db := openDB(t)
	m := migrator.New(db, zerolog.Nop())
	ctx := context.Background()

	doc := docWith(
		schema.Migration{Version: "001_init", Migration: map[string]any{
			"up":   "CREATE TABLE widgets (id TEXT PRIMARY KEY);\nCREATE INDEX idx_widgets_id ON widgets(id);",
			"down": "DROP TABLE widgets;",
		}},
		schema.Migration{Version: "002_gadgets", Migration: map[string]any{
			"up": []any{"CREATE TABLE gadgets (id TEXT)"},
		}},
	)

	require.NoError(t, m.Synchronize(ctx, doc))
	assert.True(t, tableExists(t, db, "widgets"))
	assert.True(t, tableExists(t, db, "gadgets"))

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"001_init": true, "002_gadgets": true}, applied)

	// A second run would fail on CREATE TABLE if it re-applied anything.
	require.NoError(t, m.Synchronize(ctx, doc))
}

func TestMigrator_Rollback(t *testing.T) {
	db := openDB(t)
	m := migrator.New(db, zerolog.Nop())
	ctx := context.Background()

	doc := docWith(schema.Migration{Version: "001_init", Migration: map[string]any{
		"up":   "CREATE TABLE widgets (id TEXT)",
		"down": "DROP TABLE widgets",
	}})
	require.NoError(t, m.Synchronize(ctx, doc))

	require.NoError(t, m.Rollback(ctx, doc, "001_init"))
	assert.False(t, tableExists(t, db, "widgets"))

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	err = m.Rollback(ctx, doc, "001_init")
	assert.ErrorIs(t, err, migrator.ErrNotApplied)
}

func TestMigrator_FailureRollsBack(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db, err := dbconn.Wrap(raw, "postgres")
	require.NoError(t, err)

	boom := errors.New("syntax error")
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("000_base"))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABL b").WillReturnError(boom)
	mock.ExpectRollback()

	doc := docWith(
		schema.Migration{Version: "000_base", Migration: map[string]any{"up": "CREATE TABLE base (id TEXT)"}},
		schema.Migration{Version: "001_bad", Migration: map[string]any{"up": "CREATE TABLE a (id TEXT);\nCREATE TABL b;"}},
	)

	err = migrator.New(db, zerolog.Nop()).Synchronize(context.Background(), doc)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name      string
		def       schema.Definition
		direction string
		want      []string
		wantErr   error
	}{
		{
			name:      "script",
			def:       map[string]any{"up": "CREATE TABLE a (id TEXT);\nCREATE TABLE b (id TEXT);"},
			direction: "up",
			want:      []string{"CREATE TABLE a (id TEXT)", "CREATE TABLE b (id TEXT)"},
		},
		{
			name:      "list",
			def:       map[string]any{"down": []any{"DROP TABLE a", "DROP TABLE b;"}},
			direction: "down",
			want:      []string{"DROP TABLE a", "DROP TABLE b"},
		},
		{
			name:      "missing direction",
			def:       map[string]any{"up": "CREATE TABLE a (id TEXT)"},
			direction: "down",
			wantErr:   migrator.ErrNoStatements,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := migrator.Statements(tt.def, tt.direction)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := migrator.Statements("CREATE TABLE x", "up")
	assert.Error(t, err)
	_, err = migrator.Statements(map[string]any{"up": []any{42}}, "up")
	assert.Error(t, err)
}

func TestMigrator_RepeatedVersionsAreTrackedSeparately(t *testing.T) {
	db := openDB(t)
	m := migrator.New(db, zerolog.Nop())
	ctx := context.Background()

	doc := docWith(
		schema.Migration{Version: "001_init", Migration: map[string]any{
			"up": "CREATE TABLE widgets (id TEXT)", "down": "DROP TABLE widgets",
		}},
		schema.Migration{Version: "001_init", Migration: map[string]any{
			"up": "CREATE TABLE gadgets (id TEXT)", "down": "DROP TABLE gadgets",
		}},
	)

	require.NoError(t, m.Synchronize(ctx, doc))
	assert.True(t, tableExists(t, db, "widgets"))
	assert.True(t, tableExists(t, db, "gadgets"))

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"001_init": true, "001_init#2": true}, applied)

	require.NoError(t, m.Rollback(ctx, doc, "001_init#2"))
	assert.True(t, tableExists(t, db, "widgets"))
	assert.False(t, tableExists(t, db, "gadgets"))
}
