package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/core/schema"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := dbconn.Open("sqlite", filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	s := New(db, zerolog.Nop())
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	n := 0
	s.newID = func() string {
		n++
		return "snap-" + strconv.Itoa(n)
	}
	return s
}

func docWithEntity(name string) schema.Document {
	doc := schema.Empty()
	doc.Schema[name] = schema.StandardizeDefinition(map[string]any{"title": "string"})
	doc.Migrations = append(doc.Migrations, schema.Migration{
		Version:   "001",
		Migration: map[string]any{"up": []any{"CREATE TABLE x (id TEXT)"}},
	})
	return doc
}

func TestStore_Record(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.Record(ctx, docWithEntity("Post"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "snap-1", first.ID)
	assert.Equal(t, 1, first.Entities)
	assert.Len(t, first.Fingerprint, 64)

	again, created, err := s.Record(ctx, docWithEntity("Post"))
	require.NoError(t, err)
	assert.False(t, created, "unchanged document must not be recorded twice")
	assert.Equal(t, first.ID, again.ID)

	second, created, err := s.Record(ctx, docWithEntity("Comment"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "snap-2", second.ID)

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "snap-2", list[0].ID)
	assert.Equal(t, "snap-1", list[1].ID)
	assert.Empty(t, list[0].Document.Schema)
}

func TestStore_LatestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Synchronize(ctx, docWithEntity("Post")))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Post"}, latest.Document.EntityNames())
	assert.Equal(t, schema.FieldTypeString, latest.Document.Schema["Post"].Fields["title"].Type)
	require.Len(t, latest.Document.Migrations, 1)
	assert.Equal(t, "001", latest.Document.Migrations[0].Version)

	got, err := s.Get(ctx, latest.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.Fingerprint, got.Fingerprint)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PostgresPlaceholders(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer raw.Close()

	db, err := dbconn.Wrap(raw, "postgres")
	require.NoError(t, err)
	s := New(db, zerolog.Nop())

	mock.ExpectQuery(`
		SELECT id, fingerprint, document, entities, created_at
		FROM schema_snapshots
		WHERE id = $1
	`).WithArgs("abc").WillReturnError(errors.New("connection reset"))

	_, err = s.Get(context.Background(), "abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertFailure(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db, err := dbconn.Wrap(raw, "sqlite")
	require.NoError(t, err)
	s := New(db, zerolog.Nop())

	mock.ExpectQuery("SELECT id, fingerprint, document").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fingerprint", "document", "entities", "created_at"}))
	mock.ExpectExec("INSERT INTO schema_snapshots").WillReturnError(errors.New("disk full"))

	err = s.Synchronize(context.Background(), docWithEntity("Post"))
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
