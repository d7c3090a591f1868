// Package migrator applies the migrations of a schema document to a
// database, once per version.
package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/core/schema"
	"github.com/artpar/schemakit/ports"
)

// ErrNoStatements is returned for a migration without SQL in the requested
// direction.
var ErrNoStatements = errors.New("migration has no statements")

// ErrNotApplied is returned when rolling back a version that was never
// applied.
var ErrNotApplied = errors.New("migration not applied")

// Migrator runs migration definitions against a database.
type Migrator struct {
	db     *dbconn.DB
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a migrator. The bookkeeping tables must exist (see
// dbconn.DB.Migrate).
func New(db *dbconn.DB, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With().Str("component", "migrator").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Synchronize applies every migration of doc that has not been applied, in
// document order. Migrations are recorded under their document IDs, so two
// migrations read from one file are tracked separately.
func (m *Migrator) Synchronize(ctx context.Context, doc schema.Document) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}

	for i, id := range doc.MigrationIDs() {
		if applied[id] {
			continue
		}

		stmts, err := Statements(doc.Migrations[i].Migration, "up")
		if err != nil {
			return fmt.Errorf("migration %s: %w", id, err)
		}

		if err := m.apply(ctx, id, stmts, func(tx execer) error {
			_, err := tx.ExecContext(ctx,
				m.db.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
				id, m.now())
			return err
		}); err != nil {
			return err
		}

		applied[id] = true
		m.logger.Info().Str("version", id).Int("statements", len(stmts)).Msg("migration applied")
	}

	return nil
}

// Rollback runs the down statements of the migration recorded as id and
// forgets it.
func (m *Migrator) Rollback(ctx context.Context, doc schema.Document, id string) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !applied[id] {
		return fmt.Errorf("rollback %s: %w", id, ErrNotApplied)
	}

	i := slices.Index(doc.MigrationIDs(), id)
	if i < 0 {
		return fmt.Errorf("rollback %s: migration not in document", id)
	}

	stmts, err := Statements(doc.Migrations[i].Migration, "down")
	if err != nil {
		return fmt.Errorf("rollback %s: %w", id, err)
	}

	if err := m.apply(ctx, id, stmts, func(tx execer) error {
		_, err := tx.ExecContext(ctx, m.db.Rebind("DELETE FROM schema_migrations WHERE version = ?"), id)
		return err
	}); err != nil {
		return err
	}

	m.logger.Info().Str("version", id).Msg("migration rolled back")
	return nil
}

// Applied returns the set of applied versions.
func (m *Migrator) Applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (m *Migrator) apply(ctx context.Context, version string, stmts []string, record func(execer) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %s: %w", version, err)
		}
	}

	if err := record(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("record migration %s: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}

// Statements extracts the SQL statements of a migration definition in the
// given direction ("up" or "down"). A direction may hold a script string or
// a list of scripts.
func Statements(def schema.Definition, direction string) ([]string, error) {
	m, ok := def.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("migration is %T, not a mapping", def)
	}

	var stmts []string
	switch v := m[direction].(type) {
	case string:
		stmts = dbconn.SplitStatements(v)
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] is %T, not a string", direction, i, item)
			}
			stmts = append(stmts, dbconn.SplitStatements(s)...)
		}
	case nil:
	default:
		return nil, fmt.Errorf("%s is %T, not SQL", direction, v)
	}

	if len(stmts) == 0 {
		return nil, fmt.Errorf("%s: %w", direction, ErrNoStatements)
	}
	return stmts, nil
}

// Ensure interface compliance.
var _ ports.Synchronizer = (*Migrator)(nil)
