// Package snapshot records every distinct schema document that was
// synchronized to a database.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/core/schema"
	"github.com/artpar/schemakit/ports"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one recorded document.
type Snapshot struct {
	ID          string          `json:"id" yaml:"id"`
	Fingerprint string          `json:"fingerprint" yaml:"fingerprint"`
	Entities    int             `json:"entities" yaml:"entities"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	Document    schema.Document `json:"document,omitempty" yaml:"document,omitempty"`
}

// Store persists snapshots in the schema_snapshots table.
type Store struct {
	db     *dbconn.DB
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a store. The bookkeeping tables must exist (see
// dbconn.DB.Migrate).
func New(db *dbconn.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "snapshot").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Synchronize records doc unless it matches the latest snapshot.
func (s *Store) Synchronize(ctx context.Context, doc schema.Document) error {
	_, _, err := s.Record(ctx, doc)
	return err
}

// Record stores doc and reports whether a new snapshot was written. When the
// fingerprint equals the latest snapshot's, the latest is returned instead.
func (s *Store) Record(ctx context.Context, doc schema.Document) (Snapshot, bool, error) {
	fp, err := schema.Fingerprint(doc)
	if err != nil {
		return Snapshot{}, false, err
	}

	latest, err := s.latest(ctx, false)
	switch {
	case err == nil && latest.Fingerprint == fp:
		s.logger.Debug().Str("fingerprint", fp).Msg("snapshot unchanged")
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Snapshot{}, false, err
	}

	payload, err := msgpack.Marshal(doc)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("encode snapshot: %w", err)
	}

	snap := Snapshot{
		ID:          s.newID(),
		Fingerprint: fp,
		Entities:    len(doc.Schema),
		CreatedAt:   s.now(),
		Document:    doc,
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO schema_snapshots (id, fingerprint, document, entities, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), snap.ID, snap.Fingerprint, payload, snap.Entities, snap.CreatedAt)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("insert snapshot: %w", err)
	}

	s.logger.Info().Str("id", snap.ID).Str("fingerprint", fp).Msg("snapshot recorded")
	return snap, true, nil
}

// Latest returns the most recent snapshot with its document.
func (s *Store) Latest(ctx context.Context) (Snapshot, error) {
	return s.latest(ctx, true)
}

func (s *Store) latest(ctx context.Context, withDocument bool) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, document, entities, created_at
		FROM schema_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`)
	return scanSnapshot(row, withDocument)
}

// Get returns a snapshot by ID with its document.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, fingerprint, document, entities, created_at
		FROM schema_snapshots
		WHERE id = ?
	`), id)
	return scanSnapshot(row, true)
}

// List returns snapshot metadata, newest first. Documents are not decoded.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, fingerprint, entities, created_at
		FROM schema_snapshots
		ORDER BY created_at DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Fingerprint, &snap.Entities, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func scanSnapshot(row *sql.Row, withDocument bool) (Snapshot, error) {
	var (
		snap    Snapshot
		payload []byte
	)
	err := row.Scan(&snap.ID, &snap.Fingerprint, &payload, &snap.Entities, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	if withDocument {
		if err := msgpack.Unmarshal(payload, &snap.Document); err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
		}
	}
	return snap, nil
}

// Ensure interface compliance.
var _ ports.Synchronizer = (*Store)(nil)
