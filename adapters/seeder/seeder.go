// Package seeder inserts the seed data of a schema document, once per seed.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/core/convention"
	"github.com/artpar/schemakit/core/schema"
	"github.com/artpar/schemakit/ports"
)

// Seeder writes seed records into entity tables.
type Seeder struct {
	db     *dbconn.DB
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a seeder. The bookkeeping tables must exist (see
// dbconn.DB.Migrate).
func New(db *dbconn.DB, logger zerolog.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger.With().Str("component", "seeder").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Batch is the rows of one seed destined for one table.
type Batch struct {
	Entity string
	Table  string
	Rows   []map[string]any
}

// Synchronize inserts every seed of doc that has not been applied. Each
// seed is one transaction, recorded under its document ID.
func (s *Seeder) Synchronize(ctx context.Context, doc schema.Document) error {
	applied, err := s.applied(ctx)
	if err != nil {
		return err
	}

	for i, id := range doc.SeedIDs() {
		if applied[id] {
			continue
		}

		batches, err := Plan(doc, doc.Seeds[i])
		if err != nil {
			return fmt.Errorf("seed %s: %w", id, err)
		}

		n, err := s.insert(ctx, doc, id, batches)
		if err != nil {
			return err
		}

		applied[id] = true
		s.logger.Info().Str("seed", id).Int("rows", n).Msg("seed applied")
	}

	return nil
}

// Plan resolves the target tables of a seed. A list seeds the entity named
// after the seed ("users" -> User); a mapping seeds each entity it names.
func Plan(doc schema.Document, seed schema.Seed) ([]Batch, error) {
	if list, ok := seed.Seeds.([]any); ok {
		rows, err := records(list)
		if err != nil {
			return nil, err
		}
		b := target(doc, seed.Name)
		b.Rows = rows
		return []Batch{b}, nil
	}

	m, ok := seed.Seeds.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("seed data is %T, not a list or mapping", seed.Seeds)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batches := make([]Batch, 0, len(keys))
	for _, k := range keys {
		list, ok := m[k].([]any)
		if !ok {
			return nil, fmt.Errorf("seed data for %s is %T, not a list", k, m[k])
		}
		rows, err := records(list)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		b := target(doc, k)
		b.Rows = rows
		batches = append(batches, b)
	}
	return batches, nil
}

// target resolves a seed or mapping key to an entity and its table.
func target(doc schema.Document, name string) Batch {
	entity := name
	if _, ok := doc.Schema[entity]; !ok {
		entity = convention.Pascal(convention.Singularize(name))
	}

	table := convention.TableName(entity)
	if e, ok := doc.Schema[entity]; ok && e.Table != "" {
		table = e.Table
	}
	return Batch{Entity: entity, Table: table}
}

func records(list []any) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(list))
	for i, item := range list {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is %T, not a mapping", i, item)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Seeder) insert(ctx context.Context, doc schema.Document, name string, batches []Batch) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	total := 0
	for _, b := range batches {
		entity, known := doc.Schema[b.Entity]
		for _, row := range b.Rows {
			if known {
				row = s.complete(entity, row)
			}
			query, args, err := s.insertStatement(b.Table, row)
			if err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("seed %s: %w", name, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("seed %s into %s: %w", name, b.Table, err)
			}
			total++
		}
	}

	if _, err := tx.ExecContext(ctx,
		s.db.Rebind("INSERT INTO schema_seeds (name, row_count, applied_at) VALUES (?, ?, ?)"),
		name, total, s.now()); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("record seed %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed %s: %w", name, err)
	}
	return total, nil
}

// complete fills the implicit id and timestamp columns a record leaves out.
func (s *Seeder) complete(e schema.Entity, row map[string]any) map[string]any {
	out := make(map[string]any, len(row)+3)
	for k, v := range row {
		out[k] = v
	}

	if len(e.PrimaryKey) == 1 && e.PrimaryKey[0] == "id" {
		if _, ok := out["id"]; !ok {
			out["id"] = s.newID()
		}
	}
	if e.Timestamps {
		now := s.now()
		for _, col := range []string{"created_at", "updated_at"} {
			if _, ok := out[col]; !ok {
				out[col] = now
			}
		}
	}
	return out
}

func (s *Seeder) insertStatement(table string, row map[string]any) (string, []any, error) {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = s.db.Quote(col)
		marks[i] = "?"

		v, err := value(row[col])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", col, err)
		}
		args[i] = v
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.db.Quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	return s.db.Rebind(query), args, nil
}

// value converts nested structures to JSON text.
func value(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return v, nil
	}
}

func (s *Seeder) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM schema_seeds")
	if err != nil {
		return nil, fmt.Errorf("query seeds: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan seed: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// Ensure interface compliance.
var _ ports.Synchronizer = (*Seeder)(nil)
