package atlas

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	sqlschema "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"github.com/rs/zerolog"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/core/schema"
	"github.com/artpar/schemakit/ports"
)

// Options configures a Synchronizer.
type Options struct {
	// AllowDrops lets the synchronizer drop columns, indexes and foreign
	// keys that are no longer declared. Tables are never dropped.
	AllowDrops bool
}

// Synchronizer brings entity tables in line with a document.
type Synchronizer struct {
	db     *dbconn.DB
	opts   Options
	logger zerolog.Logger
}

// New creates a synchronizer.
func New(db *dbconn.DB, opts Options, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		db:     db,
		opts:   opts,
		logger: logger.With().Str("component", "atlas").Logger(),
	}
}

// Synchronize applies the changes needed for the database to match doc.
// Only tables declared by doc are inspected, so unmanaged tables are never
// touched.
func (s *Synchronizer) Synchronize(ctx context.Context, doc schema.Document) error {
	drv, changes, err := s.diff(ctx, doc)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		s.logger.Debug().Msg("database schema up to date")
		return nil
	}

	if err := drv.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("apply schema changes: %w", err)
	}

	s.logger.Info().Int("changes", len(changes)).Msg("database schema synchronized")
	return nil
}

// Plan returns the SQL statements Synchronize would run, without running
// them.
func (s *Synchronizer) Plan(ctx context.Context, doc schema.Document) ([]string, error) {
	drv, changes, err := s.diff(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, nil
	}

	plan, err := drv.PlanChanges(ctx, "schemakit", changes)
	if err != nil {
		return nil, fmt.Errorf("plan schema changes: %w", err)
	}

	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

func (s *Synchronizer) diff(ctx context.Context, doc schema.Document) (migrate.Driver, []sqlschema.Change, error) {
	managed := TableNames(doc)
	if len(managed) == 0 {
		return nil, nil, nil
	}

	drv, err := s.driver()
	if err != nil {
		return nil, nil, err
	}

	current, err := drv.InspectSchema(ctx, "", &sqlschema.InspectOptions{Tables: managed})
	if err != nil {
		return nil, nil, fmt.Errorf("inspect schema: %w", err)
	}

	desired, err := BuildSchema(doc, s.db.Dialect, current.Name)
	if err != nil {
		return nil, nil, err
	}

	changes, err := drv.SchemaDiff(current, desired)
	if err != nil {
		return nil, nil, fmt.Errorf("diff schema: %w", err)
	}

	if !s.opts.AllowDrops {
		var skipped int
		changes, skipped = FilterDrops(changes)
		if skipped > 0 {
			s.logger.Warn().Int("skipped", skipped).Msg("destructive schema changes skipped; enable allow_drops to apply them")
		}
	}
	return drv, changes, nil
}

func (s *Synchronizer) driver() (migrate.Driver, error) {
	var (
		drv migrate.Driver
		err error
	)
	switch s.db.Dialect {
	case dbconn.DialectSQLite:
		drv, err = sqlite.Open(s.db.DB)
	case dbconn.DialectPostgres:
		drv, err = postgres.Open(s.db.DB)
	case dbconn.DialectMySQL:
		drv, err = mysql.Open(s.db.DB)
	default:
		return nil, fmt.Errorf("atlas: unsupported dialect %q", s.db.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("open atlas driver: %w", err)
	}
	return drv, nil
}

// FilterDrops removes destructive changes and reports how many were
// removed. Table modifications left empty are dropped entirely.
func FilterDrops(changes []sqlschema.Change) ([]sqlschema.Change, int) {
	var (
		out     []sqlschema.Change
		skipped int
	)
	for _, c := range changes {
		switch c := c.(type) {
		case *sqlschema.DropTable, *sqlschema.DropSchema:
			skipped++
		case *sqlschema.ModifyTable:
			var kept []sqlschema.Change
			for _, tc := range c.Changes {
				if destructive(tc) {
					skipped++
					continue
				}
				kept = append(kept, tc)
			}
			if len(kept) == 0 {
				continue
			}
			c.Changes = kept
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out, skipped
}

func destructive(c sqlschema.Change) bool {
	switch c.(type) {
	case *sqlschema.DropColumn, *sqlschema.DropIndex, *sqlschema.DropForeignKey, *sqlschema.DropCheck:
		return true
	default:
		return false
	}
}

// Ensure interface compliance.
var _ ports.Synchronizer = (*Synchronizer)(nil)
