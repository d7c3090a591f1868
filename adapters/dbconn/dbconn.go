// Package dbconn opens database connections for the SQL-backed adapters and
// owns the bookkeeping tables they share.
package dbconn

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect groups drivers that share SQL syntax.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ErrUnknownDriver is returned for a driver name no dialect is known for.
var ErrUnknownDriver = errors.New("unknown database driver")

var driverDialects = map[string]Dialect{
	"sqlite3":  DialectSQLite, // mattn/go-sqlite3 (cgo)
	"sqlite":   DialectSQLite, // modernc.org/sqlite
	"postgres": DialectPostgres,
	"mysql":    DialectMySQL,
}

// DialectOf returns the dialect of a database/sql driver name.
func DialectOf(driver string) (Dialect, error) {
	d, ok := driverDialects[driver]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownDriver, driver)
	}
	return d, nil
}

// Drivers returns the supported driver names in sorted order.
func Drivers() []string {
	names := make([]string, 0, len(driverDialects))
	for name := range driverDialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DB wraps a database connection with its driver and dialect.
type DB struct {
	*sql.DB
	Driver  string
	Dialect Dialect
}

// Open creates a new database connection. For the cgo SQLite driver, a
// file DSN without parameters gets WAL and a busy timeout.
func Open(driver, dsn string) (*DB, error) {
	dialect, err := DialectOf(driver)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite3" && !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dialect == DialectSQLite {
		pragmas := []string{
			"PRAGMA synchronous = NORMAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA temp_store = MEMORY",
		}
		for _, pragma := range pragmas {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("set pragma: %w", err)
			}
		}
	}

	return Wrap(db, driver)
}

// Wrap adopts an existing connection, e.g. one created by sqlmock.
func Wrap(db *sql.DB, driver string) (*DB, error) {
	dialect, err := DialectOf(driver)
	if err != nil {
		return nil, err
	}
	return &DB{DB: db, Driver: driver, Dialect: dialect}, nil
}

// Rebind rewrites ? placeholders for the connection's dialect.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the bookkeeping tables. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	dir := "migrations/" + string(db.Dialect)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationsFS.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		for _, stmt := range SplitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute migration %s: %w", name, err)
			}
		}
	}

	return nil
}

// SplitStatements splits a SQL script on semicolons at line ends and drops
// empty statements and comment-only lines.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()

	for i, s := range stmts {
		stmts[i] = strings.TrimSuffix(s, ";")
	}
	return stmts
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Quote quotes an identifier for the connection's dialect.
func (db *DB) Quote(ident string) string {
	if db.Dialect == DialectMySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
