package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

// SQLite's built-in LOWER only folds ASCII; name search needs full Unicode.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// dialect captures the per-backend differences of SQLStore.
type dialect struct {
	name       string
	driver     string
	migrations []migration

	// unboundedLimit is the LIMIT operand meaning "no limit", needed when
	// only an OFFSET is requested.
	unboundedLimit string

	// lower is the Unicode-aware lowercasing function.
	lower string
}

var (
	sqliteDialect = dialect{
		name:           "sqlite",
		driver:         "sqlite",
		migrations:     sqliteMigrations,
		unboundedLimit: "-1",
		lower:          "unicode_lower",
	}
	postgresDialect = dialect{
		name:           "postgres",
		driver:         "pgx",
		migrations:     postgresMigrations,
		unboundedLimit: "ALL",
		lower:          "LOWER",
	}
)

// SQLStore implements Store on top of a SQL database through sqlx.
type SQLStore struct {
	db      *sqlx.DB
	q       sqlx.ExtContext
	dialect dialect
	inTx    bool
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	db, err := sqlx.Open(sqliteDialect.driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	return newSQLStore(db, sqliteDialect)
}

// NewPostgresStore connects to PostgreSQL through pgx and runs any pending
// schema migrations.
func NewPostgresStore(ctx context.Context, url string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, postgresDialect.driver, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return newSQLStore(db, postgresDialect)
}

func newSQLStore(db *sqlx.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, q: db, dialect: d}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Dialect returns the backend name, "sqlite" or "postgres".
func (s *SQLStore) Dialect() string {
	return s.dialect.name
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLStore) runMigrations() error {
	if _, err := s.db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	for _, m := range s.dialect.migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// InTx runs fn inside a transaction. Nested calls reuse the outer transaction.
func (s *SQLStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, q: tx, dialect: s.dialect, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
