// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works, and ":memory:" databases
// make repository tests fast and hermetic.
//
// SCHEMA:
// Three relations. inspirations and tags each carry an auto-incrementing
// numeric id; inspiration_tags is a bare association table with a foreign key
// to each parent and a UNIQUE pair constraint so a given (inspiration, tag)
// link can exist at most once. tags.title is UNIQUE — the title is the
// natural key the reconciler resolves against, and the constraint closes the
// race where two concurrent writers both decide a new title is missing and
// both insert it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init function.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements both repository
// interfaces. It is constructed once in the composition root, passed by
// reference to the services, and closed on shutdown — there is no package
// level singleton.
type DB struct {
	conn *sql.DB
}

// DefaultMaxConns bounds the connection pool. All repository work is I/O
// bound so a small pool is enough; SQLite serializes writers anyway.
const DefaultMaxConns = 4

// New opens the database at dbPath (":memory:" for tests), configures the
// pool, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Bound the pool explicitly. sql.DB is a pool manager, not a single
	// connection; without a cap it grows one connection per concurrent
	// request. An in-memory database exists per connection, so ":memory:"
	// must pin the pool to one connection or queries may land in a fresh,
	// empty copy.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(DefaultMaxConns)
	}

	// Ping forces an immediate connection so a bad path or permissions
	// problem surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// relevant for a web server where list queries race tag updates.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The association table
	// references both parents, so turn enforcement on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS inspirations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			image_path TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_inspirations_user_id ON inspirations(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating inspirations table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tags (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tags table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS inspiration_tags (
			inspiration_id INTEGER NOT NULL REFERENCES inspirations(id),
			tag_id         INTEGER NOT NULL REFERENCES tags(id),
			UNIQUE(inspiration_id, tag_id)
		);
		CREATE INDEX IF NOT EXISTS idx_inspiration_tags_tag_id ON inspiration_tags(tag_id);
	`)
	if err != nil {
		return fmt.Errorf("creating inspiration_tags table: %w", err)
	}

	return nil
}

// querier is the subset of database operations shared by *sql.DB and *sql.Tx.
// Helpers that must work both standalone and inside the reconciliation
// transaction take a querier instead of committing to either.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
