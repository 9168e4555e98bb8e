// Package sqlite implements the repository interfaces using SQLite as the
// document store. It is the default backend.
//
// DOCUMENTS ON TOP OF TABLES:
// The rest of the application thinks in documents: users/{uid} and
// chats/{chatId}/messages/{id}. Here each collection becomes a table and the
// document key becomes the primary key:
//
//	users/{uid}                   → users(uid PRIMARY KEY, ...)
//	chats/{chatId}/messages/{id}  → messages(chat_id, id, ...) PRIMARY KEY (chat_id, id)
//
// Optional document fields (isMentor, urlPicture, urlImage) are nullable
// columns so "field absent" survives a round trip.
//
// WHY sqlx?
// sqlx keeps database/sql underneath but scans rows straight into structs
// using the `db:"..."` tags on the model, and supports :named parameters.
// That removes the long positional Scan(&a, &b, &c) lists.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite. No C compiler is needed, so the
// binary cross-compiles like any other Go program.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	// sqlx only knows the mattn driver name "sqlite3" out of the box.
	// modernc registers itself as "sqlite", which uses the same ? placeholders.
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// DB wraps a sqlx connection pool and implements both
// repository.UserRepository and repository.MessageRepository.
type DB struct {
	conn *sqlx.DB
}

// New opens the SQLite database at dbPath and applies pending migrations.
//
// dbPath examples:
//   - "data/mentorchat.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand new, empty database.
	// Pin the pool to a single connection so all queries see the same data.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers run while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate applies the embedded migrations with golang-migrate.
//
// golang-migrate records the applied version in a schema_migrations table,
// so restarting the server only runs what is new.
//
// NOTE: we deliberately never call m.Close(). The migrate sqlite driver's
// Close() closes the *sql.DB it was given, which is our live pool.
func (db *DB) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.conn.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// rowsAffected reads the affected row count of an UPDATE.
// Callers map zero to apperror.NotFound.
func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}
