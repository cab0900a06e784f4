// Package sqlite implements the repository interfaces on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver (no CGo, no external
// database server).
//
// WAL mode is enabled so reads proceed concurrently with writes, and foreign
// keys are switched on (SQLite defaults them off). Multi-entity invariants
// such as owner membership at board creation, cascades on delete, and the
// atomic task move are enforced with transactions here rather than left to
// callers.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool. Per-entity stores share it: Users(), Boards(),
// Lists(), Tasks(), and Activity() each return a view implementing one
// repository interface over the same pool.
type DB struct {
	conn *sql.DB
}

// Users returns the user store backed by this database.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// Boards returns the board store backed by this database.
func (db *DB) Boards() *BoardStore { return &BoardStore{db: db} }

// Lists returns the list store backed by this database.
func (db *DB) Lists() *ListStore { return &ListStore{db: db} }

// Tasks returns the task store backed by this database.
func (db *DB) Tasks() *TaskStore { return &TaskStore{db: db} }

// Activity returns the activity log store backed by this database.
func (db *DB) Activity() *ActivityStore { return &ActivityStore{db: db} }

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

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

func (db *DB) migrate() error {
	// activity.task_id and activity.list_id are deliberately not foreign
	// keys: entries outlive the tasks and lists they mention.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS boards (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id    TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS board_members (
			board_id TEXT NOT NULL REFERENCES boards(id),
			user_id  TEXT NOT NULL REFERENCES users(id),
			added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (board_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS lists (
			id         TEXT PRIMARY KEY,
			board_id   TEXT NOT NULL REFERENCES boards(id),
			title      TEXT NOT NULL,
			position   INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			list_id     TEXT NOT NULL REFERENCES lists(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			position    INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS task_assignees (
			task_id TEXT NOT NULL REFERENCES tasks(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			PRIMARY KEY (task_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS activity (
			id         TEXT PRIMARY KEY,
			board_id   TEXT NOT NULL REFERENCES boards(id),
			actor_id   TEXT NOT NULL REFERENCES users(id),
			action     TEXT NOT NULL,
			task_id    TEXT NOT NULL DEFAULT '',
			list_id    TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_board_members_user ON board_members(user_id);
		CREATE INDEX IF NOT EXISTS idx_lists_board ON lists(board_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);
		CREATE INDEX IF NOT EXISTS idx_activity_board ON activity(board_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite exposes no typed error for this, so we match the
// driver's message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// inTx runs fn inside a transaction, rolling back on error or panic.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}
