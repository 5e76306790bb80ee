// Package sqlite persists giveaway state in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DB implements repository.Repository on SQLite.
type DB struct {
	db              *sql.DB
	defaultTimezone string
}

// New opens (and if needed creates) the database at dsn and applies the
// schema. defaultTimezone is returned for chats that never configured one.
func New(dsn, defaultTimezone string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent button presses.
	db.SetMaxOpenConns(1)

	d := &DB{db: db, defaultTimezone: defaultTimezone}
	if err := d.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_settings (
			chat_id INTEGER PRIMARY KEY,
			timezone TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS giveaway (
			id TEXT PRIMARY KEY,
			chat_id INTEGER NOT NULL,
			message_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			winners INTEGER NOT NULL,
			ends_ts INTEGER,
			created_ts INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_giveaway_chat ON giveaway (chat_id)`,
		`CREATE TABLE IF NOT EXISTS participant (
			giveaway_id TEXT NOT NULL REFERENCES giveaway (id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL,
			PRIMARY KEY (giveaway_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tracked_message (
			chat_id INTEGER NOT NULL,
			message_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			PRIMARY KEY (chat_id, message_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema")
		}
	}
	return nil
}
