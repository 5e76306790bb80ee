package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

func (d *DB) GetTimezone(ctx context.Context, chatID int64) (string, error) {
	var tz string
	err := d.db.QueryRowContext(ctx,
		`SELECT timezone FROM chat_settings WHERE chat_id = ?`, chatID).Scan(&tz)
	if err == sql.ErrNoRows {
		return d.defaultTimezone, nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get timezone")
	}
	return tz, nil
}

// SetTimezone stores the timezone for a chat and returns the value it replaced.
func (d *DB) SetTimezone(ctx context.Context, chatID int64, timezone string) (string, error) {
	old, err := d.GetTimezone(ctx, chatID)
	if err != nil {
		return "", err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chat_settings (chat_id, timezone) VALUES (?, ?)`, chatID, timezone)
	if err != nil {
		return "", errors.Wrap(err, "failed to set timezone")
	}
	return old, nil
}
