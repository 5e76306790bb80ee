package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/doEggi/do-bot/internal/giveaway"
)

func (d *DB) CreateGiveaway(ctx context.Context, g giveaway.Giveaway) error {
	var endsTs *int64
	if g.EndsAt != nil {
		ts := g.EndsAt.Unix()
		endsTs = &ts
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO giveaway (id, chat_id, message_id, title, description, winners, ends_ts, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.ChatID, g.MessageID, g.Title, g.Description, g.Winners, endsTs, g.CreatedAt.Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create giveaway")
	}
	return nil
}

func (d *DB) GetGiveaway(ctx context.Context, id string) (giveaway.Giveaway, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, chat_id, message_id, title, description, winners, ends_ts, created_ts
		FROM giveaway WHERE id = ?`, id)
	return d.scanGiveaway(ctx, row)
}

func (d *DB) FindGiveawayByMessage(ctx context.Context, chatID, messageID int64) (giveaway.Giveaway, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, chat_id, message_id, title, description, winners, ends_ts, created_ts
		FROM giveaway WHERE chat_id = ? AND message_id = ?`, chatID, messageID)
	return d.scanGiveaway(ctx, row)
}

func (d *DB) scanGiveaway(ctx context.Context, row *sql.Row) (giveaway.Giveaway, error) {
	var g giveaway.Giveaway
	var endsTs *int64
	var createdTs int64
	err := row.Scan(&g.ID, &g.ChatID, &g.MessageID, &g.Title, &g.Description, &g.Winners, &endsTs, &createdTs)
	if err == sql.ErrNoRows {
		return giveaway.Giveaway{}, giveaway.ErrNotFound
	}
	if err != nil {
		return giveaway.Giveaway{}, errors.Wrap(err, "failed to scan giveaway")
	}
	if endsTs != nil {
		t := time.Unix(*endsTs, 0).UTC()
		g.EndsAt = &t
	}
	g.CreatedAt = time.Unix(createdTs, 0).UTC()

	if g.Participants, err = d.listParticipants(ctx, g.ID); err != nil {
		return giveaway.Giveaway{}, err
	}
	return g, nil
}

func (d *DB) listParticipants(ctx context.Context, id string) ([]int64, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT user_id FROM participant WHERE giveaway_id = ? ORDER BY user_id`, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list participants")
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var u int64
		if err := rows.Scan(&u); err != nil {
			return nil, errors.Wrap(err, "failed to scan participant")
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (d *DB) DeleteGiveaway(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM giveaway WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete giveaway")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return giveaway.ErrNotFound
	}
	// Cascade is not guaranteed without the foreign_keys pragma.
	if _, err := d.db.ExecContext(ctx, `DELETE FROM participant WHERE giveaway_id = ?`, id); err != nil {
		return errors.Wrap(err, "failed to delete participants")
	}
	return nil
}

func (d *DB) ListTimedGiveaways(ctx context.Context) ([]giveaway.Giveaway, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, chat_id, message_id, title, description, winners, ends_ts, created_ts
		FROM giveaway WHERE ends_ts IS NOT NULL ORDER BY ends_ts`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list timed giveaways")
	}
	defer rows.Close()

	var out []giveaway.Giveaway
	for rows.Next() {
		var g giveaway.Giveaway
		var endsTs, createdTs int64
		if err := rows.Scan(&g.ID, &g.ChatID, &g.MessageID, &g.Title, &g.Description, &g.Winners, &endsTs, &createdTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan giveaway")
		}
		t := time.Unix(endsTs, 0).UTC()
		g.EndsAt = &t
		g.CreatedAt = time.Unix(createdTs, 0).UTC()
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Participants, err = d.listParticipants(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *DB) CountGiveaways(ctx context.Context, chatID int64) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM giveaway WHERE chat_id = ?`, chatID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count giveaways")
	}
	return n, nil
}

func (d *DB) AddParticipant(ctx context.Context, id string, userID int64) (bool, error) {
	if _, err := d.GetGiveaway(ctx, id); err != nil {
		return false, err
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO participant (giveaway_id, user_id) VALUES (?, ?)`, id, userID)
	if err != nil {
		return false, errors.Wrap(err, "failed to add participant")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (d *DB) RemoveParticipant(ctx context.Context, id string, userID int64) (bool, error) {
	if _, err := d.GetGiveaway(ctx, id); err != nil {
		return false, err
	}
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM participant WHERE giveaway_id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, errors.Wrap(err, "failed to remove participant")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (d *DB) TrackMessage(ctx context.Context, chatID, messageID, userID int64) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tracked_message (chat_id, message_id, user_id) VALUES (?, ?, ?)`,
		chatID, messageID, userID)
	if err != nil {
		return errors.Wrap(err, "failed to track message")
	}
	return nil
}

func (d *DB) ListTrackedMessages(ctx context.Context, chatID int64, userID *int64) ([]int64, error) {
	query := `SELECT message_id FROM tracked_message WHERE chat_id = ?`
	args := []any{chatID}
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}
	rows, err := d.db.QueryContext(ctx, query+` ORDER BY message_id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tracked messages")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan tracked message")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (d *DB) DeleteTrackedMessages(ctx context.Context, chatID int64, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(messageIDs)), ", ")
	args := []any{chatID}
	for _, id := range messageIDs {
		args = append(args, id)
	}
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM tracked_message WHERE chat_id = ? AND message_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return errors.Wrap(err, "failed to delete tracked messages")
	}
	return nil
}
