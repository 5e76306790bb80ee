package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doEggi/do-bot/internal/giveaway"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "bot.db")
	db, err := New(dsn, "Europe/Berlin")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGiveawayCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ends := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	g := giveaway.Giveaway{
		ID:          "abc123",
		ChatID:      -100,
		MessageID:   42,
		Title:       "Nitro",
		Description: "Ein Monat Nitro",
		Winners:     2,
		EndsAt:      &ends,
		CreatedAt:   time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.CreateGiveaway(ctx, g))

	got, err := db.GetGiveaway(ctx, "abc123")
	require.NoError(t, err)
	require.Equal(t, g.Title, got.Title)
	require.Equal(t, g.Winners, got.Winners)
	require.NotNil(t, got.EndsAt)
	require.True(t, got.EndsAt.Equal(ends))
	require.Empty(t, got.Participants)

	byMsg, err := db.FindGiveawayByMessage(ctx, -100, 42)
	require.NoError(t, err)
	require.Equal(t, "abc123", byMsg.ID)

	n, err := db.CountGiveaways(ctx, -100)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, db.DeleteGiveaway(ctx, "abc123"))
	_, err = db.GetGiveaway(ctx, "abc123")
	require.ErrorIs(t, err, giveaway.ErrNotFound)
	require.ErrorIs(t, db.DeleteGiveaway(ctx, "abc123"), giveaway.ErrNotFound)
}

func TestParticipants(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	g := giveaway.Giveaway{ID: "g1", ChatID: 1, MessageID: 1, Title: "t", Winners: 1, CreatedAt: time.Now()}
	require.NoError(t, db.CreateGiveaway(ctx, g))

	added, err := db.AddParticipant(ctx, "g1", 7)
	require.NoError(t, err)
	require.True(t, added)

	added, err = db.AddParticipant(ctx, "g1", 7)
	require.NoError(t, err)
	require.False(t, added)

	_, err = db.AddParticipant(ctx, "missing", 7)
	require.ErrorIs(t, err, giveaway.ErrNotFound)

	_, err = db.RemoveParticipant(ctx, "missing", 7)
	require.ErrorIs(t, err, giveaway.ErrNotFound)

	_, err = db.AddParticipant(ctx, "g1", 8)
	require.NoError(t, err)

	got, err := db.GetGiveaway(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []int64{7, 8}, got.Participants)

	removed, err := db.RemoveParticipant(ctx, "g1", 7)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = db.RemoveParticipant(ctx, "g1", 7)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestListTimedGiveaways(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	later := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.CreateGiveaway(ctx, giveaway.Giveaway{ID: "a", ChatID: 1, Title: "a", Winners: 1, EndsAt: &later, CreatedAt: time.Now()}))
	require.NoError(t, db.CreateGiveaway(ctx, giveaway.Giveaway{ID: "b", ChatID: 1, MessageID: 2, Title: "b", Winners: 1, EndsAt: &sooner, CreatedAt: time.Now()}))
	require.NoError(t, db.CreateGiveaway(ctx, giveaway.Giveaway{ID: "c", ChatID: 1, MessageID: 3, Title: "c", Winners: 1, CreatedAt: time.Now()}))

	timed, err := db.ListTimedGiveaways(ctx)
	require.NoError(t, err)
	require.Len(t, timed, 2)
	require.Equal(t, "b", timed[0].ID)
	require.Equal(t, "a", timed[1].ID)
}

func TestTimezone(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tz, err := db.GetTimezone(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, "Europe/Berlin", tz)

	old, err := db.SetTimezone(ctx, 5, "America/New_York")
	require.NoError(t, err)
	require.Equal(t, "Europe/Berlin", old)

	old, err = db.SetTimezone(ctx, 5, "Asia/Tokyo")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", old)

	tz, err = db.GetTimezone(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, "Asia/Tokyo", tz)
}

func TestTrackedMessages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.TrackMessage(ctx, 1, 10, 100))
	require.NoError(t, db.TrackMessage(ctx, 1, 11, 100))
	require.NoError(t, db.TrackMessage(ctx, 1, 12, 200))
	require.NoError(t, db.TrackMessage(ctx, 2, 13, 100))

	all, err := db.ListTrackedMessages(ctx, 1, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11, 12}, all)

	user := int64(100)
	mine, err := db.ListTrackedMessages(ctx, 1, &user)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11}, mine)

	require.NoError(t, db.DeleteTrackedMessages(ctx, 1, mine))
	all, err = db.ListTrackedMessages(ctx, 1, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{12}, all)
}
