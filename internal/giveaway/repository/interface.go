package repository

import (
	"context"

	"github.com/doEggi/do-bot/internal/giveaway"
)

// Repository is the persistence interface for giveaway state. All methods
// are safe for concurrent use.
type Repository interface {
	CreateGiveaway(ctx context.Context, g giveaway.Giveaway) error
	GetGiveaway(ctx context.Context, id string) (giveaway.Giveaway, error)
	DeleteGiveaway(ctx context.Context, id string) error

	// ListTimedGiveaways returns every giveaway with a pending end time,
	// across all chats, for rescheduling at startup.
	ListTimedGiveaways(ctx context.Context) ([]giveaway.Giveaway, error)

	// FindGiveawayByMessage resolves the giveaway attached to a chat
	// message, or giveaway.ErrNotFound.
	FindGiveawayByMessage(ctx context.Context, chatID, messageID int64) (giveaway.Giveaway, error)

	CountGiveaways(ctx context.Context, chatID int64) (int, error)

	// AddParticipant and RemoveParticipant report whether the set changed.
	AddParticipant(ctx context.Context, id string, userID int64) (bool, error)
	RemoveParticipant(ctx context.Context, id string, userID int64) (bool, error)

	// GetTimezone returns the chat's configured timezone or the default.
	// SetTimezone stores a new one and returns the previous value.
	GetTimezone(ctx context.Context, chatID int64) (string, error)
	SetTimezone(ctx context.Context, chatID int64, timezone string) (string, error)

	TrackMessage(ctx context.Context, chatID, messageID, userID int64) error

	// ListTrackedMessages returns tracked message IDs of a chat, filtered
	// by user when userID is non-nil.
	ListTrackedMessages(ctx context.Context, chatID int64, userID *int64) ([]int64, error)
	DeleteTrackedMessages(ctx context.Context, chatID int64, messageIDs []int64) error
}
