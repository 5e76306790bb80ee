package giveaway

import (
	"context"

	"github.com/doEggi/do-bot/internal/model"
)

// UseCase defines the business logic interface for the giveaway domain.
type UseCase interface {
	// Create posts a new giveaway in the chat, persists it and, when a
	// time expression was given, schedules the automatic finish.
	Create(ctx context.Context, sc model.Scope, input CreateInput) (Giveaway, error)

	// Join and Leave toggle the pressing user's participation. The bool
	// reports whether anything changed.
	Join(ctx context.Context, sc model.Scope, id string) (bool, error)
	Leave(ctx context.Context, sc model.Scope, id string) (bool, error)

	// Finish draws winners and announces them; Cancel aborts without a
	// drawing. Both require admin scope.
	Finish(ctx context.Context, sc model.Scope, id string) error
	Cancel(ctx context.Context, sc model.Scope, id string) error

	// CancelByMessage cancels the giveaway attached to a chat message
	// that was deleted out from under the bot.
	CancelByMessage(ctx context.Context, chatID, messageID int64) error

	// Info reports the chat's giveaway count and configured timezone.
	Info(ctx context.Context, sc model.Scope) (InfoOutput, error)

	// SetTimezone changes the chat's IANA timezone and returns the
	// previous one.
	SetTimezone(ctx context.Context, sc model.Scope, timezone string) (string, error)

	// Restore re-arms the finish schedule of every persisted timed
	// giveaway. Called once at startup.
	Restore(ctx context.Context) error

	// TrackMessage records a chat message for later bulk deletion.
	TrackMessage(ctx context.Context, chatID, messageID, userID int64) error

	// ClearChat deletes all tracked messages of the chat; ClearUser only
	// those of one user. Both return the number of deleted messages.
	ClearChat(ctx context.Context, sc model.Scope) (int, error)
	ClearUser(ctx context.Context, sc model.Scope, userID int64) (int, error)
}
