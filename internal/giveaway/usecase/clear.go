package usecase

import (
	"context"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/internal/model"
	"github.com/doEggi/do-bot/pkg/telegram"
)

// TrackMessage records a chat message for later bulk deletion.
func (uc *implUseCase) TrackMessage(ctx context.Context, chatID, messageID, userID int64) error {
	return uc.repo.TrackMessage(ctx, chatID, messageID, userID)
}

// ClearChat deletes every tracked message of the chat. Admin only.
func (uc *implUseCase) ClearChat(ctx context.Context, sc model.Scope) (int, error) {
	if !sc.Admin {
		return 0, giveaway.ErrPermission
	}
	return uc.clear(ctx, sc.ChatID, nil)
}

// ClearUser deletes the tracked messages of a single user. Users may clear
// their own messages; clearing someone else's requires admin.
func (uc *implUseCase) ClearUser(ctx context.Context, sc model.Scope, userID int64) (int, error) {
	if !sc.Admin && sc.UserID != userID {
		return 0, giveaway.ErrPermission
	}
	return uc.clear(ctx, sc.ChatID, &userID)
}

func (uc *implUseCase) clear(ctx context.Context, chatID int64, userID *int64) (int, error) {
	ids, err := uc.repo.ListTrackedMessages(ctx, chatID, userID)
	if err != nil {
		return 0, err
	}

	deleted := make([]int64, 0, len(ids))
	for _, id := range ids {
		err := uc.bot.DeleteMessage(ctx, chatID, id)
		if err != nil && !telegram.IsMessageGone(err) {
			uc.l.Warnf(ctx, "clear: failed to delete message %d in chat %d: %v", id, chatID, err)
			continue
		}
		deleted = append(deleted, id)
	}

	if err := uc.repo.DeleteTrackedMessages(ctx, chatID, deleted); err != nil {
		return len(deleted), err
	}
	uc.l.Infof(ctx, "clear: chat=%d removed=%d of %d", chatID, len(deleted), len(ids))
	return len(deleted), nil
}
