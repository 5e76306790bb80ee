package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/internal/model"
	"github.com/doEggi/do-bot/pkg/telegram"
	"github.com/doEggi/do-bot/pkg/timeparse"
)

// Create posts a new giveaway message, persists it and schedules the
// automatic finish when a time expression was given.
func (uc *implUseCase) Create(ctx context.Context, sc model.Scope, input giveaway.CreateInput) (giveaway.Giveaway, error) {
	if !sc.Admin {
		return giveaway.Giveaway{}, giveaway.ErrPermission
	}
	if strings.TrimSpace(input.Title) == "" {
		return giveaway.Giveaway{}, giveaway.ErrEmptyTitle
	}
	if input.Winners < 1 {
		return giveaway.Giveaway{}, giveaway.ErrInvalidWinner
	}

	now := uc.clock()
	g := giveaway.Giveaway{
		ID:          uuid.NewString(),
		ChatID:      sc.ChatID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Winners:     input.Winners,
		CreatedAt:   now,
	}

	if strings.TrimSpace(input.When) != "" {
		tz, err := uc.repo.GetTimezone(ctx, sc.ChatID)
		if err != nil {
			return giveaway.Giveaway{}, fmt.Errorf("failed to load chat timezone: %w", err)
		}
		parser, err := timeparse.NewParser(tz)
		if err != nil {
			return giveaway.Giveaway{}, fmt.Errorf("failed to build time parser: %w", err)
		}
		endsAt, err := parser.Parse(strings.TrimSpace(input.When), now)
		if err != nil {
			return giveaway.Giveaway{}, err
		}
		g.EndsAt = &endsAt
	}

	uc.l.Infof(ctx, "Create: chat=%d title=%q winners=%d timed=%t", sc.ChatID, g.Title, g.Winners, g.EndsAt != nil)

	loc := uc.chatLocation(ctx, sc.ChatID)
	msg, err := uc.bot.Send(ctx, telegram.SendMessageRequest{
		ChatID:      sc.ChatID,
		Text:        messageText(g, loc),
		ParseMode:   "Markdown",
		ReplyMarkup: keyboard(g.ID),
	})
	if err != nil {
		return giveaway.Giveaway{}, fmt.Errorf("failed to post giveaway message: %w", err)
	}
	g.MessageID = msg.MessageID

	if err := uc.repo.CreateGiveaway(ctx, g); err != nil {
		// Do not leave an orphaned message behind.
		if delErr := uc.bot.DeleteMessage(ctx, g.ChatID, g.MessageID); delErr != nil {
			uc.l.Warnf(ctx, "Create: failed to delete orphaned message %d: %v", g.MessageID, delErr)
		}
		return giveaway.Giveaway{}, err
	}

	if g.EndsAt != nil {
		uc.scheduleFinish(g.ID, *g.EndsAt)
	}
	return g, nil
}
