package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/internal/model"
	"github.com/doEggi/do-bot/pkg/telegram"
)

// Finish draws winners, rewrites the giveaway message and announces the
// result. Admin only.
func (uc *implUseCase) Finish(ctx context.Context, sc model.Scope, id string) error {
	if !sc.Admin {
		return giveaway.ErrPermission
	}
	return uc.finish(ctx, id)
}

// scheduleFinish arms the one-shot finish timer for a timed giveaway.
func (uc *implUseCase) scheduleFinish(id string, at time.Time) {
	uc.sched.Schedule(id, at, func() {
		ctx := context.Background()
		if err := uc.finish(ctx, id); err != nil {
			uc.l.Errorf(ctx, "scheduleFinish: giveaway %s: %v", id, err)
		}
	})
}

func (uc *implUseCase) finish(ctx context.Context, id string) error {
	g, err := uc.repo.GetGiveaway(ctx, id)
	if err != nil {
		return err
	}

	winners := drawWinners(g.Participants, g.Winners)
	uc.l.Infof(ctx, "finish: giveaway=%s participants=%d winners=%d", id, len(g.Participants), len(winners))

	err = uc.bot.EditMessage(ctx, telegram.EditMessageRequest{
		ChatID:    g.ChatID,
		MessageID: g.MessageID,
		Text:      fmt.Sprintf("🏁 *%s*\n\nDieses Giveaway ist beendet.", g.Title),
		ParseMode: "Markdown",
	})
	if err != nil && !telegram.IsMessageGone(err) {
		uc.l.Warnf(ctx, "finish: failed to close message %d: %v", g.MessageID, err)
	}

	var text string
	if len(winners) == 0 {
		text = fmt.Sprintf("Das Giveaway *%s* ist beendet. Niemand hat teilgenommen. 😢", g.Title)
	} else {
		mentions := make([]string, len(winners))
		for i, w := range winners {
			mentions[i] = mention(w)
		}
		text = fmt.Sprintf("🎉 Das Giveaway *%s* ist beendet!\nGewinner: %s\nHerzlichen Glückwunsch!",
			g.Title, strings.Join(mentions, ", "))
	}
	if _, err := uc.bot.Send(ctx, telegram.SendMessageRequest{
		ChatID:           g.ChatID,
		Text:             text,
		ParseMode:        "Markdown",
		ReplyToMessageID: g.MessageID,
	}); err != nil {
		return fmt.Errorf("failed to announce winners: %w", err)
	}

	uc.sched.Cancel(id)
	return uc.repo.DeleteGiveaway(ctx, id)
}

// Cancel aborts a giveaway without drawing winners. Admin only.
func (uc *implUseCase) Cancel(ctx context.Context, sc model.Scope, id string) error {
	if !sc.Admin {
		return giveaway.ErrPermission
	}
	g, err := uc.repo.GetGiveaway(ctx, id)
	if err != nil {
		return err
	}
	return uc.cancel(ctx, g)
}

// CancelByMessage cancels the giveaway attached to a deleted chat message.
func (uc *implUseCase) CancelByMessage(ctx context.Context, chatID, messageID int64) error {
	g, err := uc.repo.FindGiveawayByMessage(ctx, chatID, messageID)
	if err != nil {
		return err
	}
	return uc.cancel(ctx, g)
}

func (uc *implUseCase) cancel(ctx context.Context, g giveaway.Giveaway) error {
	uc.l.Infof(ctx, "cancel: giveaway=%s chat=%d", g.ID, g.ChatID)
	err := uc.bot.EditMessage(ctx, telegram.EditMessageRequest{
		ChatID:    g.ChatID,
		MessageID: g.MessageID,
		Text:      fmt.Sprintf("🚫 *%s*\n\nDieses Giveaway wurde abgebrochen.", g.Title),
		ParseMode: "Markdown",
	})
	if err != nil && !telegram.IsMessageGone(err) {
		uc.l.Warnf(ctx, "cancel: failed to edit message %d: %v", g.MessageID, err)
	}
	uc.sched.Cancel(g.ID)
	return uc.repo.DeleteGiveaway(ctx, g.ID)
}

// drawWinners picks up to n distinct participants uniformly at random.
func drawWinners(participants []int64, n int) []int64 {
	if n > len(participants) {
		n = len(participants)
	}
	if n == 0 {
		return nil
	}
	winners := make([]int64, 0, n)
	for _, i := range rand.Perm(len(participants))[:n] {
		winners = append(winners, participants[i])
	}
	return winners
}
