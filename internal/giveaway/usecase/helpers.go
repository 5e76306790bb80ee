package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/pkg/telegram"
)

// messageText renders the giveaway message shown in the chat. Times are
// displayed in the chat's timezone.
func messageText(g giveaway.Giveaway, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 *%s*\n", g.Title)
	if g.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", g.Description)
	}
	fmt.Fprintf(&b, "\nGewinner: %d\n", g.Winners)
	fmt.Fprintf(&b, "Teilnehmer: %d\n", len(g.Participants))
	if g.EndsAt != nil {
		fmt.Fprintf(&b, "Endet am: %s", g.EndsAt.In(loc).Format("02.01.2006 um 15:04"))
	} else {
		b.WriteString("Endet: manuell")
	}
	return b.String()
}

// keyboard builds the giveaway buttons carrying the giveaway ID. The second
// row is admin-only; the usecase rejects finish and cancel for everyone else.
func keyboard(id string) *telegram.InlineKeyboard {
	join := giveaway.CallbackAction{Action: giveaway.ActionJoin, GiveawayID: id}
	leave := giveaway.CallbackAction{Action: giveaway.ActionLeave, GiveawayID: id}
	finish := giveaway.CallbackAction{Action: giveaway.ActionFinish, GiveawayID: id}
	cancel := giveaway.CallbackAction{Action: giveaway.ActionCancel, GiveawayID: id}
	return &telegram.InlineKeyboard{Rows: [][]telegram.InlineKeyboardButton{
		{
			{Text: "Teilnehmen ✅", Data: join.Encode()},
			{Text: "Verlassen ❌", Data: leave.Encode()},
		},
		{
			{Text: "Beenden 🏁", Data: finish.Encode()},
			{Text: "Abbrechen 🚫", Data: cancel.Encode()},
		},
	}}
}

// chatLocation loads the chat's configured timezone, falling back to UTC
// when the stored name no longer resolves.
func (uc *implUseCase) chatLocation(ctx context.Context, chatID int64) *time.Location {
	tz, err := uc.repo.GetTimezone(ctx, chatID)
	if err != nil {
		uc.l.Warnf(ctx, "chatLocation: failed to load timezone for chat %d: %v", chatID, err)
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		uc.l.Warnf(ctx, "chatLocation: stored timezone %q invalid: %v", tz, err)
		return time.UTC
	}
	return loc
}

// refreshMessage re-renders the giveaway message after a participant
// change. A vanished message is tolerated; the cancel flow handles it.
func (uc *implUseCase) refreshMessage(ctx context.Context, g giveaway.Giveaway) {
	loc := uc.chatLocation(ctx, g.ChatID)
	err := uc.bot.EditMessage(ctx, telegram.EditMessageRequest{
		ChatID:      g.ChatID,
		MessageID:   g.MessageID,
		Text:        messageText(g, loc),
		ParseMode:   "Markdown",
		ReplyMarkup: keyboard(g.ID),
	})
	if err != nil && !telegram.IsMessageGone(err) {
		uc.l.Warnf(ctx, "refreshMessage: failed to edit giveaway %s: %v", g.ID, err)
	}
}

// mention renders a Markdown user mention that works without a username.
func mention(userID int64) string {
	return fmt.Sprintf("[%d](tg://user?id=%d)", userID, userID)
}
