package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/internal/model"
	pkgLog "github.com/doEggi/do-bot/pkg/log"
	pkgResponse "github.com/doEggi/do-bot/pkg/response"
	pkgTelegram "github.com/doEggi/do-bot/pkg/telegram"
	"github.com/doEggi/do-bot/pkg/timeparse"
)

type handler struct {
	l             pkgLog.Logger
	uc            giveaway.UseCase
	bot           *pkgTelegram.Bot
	admins        map[int64]bool
	webhookSecret string
}

const helpText = `*Befehle:*
/create Titel | Beschreibung | Gewinner | Zeit
  Beschreibung, Gewinner und Zeit sind optional.
  Beispiele für die Zeit: ` + "`in 1h30m`, `Morgen um 10 Uhr`, `10.11.2025 14:00`" + `
/timezone [Zone]  Zeitzone anzeigen oder setzen (z.B. Europe/Berlin)
/info             Anzahl laufender Giveaways und Zeitzone
/clear            Eigene erfasste Nachrichten löschen
/clearall         Alle erfassten Nachrichten löschen (Admin)
/help             Diese Hilfe`

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the update in a
// background goroutine so slow work never trips Telegram's webhook timeout.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if h.webhookSecret != "" &&
		c.GetHeader("X-Telegram-Bot-Api-Secret-Token") != h.webhookSecret {
		pkgResponse.Unauthorized(c)
		return
	}

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	go func() {
		bgCtx := context.Background()
		switch {
		case update.CallbackQuery != nil:
			h.processCallback(bgCtx, update.CallbackQuery)
		case update.Message != nil:
			h.processMessage(bgCtx, update.Message)
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

// scope builds the authorization scope of the acting user.
func (h *handler) scope(chatID int64, from *pkgTelegram.User) model.Scope {
	sc := model.Scope{ChatID: chatID}
	if from != nil {
		sc.UserID = from.ID
		sc.Username = from.Username
		sc.Admin = h.admins[from.ID]
	}
	return sc
}

func (h *handler) processCallback(ctx context.Context, cb *pkgTelegram.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	action, err := giveaway.DecodeAction(cb.Data)
	if err != nil {
		h.l.Warnf(ctx, "telegram handler: undecodable callback data %q: %v", cb.Data, err)
		_ = h.bot.AnswerCallback(ctx, cb.ID, "")
		return
	}

	sc := h.scope(cb.Message.Chat.ID, cb.From)
	var toast string
	switch action.Action {
	case giveaway.ActionJoin:
		changed, err := h.uc.Join(ctx, sc, action.GiveawayID)
		switch {
		case errors.Is(err, giveaway.ErrNotFound):
			toast = "Dieses Giveaway existiert nicht mehr."
		case err != nil:
			h.l.Errorf(ctx, "telegram handler: join failed: %v", err)
			toast = "Das hat leider nicht geklappt."
		case changed:
			toast = "Du nimmst jetzt teil! 🎉"
		default:
			toast = "Du nimmst bereits teil."
		}
	case giveaway.ActionLeave:
		changed, err := h.uc.Leave(ctx, sc, action.GiveawayID)
		switch {
		case errors.Is(err, giveaway.ErrNotFound):
			toast = "Dieses Giveaway existiert nicht mehr."
		case err != nil:
			h.l.Errorf(ctx, "telegram handler: leave failed: %v", err)
			toast = "Das hat leider nicht geklappt."
		case changed:
			toast = "Du nimmst nicht mehr teil."
		default:
			toast = "Du hast gar nicht teilgenommen."
		}
	case giveaway.ActionFinish:
		toast = h.describeAdminAction(ctx, "beendet", h.uc.Finish(ctx, sc, action.GiveawayID))
	case giveaway.ActionCancel:
		toast = h.describeAdminAction(ctx, "abgebrochen", h.uc.Cancel(ctx, sc, action.GiveawayID))
	default:
		h.l.Warnf(ctx, "telegram handler: unknown callback action %q", action.Action)
	}
	if err := h.bot.AnswerCallback(ctx, cb.ID, toast); err != nil {
		h.l.Warnf(ctx, "telegram handler: answerCallback failed: %v", err)
	}
}

// describeAdminAction turns the outcome of a finish or cancel button press
// into a toast.
func (h *handler) describeAdminAction(ctx context.Context, verb string, err error) string {
	switch {
	case errors.Is(err, giveaway.ErrPermission):
		return "Das dürfen nur Admins."
	case errors.Is(err, giveaway.ErrNotFound):
		return "Dieses Giveaway existiert nicht mehr."
	case err != nil:
		h.l.Errorf(ctx, "telegram handler: %s failed: %v", verb, err)
		return "Das hat leider nicht geklappt."
	}
	return "Giveaway " + verb + "."
}

func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) {
	if msg.Chat == nil {
		return
	}
	sc := h.scope(msg.Chat.ID, msg.From)

	if !strings.HasPrefix(msg.Text, "/") {
		// Plain chat messages are tracked so /clear can remove them later.
		if msg.From != nil {
			if err := h.uc.TrackMessage(ctx, msg.Chat.ID, msg.MessageID, msg.From.ID); err != nil {
				h.l.Warnf(ctx, "telegram handler: track message failed: %v", err)
			}
		}
		return
	}

	cmd, args, _ := strings.Cut(msg.Text, " ")
	// Commands in groups arrive as /cmd@BotName.
	cmd, _, _ = strings.Cut(cmd, "@")

	var err error
	switch cmd {
	case "/start":
		err = h.reply(ctx, msg, "👋 Willkommen! Ich verwalte Giveaways in diesem Chat.\nSchick /help für eine Übersicht der Befehle.")
	case "/help":
		err = h.replyMarkdown(ctx, msg, helpText)
	case "/create":
		err = h.handleCreate(ctx, sc, msg, args)
	case "/timezone":
		err = h.handleTimezone(ctx, sc, msg, strings.TrimSpace(args))
	case "/info":
		err = h.handleInfo(ctx, sc, msg)
	case "/clear":
		err = h.handleClear(ctx, sc, msg, false)
	case "/clearall":
		err = h.handleClear(ctx, sc, msg, true)
	default:
		err = h.reply(ctx, msg, "Diesen Befehl kenne ich nicht. Versuch es mit /help.")
	}
	if err != nil {
		h.l.Errorf(ctx, "telegram handler: %s failed: %v", cmd, err)
		_, _ = h.bot.SendMessage(ctx, msg.Chat.ID, "Da ist etwas schiefgelaufen. Bitte versuch es noch einmal.")
	}
}

// handleCreate parses "/create Titel | Beschreibung | Gewinner | Zeit".
// Trailing fields may be omitted.
func (h *handler) handleCreate(ctx context.Context, sc model.Scope, msg *pkgTelegram.Message, args string) error {
	if strings.TrimSpace(args) == "" {
		return h.replyMarkdown(ctx, msg, "Benutzung: `/create Titel | Beschreibung | Gewinner | Zeit`")
	}

	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	input := giveaway.CreateInput{Title: parts[0], Winners: 1}
	if len(parts) > 1 {
		input.Description = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return h.reply(ctx, msg, fmt.Sprintf("%q ist keine gültige Gewinneranzahl.", parts[2]))
		}
		input.Winners = n
	}
	if len(parts) > 3 {
		input.When = parts[3]
	}

	_, err := h.uc.Create(ctx, sc, input)
	var perr *timeparse.ParseError
	switch {
	case errors.As(err, &perr):
		good := perr.Input[:perr.Offset()]
		return h.reply(ctx, msg, fmt.Sprintf("Fehler beim Parsen der Zeit: %s --- %s", good, perr.Remainder))
	case errors.Is(err, giveaway.ErrPermission):
		return h.reply(ctx, msg, "Nur Admins dürfen Giveaways erstellen.")
	case errors.Is(err, giveaway.ErrEmptyTitle):
		return h.reply(ctx, msg, "Das Giveaway braucht einen Titel.")
	case errors.Is(err, giveaway.ErrInvalidWinner):
		return h.reply(ctx, msg, "Die Gewinneranzahl muss mindestens 1 sein.")
	}
	return err
}

func (h *handler) handleTimezone(ctx context.Context, sc model.Scope, msg *pkgTelegram.Message, zone string) error {
	if zone == "" {
		out, err := h.uc.Info(ctx, sc)
		if err != nil {
			return err
		}
		return h.reply(ctx, msg, fmt.Sprintf("Aktuelle Zeitzone: %s", out.Timezone))
	}

	old, err := h.uc.SetTimezone(ctx, sc, zone)
	switch {
	case errors.Is(err, giveaway.ErrPermission):
		return h.reply(ctx, msg, "Nur Admins dürfen die Zeitzone ändern.")
	case err != nil:
		return h.reply(ctx, msg, fmt.Sprintf("%q ist keine gültige Zeitzone.", zone))
	}
	return h.reply(ctx, msg, fmt.Sprintf("Zeitzone geändert: %s → %s", old, zone))
}

func (h *handler) handleInfo(ctx context.Context, sc model.Scope, msg *pkgTelegram.Message) error {
	out, err := h.uc.Info(ctx, sc)
	if err != nil {
		return err
	}
	return h.reply(ctx, msg, fmt.Sprintf("Laufende Giveaways: %d\nZeitzone: %s", out.GiveawayCount, out.Timezone))
}

func (h *handler) handleClear(ctx context.Context, sc model.Scope, msg *pkgTelegram.Message, all bool) error {
	var (
		n   int
		err error
	)
	if all {
		n, err = h.uc.ClearChat(ctx, sc)
	} else {
		n, err = h.uc.ClearUser(ctx, sc, sc.UserID)
	}
	if errors.Is(err, giveaway.ErrPermission) {
		return h.reply(ctx, msg, "Dafür fehlen dir die Rechte.")
	}
	if err != nil {
		return err
	}
	return h.reply(ctx, msg, fmt.Sprintf("%d Nachrichten gelöscht.", n))
}

func (h *handler) reply(ctx context.Context, msg *pkgTelegram.Message, text string) error {
	_, err := h.bot.SendMessage(ctx, msg.Chat.ID, text)
	return err
}

func (h *handler) replyMarkdown(ctx context.Context, msg *pkgTelegram.Message, text string) error {
	_, err := h.bot.Send(ctx, pkgTelegram.SendMessageRequest{
		ChatID:    msg.Chat.ID,
		Text:      text,
		ParseMode: "Markdown",
	})
	return err
}
