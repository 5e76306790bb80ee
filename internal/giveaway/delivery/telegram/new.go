package telegram

import (
	"github.com/gin-gonic/gin"

	"github.com/doEggi/do-bot/internal/giveaway"
	pkgLog "github.com/doEggi/do-bot/pkg/log"
	pkgTelegram "github.com/doEggi/do-bot/pkg/telegram"
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// New creates a new Telegram delivery handler. adminIDs holds the user IDs
// allowed to run privileged commands; webhookSecret, when non-empty, must
// match the secret token header Telegram sends with every update.
func New(
	l pkgLog.Logger,
	uc giveaway.UseCase,
	bot *pkgTelegram.Bot,
	adminIDs []int64,
	webhookSecret string,
) Handler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &handler{
		l:             l,
		uc:            uc,
		bot:           bot,
		admins:        admins,
		webhookSecret: webhookSecret,
	}
}
