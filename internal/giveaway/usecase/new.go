package usecase

import (
	"time"

	"github.com/doEggi/do-bot/internal/giveaway/repository"
	"github.com/doEggi/do-bot/internal/scheduler"
	pkgLog "github.com/doEggi/do-bot/pkg/log"
	"github.com/doEggi/do-bot/pkg/telegram"
)

type implUseCase struct {
	l     pkgLog.Logger
	repo  repository.Repository
	bot   *telegram.Bot
	sched *scheduler.Scheduler
	clock func() time.Time
}

// New creates a new giveaway UseCase instance.
func New(
	l pkgLog.Logger,
	repo repository.Repository,
	bot *telegram.Bot,
	sched *scheduler.Scheduler,
) *implUseCase {
	return &implUseCase{
		l:     l,
		repo:  repo,
		bot:   bot,
		sched: sched,
		clock: time.Now,
	}
}
