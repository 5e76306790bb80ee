package usecase

import (
	"context"
)

// Restore re-arms the finish timer of every persisted timed giveaway.
// Giveaways whose end time passed while the bot was down fire immediately.
func (uc *implUseCase) Restore(ctx context.Context) error {
	timed, err := uc.repo.ListTimedGiveaways(ctx)
	if err != nil {
		return err
	}
	for _, g := range timed {
		uc.scheduleFinish(g.ID, *g.EndsAt)
	}
	uc.l.Infof(ctx, "Restore: rescheduled %d timed giveaways", len(timed))
	return nil
}
