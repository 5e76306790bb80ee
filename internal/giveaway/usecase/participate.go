package usecase

import (
	"context"

	"github.com/doEggi/do-bot/internal/model"
)

// Join adds the user to the giveaway. The bool reports whether the user
// was not participating before.
func (uc *implUseCase) Join(ctx context.Context, sc model.Scope, id string) (bool, error) {
	changed, err := uc.repo.AddParticipant(ctx, id, sc.UserID)
	if err != nil {
		return false, err
	}
	if changed {
		uc.l.Infof(ctx, "Join: user=%d giveaway=%s", sc.UserID, id)
		if g, err := uc.repo.GetGiveaway(ctx, id); err == nil {
			uc.refreshMessage(ctx, g)
		}
	}
	return changed, nil
}

// Leave removes the user from the giveaway.
func (uc *implUseCase) Leave(ctx context.Context, sc model.Scope, id string) (bool, error) {
	changed, err := uc.repo.RemoveParticipant(ctx, id, sc.UserID)
	if err != nil {
		return false, err
	}
	if changed {
		uc.l.Infof(ctx, "Leave: user=%d giveaway=%s", sc.UserID, id)
		if g, err := uc.repo.GetGiveaway(ctx, id); err == nil {
			uc.refreshMessage(ctx, g)
		}
	}
	return changed, nil
}
