package usecase

import (
	"context"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/internal/model"
	"github.com/doEggi/do-bot/pkg/timeparse"
)

// Info reports the chat's giveaway count and configured timezone.
func (uc *implUseCase) Info(ctx context.Context, sc model.Scope) (giveaway.InfoOutput, error) {
	count, err := uc.repo.CountGiveaways(ctx, sc.ChatID)
	if err != nil {
		return giveaway.InfoOutput{}, err
	}
	tz, err := uc.repo.GetTimezone(ctx, sc.ChatID)
	if err != nil {
		return giveaway.InfoOutput{}, err
	}
	return giveaway.InfoOutput{GiveawayCount: count, Timezone: tz}, nil
}

// SetTimezone validates and stores the chat's IANA timezone, returning the
// previous value. Admin only.
func (uc *implUseCase) SetTimezone(ctx context.Context, sc model.Scope, timezone string) (string, error) {
	if !sc.Admin {
		return "", giveaway.ErrPermission
	}
	if _, err := timeparse.NewParser(timezone); err != nil {
		return "", err
	}
	old, err := uc.repo.SetTimezone(ctx, sc.ChatID, timezone)
	if err != nil {
		return "", err
	}
	uc.l.Infof(ctx, "SetTimezone: chat=%d %q -> %q", sc.ChatID, old, timezone)
	return old, nil
}
