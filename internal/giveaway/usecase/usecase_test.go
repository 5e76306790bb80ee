package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/internal/model"
	"github.com/doEggi/do-bot/internal/scheduler"
	"github.com/doEggi/do-bot/pkg/timeparse"
)

func newTestUseCase(t *testing.T) (*implUseCase, *fakeRepo, *fakeTelegram) {
	t.Helper()
	repo := newFakeRepo()
	tg := newFakeTelegram()
	sched := scheduler.New()
	t.Cleanup(func() {
		sched.Stop()
		tg.close()
	})
	uc := New(&mockLogger{}, repo, tg.bot(), sched)
	return uc, repo, tg
}

func adminScope() model.Scope {
	return model.Scope{ChatID: -100, UserID: 1, Username: "admin", Admin: true}
}

func TestCreateManual(t *testing.T) {
	uc, repo, tg := newTestUseCase(t)

	g, err := uc.Create(context.Background(), adminScope(), giveaway.CreateInput{
		Title:   "Nitro",
		Winners: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.EndsAt != nil {
		t.Error("manual giveaway should have no end time")
	}
	if g.MessageID == 0 {
		t.Error("expected message ID from posted message")
	}
	if _, err := repo.GetGiveaway(context.Background(), g.ID); err != nil {
		t.Errorf("giveaway not persisted: %v", err)
	}
	if len(tg.callsFor("sendMessage")) != 1 {
		t.Errorf("expected one sendMessage, got %d", len(tg.callsFor("sendMessage")))
	}
}

func TestCreateTimed(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	uc.clock = func() time.Time { return now }

	g, err := uc.Create(context.Background(), adminScope(), giveaway.CreateInput{
		Title:   "Nitro",
		Winners: 1,
		When:    "1h30m",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.EndsAt == nil {
		t.Fatal("expected end time")
	}
	want := now.Add(90 * time.Minute)
	if !g.EndsAt.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", g.EndsAt, want)
	}
}

func TestCreateBadTime(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.Create(context.Background(), adminScope(), giveaway.CreateInput{
		Title:   "Nitro",
		Winners: 1,
		When:    "irgendwann",
	})
	var perr *timeparse.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()

	if _, err := uc.Create(ctx, adminScope(), giveaway.CreateInput{Title: "  ", Winners: 1}); err != giveaway.ErrEmptyTitle {
		t.Errorf("empty title: got %v", err)
	}
	if _, err := uc.Create(ctx, adminScope(), giveaway.CreateInput{Title: "x", Winners: 0}); err != giveaway.ErrInvalidWinner {
		t.Errorf("zero winners: got %v", err)
	}
	sc := adminScope()
	sc.Admin = false
	if _, err := uc.Create(ctx, sc, giveaway.CreateInput{Title: "x", Winners: 1}); err != giveaway.ErrPermission {
		t.Errorf("non-admin: got %v", err)
	}
}

func TestJoinLeave(t *testing.T) {
	uc, _, tg := newTestUseCase(t)
	ctx := context.Background()

	g, err := uc.Create(ctx, adminScope(), giveaway.CreateInput{Title: "x", Winners: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user := model.Scope{ChatID: -100, UserID: 7}
	changed, err := uc.Join(ctx, user, g.ID)
	if err != nil || !changed {
		t.Fatalf("Join: changed=%t err=%v", changed, err)
	}
	changed, err = uc.Join(ctx, user, g.ID)
	if err != nil || changed {
		t.Fatalf("second Join: changed=%t err=%v", changed, err)
	}
	if len(tg.callsFor("editMessageText")) != 1 {
		t.Errorf("expected one edit after join, got %d", len(tg.callsFor("editMessageText")))
	}

	changed, err = uc.Leave(ctx, user, g.ID)
	if err != nil || !changed {
		t.Fatalf("Leave: changed=%t err=%v", changed, err)
	}
	changed, err = uc.Leave(ctx, user, g.ID)
	if err != nil || changed {
		t.Fatalf("second Leave: changed=%t err=%v", changed, err)
	}

	if _, err := uc.Join(ctx, user, "missing"); err != giveaway.ErrNotFound {
		t.Errorf("Join missing: got %v", err)
	}
}

func TestFinishDrawsWinnersAndDeletes(t *testing.T) {
	uc, repo, tg := newTestUseCase(t)
	ctx := context.Background()

	g, err := uc.Create(ctx, adminScope(), giveaway.CreateInput{Title: "x", Winners: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, uid := range []int64{7, 8, 9} {
		if _, err := uc.Join(ctx, model.Scope{ChatID: -100, UserID: uid}, g.ID); err != nil {
			t.Fatalf("Join: %v", err)
		}
	}

	if err := uc.Finish(ctx, adminScope(), g.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := repo.GetGiveaway(ctx, g.ID); err != giveaway.ErrNotFound {
		t.Errorf("giveaway should be deleted, got %v", err)
	}
	// One message for the giveaway itself, one for the announcement.
	if got := len(tg.callsFor("sendMessage")); got != 2 {
		t.Errorf("expected 2 sendMessage calls, got %d", got)
	}

	sc := adminScope()
	sc.Admin = false
	if err := uc.Finish(ctx, sc, g.ID); err != giveaway.ErrPermission {
		t.Errorf("non-admin Finish: got %v", err)
	}
}

func TestCancelByMessage(t *testing.T) {
	uc, repo, _ := newTestUseCase(t)
	ctx := context.Background()

	g, err := uc.Create(ctx, adminScope(), giveaway.CreateInput{Title: "x", Winners: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := uc.CancelByMessage(ctx, g.ChatID, g.MessageID); err != nil {
		t.Fatalf("CancelByMessage: %v", err)
	}
	if _, err := repo.GetGiveaway(ctx, g.ID); err != giveaway.ErrNotFound {
		t.Errorf("giveaway should be deleted, got %v", err)
	}
	if err := uc.CancelByMessage(ctx, 1, 2); err != giveaway.ErrNotFound {
		t.Errorf("unknown message: got %v", err)
	}
}

func TestScheduledFinishFires(t *testing.T) {
	uc, repo, _ := newTestUseCase(t)
	ctx := context.Background()

	now := time.Now()
	uc.clock = func() time.Time { return now.Add(-100 * time.Millisecond) }

	// An end time barely in the future of the shifted clock fires almost
	// immediately in real time.
	g, err := uc.Create(ctx, adminScope(), giveaway.CreateInput{Title: "x", Winners: 1, When: "1s"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := repo.GetGiveaway(ctx, g.ID); err == giveaway.ErrNotFound {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("scheduled finish never fired")
}

func TestRestoreReschedules(t *testing.T) {
	uc, repo, _ := newTestUseCase(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	g := giveaway.Giveaway{ID: "old", ChatID: -100, MessageID: 5, Title: "x", Winners: 1, EndsAt: &past, CreatedAt: past}
	if err := repo.CreateGiveaway(ctx, g); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := uc.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := repo.GetGiveaway(ctx, "old"); err == giveaway.ErrNotFound {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("overdue giveaway was not finished on restore")
}

func TestInfoAndSetTimezone(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()

	out, err := uc.Info(ctx, adminScope())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if out.GiveawayCount != 0 || out.Timezone != "Europe/Berlin" {
		t.Errorf("Info = %+v", out)
	}

	old, err := uc.SetTimezone(ctx, adminScope(), "America/New_York")
	if err != nil {
		t.Fatalf("SetTimezone: %v", err)
	}
	if old != "Europe/Berlin" {
		t.Errorf("old timezone = %q", old)
	}
	if _, err := uc.SetTimezone(ctx, adminScope(), "Not/AZone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestClear(t *testing.T) {
	uc, _, tg := newTestUseCase(t)
	ctx := context.Background()

	for i, uid := range []int64{7, 7, 8} {
		if err := uc.TrackMessage(ctx, -100, int64(10+i), uid); err != nil {
			t.Fatalf("TrackMessage: %v", err)
		}
	}

	user := model.Scope{ChatID: -100, UserID: 7}
	n, err := uc.ClearUser(ctx, user, 7)
	if err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if n != 2 {
		t.Errorf("ClearUser deleted %d, want 2", n)
	}

	if _, err := uc.ClearUser(ctx, user, 8); err != giveaway.ErrPermission {
		t.Errorf("clearing someone else's messages: got %v", err)
	}

	n, err = uc.ClearChat(ctx, adminScope())
	if err != nil {
		t.Fatalf("ClearChat: %v", err)
	}
	if n != 1 {
		t.Errorf("ClearChat deleted %d, want 1", n)
	}
	if got := len(tg.callsFor("deleteMessage")); got != 3 {
		t.Errorf("expected 3 deleteMessage calls, got %d", got)
	}
}

func TestDrawWinners(t *testing.T) {
	participants := []int64{1, 2, 3, 4, 5}

	winners := drawWinners(participants, 3)
	if len(winners) != 3 {
		t.Fatalf("got %d winners, want 3", len(winners))
	}
	seen := map[int64]bool{}
	for _, w := range winners {
		if seen[w] {
			t.Fatalf("duplicate winner %d", w)
		}
		seen[w] = true
	}

	if got := drawWinners(participants, 10); len(got) != 5 {
		t.Errorf("capped draw returned %d winners, want 5", len(got))
	}
	if got := drawWinners(nil, 2); got != nil {
		t.Errorf("empty draw returned %v", got)
	}
}
