package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/doEggi/do-bot/internal/giveaway"
	"github.com/doEggi/do-bot/pkg/telegram"
)

// Mock logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any) {}

// fakeRepo is an in-memory repository.Repository for usecase tests.
type fakeRepo struct {
	mu        sync.Mutex
	giveaways map[string]giveaway.Giveaway
	timezones map[int64]string
	tracked   map[int64]map[int64]int64 // chatID -> messageID -> userID
	defaultTZ string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		giveaways: map[string]giveaway.Giveaway{},
		timezones: map[int64]string{},
		tracked:   map[int64]map[int64]int64{},
		defaultTZ: "Europe/Berlin",
	}
}

func (r *fakeRepo) CreateGiveaway(ctx context.Context, g giveaway.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.giveaways[g.ID] = g
	return nil
}

func (r *fakeRepo) GetGiveaway(ctx context.Context, id string) (giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return giveaway.Giveaway{}, giveaway.ErrNotFound
	}
	return g, nil
}

func (r *fakeRepo) DeleteGiveaway(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.giveaways[id]; !ok {
		return giveaway.ErrNotFound
	}
	delete(r.giveaways, id)
	return nil
}

func (r *fakeRepo) ListTimedGiveaways(ctx context.Context) ([]giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []giveaway.Giveaway
	for _, g := range r.giveaways {
		if g.EndsAt != nil {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindGiveawayByMessage(ctx context.Context, chatID, messageID int64) (giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.giveaways {
		if g.ChatID == chatID && g.MessageID == messageID {
			return g, nil
		}
	}
	return giveaway.Giveaway{}, giveaway.ErrNotFound
}

func (r *fakeRepo) CountGiveaways(ctx context.Context, chatID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, g := range r.giveaways {
		if g.ChatID == chatID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) AddParticipant(ctx context.Context, id string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return false, giveaway.ErrNotFound
	}
	for _, p := range g.Participants {
		if p == userID {
			return false, nil
		}
	}
	g.Participants = append(g.Participants, userID)
	r.giveaways[id] = g
	return true, nil
}

func (r *fakeRepo) RemoveParticipant(ctx context.Context, id string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return false, giveaway.ErrNotFound
	}
	for i, p := range g.Participants {
		if p == userID {
			g.Participants = append(g.Participants[:i], g.Participants[i+1:]...)
			r.giveaways[id] = g
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) GetTimezone(ctx context.Context, chatID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tz, ok := r.timezones[chatID]; ok {
		return tz, nil
	}
	return r.defaultTZ, nil
}

func (r *fakeRepo) SetTimezone(ctx context.Context, chatID int64, timezone string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.timezones[chatID]
	if !ok {
		old = r.defaultTZ
	}
	r.timezones[chatID] = timezone
	return old, nil
}

func (r *fakeRepo) TrackMessage(ctx context.Context, chatID, messageID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tracked[chatID] == nil {
		r.tracked[chatID] = map[int64]int64{}
	}
	r.tracked[chatID][messageID] = userID
	return nil
}

func (r *fakeRepo) ListTrackedMessages(ctx context.Context, chatID int64, userID *int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for msgID, uid := range r.tracked[chatID] {
		if userID == nil || uid == *userID {
			ids = append(ids, msgID)
		}
	}
	return ids, nil
}

func (r *fakeRepo) DeleteTrackedMessages(ctx context.Context, chatID int64, messageIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range messageIDs {
		delete(r.tracked[chatID], id)
	}
	return nil
}

// apiCall is one recorded Bot API request.
type apiCall struct {
	Method  string
	Payload map[string]any
}

// fakeTelegram runs an httptest server that answers every Bot API method
// with success and records the calls.
type fakeTelegram struct {
	mu     sync.Mutex
	calls  []apiCall
	nextID int64
	server *httptest.Server
}

func newFakeTelegram() *fakeTelegram {
	f := &fakeTelegram{nextID: 100}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)

		f.mu.Lock()
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]
		f.calls = append(f.calls, apiCall{Method: method, Payload: payload})
		f.nextID++
		id := f.nextID
		f.mu.Unlock()

		resp := map[string]any{"ok": true}
		if method == "sendMessage" {
			resp["result"] = map[string]any{"message_id": id}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	return f
}

func (f *fakeTelegram) bot() *telegram.Bot {
	b := telegram.NewBot("test-token")
	b.SetAPIURL(f.server.URL + "/bottest-token")
	return b
}

func (f *fakeTelegram) callsFor(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTelegram) close() { f.server.Close() }
