package giveaway

import "time"

// Giveaway is a single giveaway posted in a chat. MessageID points at the
// bot message carrying the join/leave buttons; deleting that message
// cancels the giveaway.
type Giveaway struct {
	ID           string
	ChatID       int64
	MessageID    int64
	Title        string
	Description  string
	Winners      int
	Participants []int64
	EndsAt       *time.Time
	CreatedAt    time.Time
}

// CreateInput is the user-facing input for creating a giveaway. When is an
// optional free-text German time expression ("in 5m", "Morgen um 10 Uhr");
// empty means the giveaway runs until finished manually.
type CreateInput struct {
	Title       string
	Description string
	Winners     int
	When        string
}

// InfoOutput summarizes the per-chat state.
type InfoOutput struct {
	GiveawayCount int
	Timezone      string
}
