package model

// Scope identifies the chat and user a command or button press came from.
// Admin is resolved by the delivery layer from the configured admin list
// and gates giveaway management and moderation commands.
type Scope struct {
	ChatID   int64
	UserID   int64
	Username string
	Admin    bool
}
