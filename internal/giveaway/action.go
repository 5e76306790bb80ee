package giveaway

import "encoding/json"

// Callback actions carried in inline keyboard buttons. The payload must
// stay short; Telegram caps callback_data at 64 bytes.
const (
	ActionJoin   = "join"
	ActionLeave  = "leave"
	ActionFinish = "finish"
	ActionCancel = "cancel"
)

// CallbackAction is the JSON payload round-tripped through a keyboard
// button press.
type CallbackAction struct {
	Action     string `json:"a"`
	GiveawayID string `json:"id"`
}

func (a CallbackAction) Encode() string {
	b, _ := json.Marshal(a)
	return string(b)
}

func DecodeAction(data string) (CallbackAction, error) {
	var a CallbackAction
	err := json.Unmarshal([]byte(data), &a)
	return a, err
}
