package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// deleteRate throttles deleteMessage calls; bulk clears hammer the API and
// Telegram starts returning 429 at around 30 requests per second.
const deleteRate = rate.Limit(20)

// Bot is the Telegram Bot API client.
type Bot struct {
	token      string
	apiURL     string
	httpClient *http.Client
	deleteLim  *rate.Limiter
}

// APIError is a non-OK answer from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// IsMessageGone reports whether err means the referenced message no longer
// exists, which callers usually want to tolerate.
func IsMessageGone(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == http.StatusBadRequest
}

// NewBot creates a new Telegram Bot client with the given token.
func NewBot(token string) *Bot {
	return &Bot{
		token:      token,
		apiURL:     fmt.Sprintf("https://api.telegram.org/bot%s", token),
		httpClient: &http.Client{},
		deleteLim:  rate.NewLimiter(deleteRate, 5),
	}
}

// SetAPIURL overrides the default Telegram API URL for testing purposes.
func (b *Bot) SetAPIURL(url string) {
	b.apiURL = url
}

// call POSTs payload to the given Bot API method and decodes the result
// into out when out is non-nil.
func (b *Bot) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/%s", b.apiURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp struct {
		APIResponse
		Result json.RawMessage `json:"result,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode telegram %s response: %w", method, err)
	}
	if !apiResp.OK {
		code := apiResp.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Code: code, Description: apiResp.Description}
	}
	if out != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode telegram %s result: %w", method, err)
		}
	}
	return nil
}

// SetWebhook registers the webhook URL with Telegram. A non-empty secret is
// echoed back by Telegram in the X-Telegram-Bot-Api-Secret-Token header of
// every delivered update.
func (b *Bot) SetWebhook(webhookURL, secret string) error {
	payload := map[string]string{"url": webhookURL}
	if secret != "" {
		payload["secret_token"] = secret
	}
	return b.call(context.Background(), "setWebhook", payload, nil)
}

// SendMessage sends a plain text message and returns the posted message.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	return b.Send(ctx, SendMessageRequest{ChatID: chatID, Text: text})
}

// Send sends a message with full control over markup and reply threading.
func (b *Bot) Send(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	if err := b.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessage rewrites the text and keyboard of an existing message.
func (b *Bot) EditMessage(ctx context.Context, req EditMessageRequest) error {
	return b.call(ctx, "editMessageText", req, nil)
}

// DeleteMessage removes a message from a chat. Calls are throttled so bulk
// clears stay under the API rate limit; the context bounds the wait.
func (b *Bot) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	if err := b.deleteLim.Wait(ctx); err != nil {
		return err
	}
	payload := map[string]int64{"chat_id": chatID, "message_id": messageID}
	return b.call(ctx, "deleteMessage", payload, nil)
}

// AnswerCallback acknowledges a callback query, optionally with a toast
// shown to the pressing user.
func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := map[string]string{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	return b.call(ctx, "answerCallbackQuery", payload, nil)
}
