package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const apiBase = "https://api.telegram.org"

// Client is a thin Telegram Bot API client: long polling plus the handful
// of methods the game bot uses.
type Client struct {
	httpClient *http.Client
	token      string
}

// RPSError represents a rate limit response from the Bot API.
type RPSError struct {
	Msg string
}

func (e *RPSError) Error() string {
	return e.Msg
}

func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		token: token,
	}
}

// SendOptions are the optional knobs of sendMessage and sendPhoto.
type SendOptions struct {
	ThreadID         int64
	ReplyToMessageID int64
	ReplyMarkup      *InlineKeyboardMarkup
	ParseMode        string
}

// GetMe verifies the token and returns the bot's own user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var result User
	if err := c.call(ctx, "getMe", url.Values{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUpdates long-polls for updates after offset. timeout is the server-side
// hold in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{
		"offset":          {strconv.FormatInt(offset, 10)},
		"timeout":         {strconv.Itoa(timeout)},
		"allowed_updates": {`["message","callback_query"]`},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage posts text to a chat and returns the sent message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*Message, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}
	if err := applyOptions(params, opts); err != nil {
		return nil, err
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendPhoto posts a photo by URL or file id with an optional caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo, caption string, opts *SendOptions) (*Message, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"photo":   {photo},
	}
	if caption != "" {
		params.Set("caption", caption)
	}
	if err := applyOptions(params, opts); err != nil {
		return nil, err
	}

	var msg Message
	if err := c.call(ctx, "sendPhoto", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text (and keyboard) of a sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *InlineKeyboardMarkup) error {
	params := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"message_id": {strconv.FormatInt(messageID, 10)},
		"text":       {text},
	}
	if markup != nil {
		encoded, err := json.Marshal(markup)
		if err != nil {
			return fmt.Errorf("failed to encode reply markup: %w", err)
		}
		params.Set("reply_markup", string(encoded))
	}

	var msg json.RawMessage
	return c.call(ctx, "editMessageText", params, &msg)
}

// DeleteMessage removes a message the bot sent.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	params := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"message_id": {strconv.FormatInt(messageID, 10)},
	}

	var ok bool
	return c.call(ctx, "deleteMessage", params, &ok)
}

// AnswerCallbackQuery acknowledges a button press, optionally with a toast
// or alert.
func (c *Client) AnswerCallbackQuery(ctx context.Context, queryID, text string, showAlert bool) error {
	params := url.Values{
		"callback_query_id": {queryID},
	}
	if text != "" {
		params.Set("text", text)
	}
	if showAlert {
		params.Set("show_alert", "true")
	}

	var ok bool
	return c.call(ctx, "answerCallbackQuery", params, &ok)
}

func applyOptions(params url.Values, opts *SendOptions) error {
	if opts == nil {
		return nil
	}
	if opts.ThreadID != 0 {
		params.Set("message_thread_id", strconv.FormatInt(opts.ThreadID, 10))
	}
	if opts.ReplyToMessageID != 0 {
		params.Set("reply_to_message_id", strconv.FormatInt(opts.ReplyToMessageID, 10))
	}
	if opts.ParseMode != "" {
		params.Set("parse_mode", opts.ParseMode)
	}
	if opts.ReplyMarkup != nil {
		encoded, err := json.Marshal(opts.ReplyMarkup)
		if err != nil {
			return fmt.Errorf("failed to encode reply markup: %w", err)
		}
		params.Set("reply_markup", string(encoded))
	}
	return nil
}

// call POSTs one Bot API method and decodes result into out.
func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", apiBase, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Ok          bool            `json:"ok"`
		Description string          `json:"description,omitempty"`
		Result      json.RawMessage `json:"result,omitempty"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !envelope.Ok {
		if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(envelope.Description, "Too Many Requests") {
			return &RPSError{Msg: "too many requests"}
		}
		log.Debug().Str("method", method).Str("description", envelope.Description).Msg("telegram API error")
		return fmt.Errorf("telegram API error: %s", envelope.Description)
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to parse result: %w", err)
		}
	}
	return nil
}
