// Package telegram integrates with the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

const defaultBaseURL = "https://api.telegram.org"

// Client performs HTTP requests against the Telegram Bot API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Telegram client.
func NewClient(token, baseURL string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SendMessage delivers a plain text reply to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	return c.post(ctx, "sendMessage", payload)
}

// SendCategoryKeyboard shows an inline keyboard with one button per category.
// Callback data is prefixed with "cat_" so the webhook can recognize picks.
func (c *Client) SendCategoryKeyboard(ctx context.Context, chatID int64, prompt string, categories []string) error {
	keyboard := make([][]map[string]string, 0, len(categories))
	for _, category := range categories {
		keyboard = append(keyboard, []map[string]string{{
			"text":          category,
			"callback_data": CallbackPrefix + category,
		}})
	}
	payload := map[string]any{
		"chat_id":      chatID,
		"text":         prompt,
		"reply_markup": map[string]any{"inline_keyboard": keyboard},
	}
	return c.post(ctx, "sendMessage", payload)
}

// SetWebhook registers the public webhook URL with Telegram.
func (c *Client) SetWebhook(ctx context.Context, publicURL, secretToken string) error {
	payload := map[string]any{
		"url": strings.TrimRight(publicURL, "/") + "/telegram/webhook",
	}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}
	return c.post(ctx, "setWebhook", payload)
}

func (c *Client) post(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTelegramError, "encode telegram payload", err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTelegramError, "build telegram request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTelegramError, "telegram request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return apperrors.Wrap(apperrors.CodeTelegramError,
			fmt.Sprintf("telegram %s failed: status=%d body=%s", method, resp.StatusCode, string(detail)), nil)
	}
	return nil
}
