package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-faqbot/internal/infra/telegram"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramWebhook processes inbound Telegram updates: category button
// presses, text questions, the /start command and unsupported voice notes.
// Telegram retries failed deliveries, so the handler always acknowledges with
// 200 once the update is parsed.
func (h *Handler) TelegramWebhook(c *gin.Context) {
	if h.tg == nil {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "telegram transport disabled", nil))
		return
	}
	if h.secretToken != "" {
		provided := c.GetHeader(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secretToken)) != 1 {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "bad webhook secret", nil))
			return
		}
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	ctx := c.Request.Context()
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		h.handleCategoryCallback(c, update.CallbackQuery)
	case update.Message != nil && update.Message.Voice != nil:
		chatID := update.Message.Chat.ID
		if err := h.tg.SendMessage(ctx, chatID, h.voiceReply); err != nil {
			h.logger.Warn("voice reply failed", "chat", chatID, "error", err)
		}
	case update.Message != nil && update.Message.Text != "":
		h.handleTextMessage(c, update.Message)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) handleCategoryCallback(c *gin.Context, callback *telegram.CallbackQuery) {
	category, ok := telegram.CategoryFromCallback(callback.Data)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	chatID := callback.Message.Chat.ID
	sessionID := chatSessionID(chatID)

	if err := h.sessionSvc.SelectCategory(ctx, sessionID, category); err != nil {
		h.logger.Warn("category selection failed", "session", sessionID, "error", err)
		return
	}
	if err := h.tg.SendMessage(ctx, chatID, "Selected category: "+category); err != nil {
		h.logger.Warn("category confirmation failed", "chat", chatID, "error", err)
	}
}

func (h *Handler) handleTextMessage(c *gin.Context, msg *telegram.Message) {
	ctx := c.Request.Context()
	chatID := msg.Chat.ID
	sessionID := chatSessionID(chatID)

	if msg.Text == "/start" {
		if err := h.tg.SendMessage(ctx, chatID, h.welcomeText); err != nil {
			h.logger.Warn("welcome message failed", "chat", chatID, "error", err)
		}
		if err := h.tg.SendCategoryKeyboard(ctx, chatID, h.categoryText, h.retrievalSvc.Categories()); err != nil {
			h.logger.Warn("category keyboard failed", "chat", chatID, "error", err)
		}
		return
	}

	answer := h.retrievalSvc.Answer(ctx, sessionID, msg.Text)
	if err := h.sessionSvc.RecordExchange(ctx, sessionID, msg.From.FirstName, msg.Text, answer.Answer, answer.Category); err != nil {
		h.logger.Warn("recording exchange failed", "session", sessionID, "error", err)
	}

	reply := fmt.Sprintf("%s\n\nCategory: %s", answer.Answer, answer.Category)
	if err := h.tg.SendMessage(ctx, chatID, reply); err != nil {
		h.logger.Warn("answer delivery failed", "chat", chatID, "error", err)
	}
}

func chatSessionID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
