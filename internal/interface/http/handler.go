package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
	"github.com/yanqian/ai-faqbot/internal/domain/session"
	"github.com/yanqian/ai-faqbot/internal/domain/transcript"
	"github.com/yanqian/ai-faqbot/internal/infra/telegram"
	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	retrievalSvc  retrieval.Service
	sessionSvc    *session.Service
	transcriptSvc *transcript.Service
	tg            *telegram.Client
	secretToken   string
	welcomeText   string
	categoryText  string
	voiceReply    string
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler. The Telegram client may be nil
// when the transport is disabled.
func NewHandler(
	retrievalSvc retrieval.Service,
	sessionSvc *session.Service,
	transcriptSvc *transcript.Service,
	tg *telegram.Client,
	tgCfg TelegramOptions,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		retrievalSvc:  retrievalSvc,
		sessionSvc:    sessionSvc,
		transcriptSvc: transcriptSvc,
		tg:            tg,
		secretToken:   tgCfg.SecretToken,
		welcomeText:   tgCfg.WelcomeText,
		categoryText:  tgCfg.CategoryPrompt,
		voiceReply:    tgCfg.VoiceReply,
		logger:        logger.With("component", "http.handler"),
	}
}

// TelegramOptions carries the webhook texts and secret into the handler.
type TelegramOptions struct {
	SecretToken    string
	WelcomeText    string
	CategoryPrompt string
	VoiceReply     string
}

type answerRequest struct {
	SessionID string `json:"sessionId"`
	Author    string `json:"author"`
	Question  string `json:"question"`
}

type answerResponse struct {
	SessionID string           `json:"sessionId"`
	Result    retrieval.Answer `json:"result"`
}

// Answer runs the retrieval flow for one question and records the exchange.
func (h *Handler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "question cannot be empty", nil))
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.sessionSvc.NewSessionID()
	}

	answer := h.retrievalSvc.Answer(c.Request.Context(), sessionID, req.Question)
	if err := h.sessionSvc.RecordExchange(c.Request.Context(), sessionID, req.Author, req.Question, answer.Answer, answer.Category); err != nil {
		h.logger.Warn("recording exchange failed", "session", sessionID, "error", err)
	}

	c.JSON(http.StatusOK, answerResponse{SessionID: sessionID, Result: answer})
}

// Categories lists the corpus categories for selection menus.
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.retrievalSvc.Categories()})
}

type selectCategoryRequest struct {
	Category string `json:"category"`
}

// SelectCategory appends a category selection event to the session log.
func (h *Handler) SelectCategory(c *gin.Context) {
	sessionID := c.Param("id")
	var req selectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if !h.knownCategory(req.Category) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unknown category", nil))
		return
	}
	if err := h.sessionSvc.SelectCategory(c.Request.Context(), sessionID, req.Category); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "session_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "category": req.Category})
}

// History returns the full event log for a session.
func (h *Handler) History(c *gin.Context) {
	sessionID := c.Param("id")
	history, err := h.sessionSvc.History(c.Request.Context(), sessionID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "session_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "events": history})
}

// Transcript returns all question/answer pairs as JSON.
func (h *Handler) Transcript(c *gin.Context) {
	records, err := h.transcriptSvc.Records(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "export_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// TranscriptCSV serves the transcript as a CSV download.
func (h *Handler) TranscriptCSV(c *gin.Context) {
	data, err := h.transcriptSvc.CSV(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "export_failed", errMessage(err), err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transcript.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportTranscript uploads the CSV report to object storage.
func (h *Handler) ExportTranscript(c *gin.Context) {
	location, err := h.transcriptSvc.Export(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, apperrors.CodeExportError) {
			status = http.StatusBadGateway
		}
		abortWithError(c, NewHTTPError(status, "export_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location})
}

func (h *Handler) knownCategory(category string) bool {
	for _, c := range h.retrievalSvc.Categories() {
		if c == category {
			return true
		}
	}
	return false
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
