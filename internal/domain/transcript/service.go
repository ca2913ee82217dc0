package transcript

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ai-faqbot/internal/domain/session"
	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

// Record is one question/answer pair flattened for reporting.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	User      string    `json:"user"`
	Time      time.Time `json:"time"`
	Category  string    `json:"category"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
}

// Uploader pushes an export artifact to durable storage.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service builds tabular reports from the session logs.
type Service struct {
	store    session.Store
	uploader Uploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the transcript service. The uploader may be nil when
// no object storage is configured.
func NewService(store session.Store, uploader Uploader, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		uploader: uploader,
		logger:   logger.With("component", "transcript.service"),
		now:      time.Now,
	}
}

// Records pairs every user turn with the assistant turn that follows it,
// across all sessions.
func (s *Service) Records(ctx context.Context) ([]Record, error) {
	ids, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportError, "listing sessions failed", err)
	}
	var records []Record
	for _, id := range ids {
		history, err := s.store.History(ctx, id)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeExportError, "reading session history failed", err)
		}
		records = append(records, pairTurns(id, history)...)
	}
	return records, nil
}

// CSV renders all records as a CSV document.
func (s *Service) CSV(ctx context.Context) ([]byte, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"session_id", "user", "time", "category", "question", "answer"})
	for _, r := range records {
		if err := w.Write([]string{r.SessionID, r.User, r.Time.Format(time.RFC3339), r.Category, r.Question, r.Answer}); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeExportError, "writing csv row failed", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportError, "flushing csv failed", err)
	}
	return buf.Bytes(), nil
}

// Export uploads the current CSV report and returns its storage location.
func (s *Service) Export(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", apperrors.Wrap(apperrors.CodeExportError, "no export storage configured", nil)
	}
	data, err := s.CSV(ctx)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("transcripts/%s.csv", s.now().UTC().Format("20060102T150405Z"))
	location, err := s.uploader.Upload(ctx, key, data, "text/csv")
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExportError, "transcript upload failed", err)
	}
	s.logger.Info("transcript exported", "location", location, "bytes", len(data))
	return location, nil
}

func pairTurns(sessionID string, history []session.Event) []Record {
	var records []Record
	for i, event := range history {
		if event.Kind != session.EventUserTurn {
			continue
		}
		record := Record{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			User:      event.Author,
			Time:      event.Timestamp,
			Question:  event.Text,
		}
		if i+1 < len(history) && history[i+1].Kind == session.EventAssistantTurn {
			record.Answer = history[i+1].Text
			record.Category = history[i+1].Category
		}
		records = append(records, record)
	}
	return records
}
