package transcript

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-faqbot/internal/domain/session"
	apperrors "github.com/yanqian/ai-faqbot/pkg/errors"
)

type stubStore struct {
	events map[string][]session.Event
	err    error
}

func (s *stubStore) History(_ context.Context, sessionID string) ([]session.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events[sessionID], nil
}

func (s *stubStore) Append(_ context.Context, sessionID string, events ...session.Event) error {
	if s.events == nil {
		s.events = make(map[string][]session.Event)
	}
	s.events[sessionID] = append(s.events[sessionID], events...)
	return nil
}

func (s *stubStore) Sessions(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubUploader struct {
	key         string
	data        []byte
	contentType string
	err         error
}

func (u *stubUploader) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.key, u.data, u.contentType = key, data, contentType
	return "minio://exports/" + key, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore() *stubStore {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &stubStore{events: map[string][]session.Event{
		"s1": {
			{Kind: session.EventUserTurn, Author: "Ada", Text: "How do I reset my password?", Timestamp: ts},
			{Kind: session.EventAssistantTurn, Text: "Use the reset link.", Category: "Account", Timestamp: ts},
			{Kind: session.EventCategorySelection, Category: "General", Timestamp: ts},
			{Kind: session.EventUserTurn, Author: "Ada", Text: "unanswered", Timestamp: ts},
		},
	}}
}

func TestRecordsPairTurns(t *testing.T) {
	svc := NewService(seededStore(), nil, testLogger())

	records, err := svc.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "s1", records[0].SessionID)
	require.Equal(t, "Ada", records[0].User)
	require.Equal(t, "How do I reset my password?", records[0].Question)
	require.Equal(t, "Use the reset link.", records[0].Answer)
	require.Equal(t, "Account", records[0].Category)
	require.NotEmpty(t, records[0].ID)

	// a trailing user turn with no reply still shows up, with empty answer
	require.Equal(t, "unanswered", records[1].Question)
	require.Empty(t, records[1].Answer)
}

func TestCSVLayout(t *testing.T) {
	svc := NewService(seededStore(), nil, testLogger())

	data, err := svc.CSV(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "session_id,user,time,category,question,answer", lines[0])
	require.Contains(t, lines[1], "How do I reset my password?")
	require.Contains(t, lines[1], "2026-03-01T12:00:00Z")
}

func TestExportUploadsCSV(t *testing.T) {
	uploader := &stubUploader{}
	svc := NewService(seededStore(), uploader, testLogger())
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }

	location, err := svc.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, "transcripts/20260302T093000Z.csv", uploader.key)
	require.Equal(t, "text/csv", uploader.contentType)
	require.Contains(t, location, uploader.key)
	require.Contains(t, string(uploader.data), "session_id,user,time")
}

func TestExportWithoutUploaderFails(t *testing.T) {
	svc := NewService(seededStore(), nil, testLogger())

	_, err := svc.Export(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeExportError))
}

func TestRecordsPropagatesStoreError(t *testing.T) {
	svc := NewService(&stubStore{err: errors.New("store down")}, nil, testLogger())

	_, err := svc.Records(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeExportError))
}

func TestExportUploadFailure(t *testing.T) {
	svc := NewService(seededStore(), &stubUploader{err: errors.New("bucket gone")}, testLogger())

	_, err := svc.Export(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeExportError))
}
