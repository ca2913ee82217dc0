package sessionstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-faqbot/internal/domain/session"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewFileStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, "s1",
		session.Event{Kind: session.EventUserTurn, Author: "Ada", Text: "hello", Timestamp: ts},
		session.Event{Kind: session.EventAssistantTurn, Text: "hi", Category: "General", Timestamp: ts},
	))
	require.NoError(t, store.Append(ctx, "s1",
		session.Event{Kind: session.EventCategorySelection, Category: "Account", Timestamp: ts},
	))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, session.EventUserTurn, history[0].Kind)
	require.Equal(t, "Ada", history[0].Author)
	require.Equal(t, "Account", session.LastCategory(history))
	require.True(t, history[0].Timestamp.Equal(ts))
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	first, err := NewFileStore(path, logger)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, "s1", session.Event{Kind: session.EventUserTurn, Text: "hello"}))

	second, err := NewFileStore(path, logger)
	require.NoError(t, err)
	history, err := second.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "hello", history[0].Text)
}

func TestFileStoreUnknownSessionIsEmpty(t *testing.T) {
	store := newTestFileStore(t)
	history, err := store.History(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestFileStoreCorruptFileResetsToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewFileStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ctx := context.Background()

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, history)

	// appends still work after the reset
	require.NoError(t, store.Append(ctx, "s1", session.Event{Kind: session.EventUserTurn, Text: "hello"}))
	history, err = store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestFileStoreConcurrentAppendsLoseNothing(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 5
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = store.Append(ctx, id, session.Event{Kind: session.EventUserTurn, Text: "msg"})
			}
		}(string(rune('a' + w)))
	}
	wg.Wait()

	for w := 0; w < writers; w++ {
		history, err := store.History(ctx, string(rune('a'+w)))
		require.NoError(t, err)
		require.Len(t, history, perWriter)
	}
}

func TestFileStoreSessionsSorted(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	for _, id := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, store.Append(ctx, id, session.Event{Kind: session.EventUserTurn, Text: "x"}))
	}

	ids, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "bravo", "charlie"}, ids)
}
