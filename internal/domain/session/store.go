package session

import "context"

// Store persists per-session event logs. Append must be safe under
// concurrent calls for different sessions: an implementation either holds a
// single writer lock around its read-modify-write cycle or appends to
// per-session keys atomically.
type Store interface {
	History(ctx context.Context, sessionID string) ([]Event, error)
	Append(ctx context.Context, sessionID string, events ...Event) error
	Sessions(ctx context.Context) ([]string, error)
}
