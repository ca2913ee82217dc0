package session

import "time"

// EventKind discriminates log entries.
type EventKind string

const (
	// EventUserTurn records an inbound user message.
	EventUserTurn EventKind = "user_turn"
	// EventAssistantTurn records the reply delivered for the preceding user turn.
	EventAssistantTurn EventKind = "assistant_turn"
	// EventCategorySelection records an explicit category pick.
	EventCategorySelection EventKind = "category_selection"
)

// Event is one entry in a session's append-only log. Insertion order is the
// only ordering; events are never rewritten or merged.
type Event struct {
	Kind      EventKind `json:"kind"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text,omitempty"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LastCategory scans the history backwards and returns the category of the
// nearest selection event, or "" when the session never picked one. The
// active category is derived from the log on every read rather than cached,
// so it cannot drift from the history.
func LastCategory(history []Event) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Kind == EventCategorySelection {
			return history[i].Category
		}
	}
	return ""
}
