package history

// EntryType enum
type EntryType string

const (
	TypeAudio EntryType = "Audio Recording"
	TypeVideo EntryType = "Video Recording"
)

// EntryID type for history entries
type EntryID string

// Entry is one persisted record of a completed analysis, owned by a
// user identity. Immutable once written. Timestamp is seconds since
// epoch, server-assigned.
type Entry struct {
	ID              EntryID   `json:"id"`
	UserID          string    `json:"userId"`
	Type            EntryType `json:"type"`
	Feedback        string    `json:"feedback"`
	ToolSuggestions []string  `json:"toolSuggestions"`
	Timestamp       int64     `json:"timestamp"`
}
