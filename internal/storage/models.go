package storage

import "time"

// Chat is a named conversation container owned by one user (spec.md §3).
//
// Invariants: no two non-deleted chats for the same user share Name;
// deletion is a soft delete that sets DeletedAt.
type Chat struct {
	ID          string
	UserID      string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// History is the ordered set of interactions belonging to one chat for one
// user (spec.md §3). It is lazily created on the first write to a chat.
type History struct {
	ID        string
	UserID    string
	ChatID    string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Interaction is one question/response exchange, appended to a History.
// Interactions are append-only: there is no update operation.
type Interaction struct {
	ID        string
	HistoryID string
	Question  string
	Response  string
	CreatedAt time.Time
	DeletedAt *time.Time
}
