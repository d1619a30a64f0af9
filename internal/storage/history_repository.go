package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrHistoryNotFound is returned when a select targets a history that
// doesn't exist or has been soft-deleted.
var ErrHistoryNotFound = errors.New("storage: history not found")

// HistoryRepository implements the History CRUD surface from spec.md
// §4.B, generalizing
// original_source/daemon/database/repository/history.py's
// HistoryRepository.
type HistoryRepository struct {
	baseRepository
}

// NewHistoryRepository builds a HistoryRepository bound to the engine's
// pool.
func NewHistoryRepository(e *Engine) *HistoryRepository {
	return &HistoryRepository{baseRepository: newBaseRepository(e, "histories")}
}

// Insert creates a new history for the given chat.
func (r *HistoryRepository) Insert(userID, chatID string) (*History, error) {
	h := &History{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChatID:    chatID,
		CreatedAt: time.Now().UTC(),
	}

	const query = `INSERT INTO histories (id, user_id, chat_id, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.exec(query, h.ID, h.UserID, h.ChatID, h.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: inserting history: %v", ErrQuery, err)
	}

	return h, nil
}

// SelectByChatID returns the live history belonging to the given chat, or
// ErrHistoryNotFound. A chat has at most one live history at a time
// (spec.md §3).
func (r *HistoryRepository) SelectByChatID(chatID string) (*History, error) {
	query := fmt.Sprintf("SELECT id, user_id, chat_id, created_at, deleted_at FROM histories WHERE chat_id = ? AND %s", live)
	row := r.queryRow(query, chatID)

	var h History
	var deletedAt sql.NullTime
	err := row.Scan(&h.ID, &h.UserID, &h.ChatID, &h.CreatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning history: %v", ErrQuery, err)
	}
	if deletedAt.Valid {
		h.DeletedAt = &deletedAt.Time
	}
	return &h, nil
}

// SelectAllByUserID returns every live history owned by userID, oldest
// first.
func (r *HistoryRepository) SelectAllByUserID(userID string) ([]*History, error) {
	query := fmt.Sprintf("SELECT id, user_id, chat_id, created_at, deleted_at FROM histories WHERE user_id = ? AND %s ORDER BY created_at ASC", live)
	rows, err := r.query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: selecting histories for user: %v", ErrQuery, err)
	}
	defer rows.Close()

	var out []*History
	for rows.Next() {
		var h History
		var deletedAt sql.NullTime
		if err := rows.Scan(&h.ID, &h.UserID, &h.ChatID, &h.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning history: %v", ErrQuery, err)
		}
		if deletedAt.Valid {
			h.DeletedAt = &deletedAt.Time
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

// SoftDeleteAllByUserID marks every live history owned by userID as
// deleted (used by History.ClearAllHistory, "c history --clear-all").
func (r *HistoryRepository) SoftDeleteAllByUserID(userID string) error {
	return r.softDelete("user_id = ?", userID)
}

// SoftDeleteByChatID marks the live history for a single chat as deleted
// (used by History.ClearHistory, "c history --clear").
func (r *HistoryRepository) SoftDeleteByChatID(chatID string) error {
	return r.softDelete("chat_id = ?", chatID)
}
