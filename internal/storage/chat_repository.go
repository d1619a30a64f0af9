package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrChatNotFound is returned when a select targets a chat that doesn't
// exist or has been soft-deleted.
var ErrChatNotFound = errors.New("storage: chat not found")

// ChatRepository implements the Chat CRUD surface from spec.md §4.B,
// generalizing original_source/daemon/database/repository/chat.py's
// ChatRepository (itself a thin specialization of BaseRepository).
type ChatRepository struct {
	baseRepository
}

// NewChatRepository builds a ChatRepository bound to the engine's pool.
func NewChatRepository(e *Engine) *ChatRepository {
	return &ChatRepository{baseRepository: newBaseRepository(e, "chats")}
}

// Insert creates a new chat, generating its ID and timestamps.
func (r *ChatRepository) Insert(userID, name, description string) (*Chat, error) {
	if r.dialect == DialectMySQL {
		// The MySQL schema has no partial unique index on live names.
		if _, err := r.SelectByName(userID, name); err == nil {
			return nil, fmt.Errorf("%w: inserting chat: a live chat named %q already exists", ErrQuery, name)
		} else if !errors.Is(err, ErrChatNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	chat := &Chat{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const query = `INSERT INTO chats (id, user_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.exec(query, chat.ID, chat.UserID, chat.Name, chat.Description, chat.CreatedAt, chat.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: inserting chat: %v", ErrQuery, err)
	}

	return chat, nil
}

// SelectByID returns the live chat with the given id, or ErrChatNotFound.
func (r *ChatRepository) SelectByID(id string) (*Chat, error) {
	query := fmt.Sprintf("SELECT id, user_id, name, description, created_at, updated_at, deleted_at FROM chats WHERE id = ? AND %s", live)
	return r.scanOne(r.queryRow(query, id))
}

// SelectByName returns the live chat owned by userID with the given name,
// or ErrChatNotFound. Chat names are unique per user among live chats
// (spec.md §3), so this never matches more than one row.
func (r *ChatRepository) SelectByName(userID, name string) (*Chat, error) {
	query := fmt.Sprintf("SELECT id, user_id, name, description, created_at, updated_at, deleted_at FROM chats WHERE user_id = ? AND name = ? AND %s", live)
	return r.scanOne(r.queryRow(query, userID, name))
}

// SelectAllByUserID returns every live chat owned by userID, oldest first.
func (r *ChatRepository) SelectAllByUserID(userID string) ([]*Chat, error) {
	query := fmt.Sprintf("SELECT id, user_id, name, description, created_at, updated_at, deleted_at FROM chats WHERE user_id = ? AND %s ORDER BY created_at ASC", live)
	rows, err := r.query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: selecting chats for user: %v", ErrQuery, err)
	}
	defer rows.Close()

	var chats []*Chat
	for rows.Next() {
		chat, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// SelectLatestChat returns the oldest live chat owned by userID.
//
// This mirrors original_source/daemon/database/repository/chat.py's
// select_latest_chat literally: despite the name, it orders ascending by
// created_at and takes the first row, i.e. the user's *first* chat, not
// their most recent one. Kept as-is (see DESIGN.md Open Question
// decisions); its only caller is the daemon's Chat.GetLatestChatFromUser.
func (r *ChatRepository) SelectLatestChat(userID string) (*Chat, error) {
	query := fmt.Sprintf("SELECT id, user_id, name, description, created_at, updated_at, deleted_at FROM chats WHERE user_id = ? AND %s ORDER BY created_at ASC LIMIT 1", live)
	return r.scanOne(r.queryRow(query, userID))
}

// SoftDelete marks the chat as deleted without removing its row.
func (r *ChatRepository) SoftDelete(id string) error {
	return r.softDelete("id = ?", id)
}

// SoftDeleteAllByUserID marks every live chat for userID as deleted.
func (r *ChatRepository) SoftDeleteAllByUserID(userID string) error {
	return r.softDelete("user_id = ?", userID)
}

func (r *ChatRepository) scanOne(row *sql.Row) (*Chat, error) {
	var c Chat
	var deletedAt sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning chat: %v", ErrQuery, err)
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return &c, nil
}

func (r *ChatRepository) scanRow(rows *sql.Rows) (*Chat, error) {
	var c Chat
	var deletedAt sql.NullTime
	if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &deletedAt); err != nil {
		return nil, fmt.Errorf("%w: scanning chat: %v", ErrQuery, err)
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return &c, nil
}
