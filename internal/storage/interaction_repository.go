package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InteractionRepository implements the Interaction surface from spec.md
// §4.B: `insert` is the only write spec.md names, since interactions are
// append-only. SelectByHistoryID is a supplemental read, grounded on the
// join query original_source/daemon/http/session.py performs against
// InteractionModel when answering GetHistory/GetFirstConversation/
// GetLastConversation/GetFilteredConversation — that code reads
// `history.interactions` through the SQLAlchemy relationship, which this
// package models as an explicit query instead of an ORM-owned backref
// (spec.md §9's guidance against modeling the reverse pointer as an
// owning relationship).
type InteractionRepository struct {
	baseRepository
}

// NewInteractionRepository builds an InteractionRepository bound to the
// engine's pool.
func NewInteractionRepository(e *Engine) *InteractionRepository {
	return &InteractionRepository{baseRepository: newBaseRepository(e, "interactions")}
}

// Insert appends a question/response pair to a history. Interactions are
// never updated after insertion.
func (r *InteractionRepository) Insert(historyID, question, response string) (*Interaction, error) {
	i := &Interaction{
		ID:        uuid.NewString(),
		HistoryID: historyID,
		Question:  question,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}

	const query = `INSERT INTO interactions (id, history_id, question, response, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.exec(query, i.ID, i.HistoryID, i.Question, i.Response, i.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: inserting interaction: %v", ErrQuery, err)
	}

	return i, nil
}

// SelectByHistoryID returns every live interaction under historyID,
// oldest first.
func (r *InteractionRepository) SelectByHistoryID(historyID string) ([]*Interaction, error) {
	query := fmt.Sprintf("SELECT id, history_id, question, response, created_at, deleted_at FROM interactions WHERE history_id = ? AND %s ORDER BY created_at ASC", live)
	rows, err := r.query(query, historyID)
	if err != nil {
		return nil, fmt.Errorf("%w: selecting interactions for history: %v", ErrQuery, err)
	}
	defer rows.Close()

	var out []*Interaction
	for rows.Next() {
		var i Interaction
		var deletedAt sql.NullTime
		if err := rows.Scan(&i.ID, &i.HistoryID, &i.Question, &i.Response, &i.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning interaction: %v", ErrQuery, err)
		}
		if deletedAt.Valid {
			i.DeletedAt = &deletedAt.Time
		}
		out = append(out, &i)
	}
	return out, rows.Err()
}
