package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domain "github.com/voiceunleashed/fluency/internal/domain/history"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts one history entry. Re-inserting the same ID is a
// no-op, so a retried request never duplicates a record.
func (r *HistoryRepository) Append(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO history_entries
(id, user_id, type, feedback, tool_suggestions, ts)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE id=id;
`
	tools, err := json.Marshal(e.ToolSuggestions)
	if err != nil {
		return fmt.Errorf("encode tool suggestions: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		e.ID, e.UserID, e.Type, e.Feedback, tools, e.Timestamp,
	)
	return err
}

// ListForUser returns entries newest first; ID breaks timestamp ties
// so the order is stable.
func (r *HistoryRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Entry, error) {
	const q = `
SELECT id, user_id, type, feedback, tool_suggestions, ts
FROM history_entries
WHERE user_id=? ORDER BY ts DESC, id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteAllForUser removes every entry the user owns in one
// transaction.
func (r *HistoryRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE user_id=?;`, userID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanEntry(rows *sql.Rows) (*domain.Entry, error) {
	var e domain.Entry
	var tools []byte
	if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Feedback, &tools, &e.Timestamp); err != nil {
		return nil, err
	}
	if len(tools) > 0 {
		if err := json.Unmarshal(tools, &e.ToolSuggestions); err != nil {
			return nil, fmt.Errorf("decode tool suggestions for %s: %w", e.ID, err)
		}
	}
	return &e, nil
}
