package postgres

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

// Append inserts one history entry; conflicts on ID are ignored.
func (r *HistoryRepository) Append(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO history_entries
(id, user_id, type, feedback, tool_suggestions, ts)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO NOTHING;
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

func (r *HistoryRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Entry, error) {
	const q = `
SELECT id, user_id, type, feedback, tool_suggestions, ts
FROM history_entries
WHERE user_id=$1 ORDER BY ts DESC, id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Entry
	for rows.Next() {
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
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE user_id=$1;`, userID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
