package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// InsertMessage stores a single chat message. The message id comes from
// the sender so its realtime echo can be deduplicated client-side.
func (r *ChatRepository) InsertMessage(ctx context.Context, msg *model.ChatMessage) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (id, team_id, sender_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, msg.ID, msg.TeamID, msg.SenderID, msg.Content).Scan(&msg.CreatedAt)
}

// GetHistory retrieves the most recent messages for a team, returned
// oldest first.
func (r *ChatRepository) GetHistory(ctx context.Context, teamID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	// Select newest N rows DESC, then reverse for chronological order
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.team_id, m.sender_id, u.display_name, m.content, m.created_at
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.team_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2
	`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.TeamID, &m.SenderID, &m.SenderName, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return msgs, nil
}

// DeleteOlderThan removes messages older than the given number of days.
func (r *ChatRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM chat_messages WHERE created_at < NOW() - make_interval(days => $1)
	`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
