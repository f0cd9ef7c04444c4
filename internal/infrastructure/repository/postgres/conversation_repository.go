package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docmentor/docmentor/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// EnsureConversation creates the session row on first use and bumps
// its updated_at on every later call.
func (r *ConversationRepository) EnsureConversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
INSERT INTO conversations (session_id, created_at, updated_at)
VALUES ($1, $2, $2)
ON CONFLICT (session_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
RETURNING session_id, created_at, updated_at
`, sessionID, now)

	var conv domain.Conversation
	if err := row.Scan(&conv.SessionID, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, message domain.ConversationMessage) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversation_messages (id, session_id, role, content, created_at)
VALUES ($1,$2,$3,$4,$5)
`, message.ID, message.SessionID, string(message.Role), message.Content, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListRecentMessages returns the last limit messages of a session in
// chronological order.
func (r *ConversationRepository) ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ConversationMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, role, content, created_at
FROM (
	SELECT id, session_id, role, content, created_at
	FROM conversation_messages
	WHERE session_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2
) recent
ORDER BY created_at ASC, id ASC
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ConversationMessage
	for rows.Next() {
		var msg domain.ConversationMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = domain.MessageRole(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
