package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"matchday-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for game chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, gameID int, senderID int, content string) (models.ChatMessage, error)
	ListMessages(ctx context.Context, gameID int, limit, offset int) ([]models.ChatMessage, error)
	GetMessage(ctx context.Context, messageID int) (models.ChatMessage, error)
	DeleteMessage(ctx context.Context, messageID int, senderID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message in a game's chat.
func (r *MessageRepo) CreateMessage(ctx context.Context, gameID int, senderID int, content string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO game_messages (game_id, sender_id, content) VALUES ($1, $2, $3) RETURNING id, game_id, sender_id, content, created_at`,
		gameID, senderID, content).
		Scan(&msg.ID, &msg.GameID, &msg.SenderID, &msg.Content, &msg.CreatedAt)
	return msg, err
}

// ListMessages returns a page of messages ordered by creation time
// ascending.
func (r *MessageRepo) ListMessages(ctx context.Context, gameID int, limit, offset int) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, game_id, sender_id, content, created_at FROM game_messages WHERE game_id=$1 ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`,
		gameID, limit, offset)
	return msgs, err
}

// GetMessage fetches a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, game_id, sender_id, content, created_at FROM game_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteMessage removes a message. The delete is scoped by sender so a
// non-sender call affects zero rows.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int, senderID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM game_messages WHERE id=$1 AND sender_id=$2`, messageID, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
