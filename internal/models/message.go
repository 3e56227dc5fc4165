package models

import "time"

// ChatMessage represents a message in a game's chat.
type ChatMessage struct {
	ID        int       `db:"id" json:"id"`
	GameID    int       `db:"game_id" json:"game_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GameEvent is broadcast over a game's websocket room.
type GameEvent struct {
	Type      string       `json:"type"`
	Message   *ChatMessage `json:"message,omitempty"`
	MessageID int          `json:"message_id,omitempty"`
	Player    *Player      `json:"player,omitempty"`
}
