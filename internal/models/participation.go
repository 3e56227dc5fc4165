package models

import "time"

// Participation records that a user has joined a game.
type Participation struct {
	GameID   int       `db:"game_id" json:"game_id"`
	UserID   int       `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
