package models

import (
	"database/sql"
	"time"
)

// Game lifecycle states.
const (
	GameStatusScheduled = "scheduled"
	GameStatusCancelled = "cancelled"
)

// LevelAny is the reserved level tier meaning "anyone may join".
// It is also the search sentinel for "no level filter"; 0 is never a
// distinct searchable tier.
const LevelAny = 0

// Game is a full game record. The passcode never leaves the service.
type Game struct {
	ID           int            `db:"id" json:"id"`
	OrganizerID  int            `db:"organizer_id" json:"organizer_id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Location     string         `db:"location" json:"location"`
	MatchDate    time.Time      `db:"match_date" json:"match_date"`
	Kickoff      string         `db:"kickoff" json:"kickoff"`
	Level        int            `db:"level" json:"level"`
	Passcode     sql.NullString `db:"passcode" json:"-"`
	Participants int            `db:"participants" json:"participants"`
	MaxPlayers   sql.NullInt64  `db:"max_players" json:"max_players,omitempty"`
	MinPlayers   sql.NullInt64  `db:"min_players" json:"min_players,omitempty"`
	Rules        string         `db:"rules" json:"rules,omitempty"`
	Status       string         `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// GameHeader is the list/search projection of a game.
type GameHeader struct {
	ID           int       `db:"id" json:"id"`
	OrganizerID  int       `db:"organizer_id" json:"organizer_id"`
	Title        string    `db:"title" json:"title"`
	Location     string    `db:"location" json:"location"`
	MatchDate    time.Time `db:"match_date" json:"match_date"`
	Kickoff      string    `db:"kickoff" json:"kickoff"`
	Level        int       `db:"level" json:"level"`
	Participants int       `db:"participants" json:"participants"`
	Status       string    `db:"status" json:"status"`
}

// GameMeta is the restricted projection shown before a viewer is
// authorized. It reveals whether a passcode gate exists, never the
// passcode itself.
type GameMeta struct {
	ID               int    `db:"id" json:"id"`
	OrganizerID      int    `db:"organizer_id" json:"organizer_id"`
	Title            string `db:"title" json:"title"`
	Description      string `db:"description" json:"description"`
	PasscodeRequired bool   `db:"passcode_required" json:"passcode_required"`
}

// GameSearchFilter holds the composable search predicates. Title and
// Location are case-insensitive substring matches (empty matches all);
// Level equal to LevelAny disables the level predicate; TimeFrom is a
// zero-padded HH:MM lower bound and may be empty.
type GameSearchFilter struct {
	Title    string
	Level    int
	DateFrom time.Time
	Location string
	TimeFrom string
}

// GameInput carries organizer-supplied fields for create and update.
type GameInput struct {
	Title       string
	Description string
	Location    string
	MatchDate   time.Time
	Kickoff     string
	Level       int
	Passcode    string
	MaxPlayers  int
	MinPlayers  int
	Rules       string
}
