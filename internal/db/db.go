package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
            id INT PRIMARY KEY,
            display_name TEXT NOT NULL,
            thumbnail_url TEXT NOT NULL DEFAULT '',
            position TEXT NOT NULL DEFAULT '',
            private BOOLEAN NOT NULL DEFAULT FALSE
        );`,
		`CREATE TABLE IF NOT EXISTS games (
            id SERIAL PRIMARY KEY,
            organizer_id INT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            location TEXT NOT NULL DEFAULT '',
            match_date DATE NOT NULL,
            kickoff VARCHAR(5) NOT NULL,
            level INT NOT NULL DEFAULT 0,
            passcode TEXT,
            participants INT NOT NULL DEFAULT 0,
            max_players INT,
            min_players INT,
            rules TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'scheduled',
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_games_match_date ON games (match_date, kickoff);`,
		`CREATE TABLE IF NOT EXISTS game_participants (
            game_id INT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
            user_id INT NOT NULL,
            joined_at TIMESTAMPTZ DEFAULT NOW(),
            PRIMARY KEY(game_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS game_messages (
            id SERIAL PRIMARY KEY,
            game_id INT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
            sender_id INT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_game_messages_game ON game_messages (game_id, created_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
