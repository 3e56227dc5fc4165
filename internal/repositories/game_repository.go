package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"matchday-service/internal/models"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrPasscodeMismatch = errors.New("passcode mismatch")
	ErrGameCancelled    = errors.New("game cancelled")
)

const gameColumns = `id, organizer_id, title, description, location, match_date, kickoff, level, passcode, participants, max_players, min_players, rules, status, created_at`

const gameHeaderColumns = `id, organizer_id, title, location, match_date, kickoff, level, participants, status`

// GameRepository abstracts game directory persistence.
type GameRepository interface {
	ListGamesInWindow(ctx context.Context, start, end time.Time) ([]models.GameHeader, error)
	SearchGames(ctx context.Context, filter models.GameSearchFilter) ([]models.GameHeader, error)
	GetGameMeta(ctx context.Context, gameID int) (models.GameMeta, error)
	GetGame(ctx context.Context, gameID int) (models.Game, error)
	GetGameWithPasscode(ctx context.Context, gameID int, passcode string) (models.Game, error)
	CreateGame(ctx context.Context, organizerID int, input models.GameInput) (models.Game, error)
	UpdateGame(ctx context.Context, gameID int, input models.GameInput) (models.Game, error)
	CancelGame(ctx context.Context, gameID int) error
}

// GameRepo is a sqlx implementation of GameRepository.
type GameRepo struct {
	db *sqlx.DB
}

// NewGameRepo constructs a GameRepo.
func NewGameRepo(db *sqlx.DB) *GameRepo {
	return &GameRepo{db: db}
}

// ListGamesInWindow returns games with match_date in [start, end),
// ordered by date then kickoff ascending.
func (r *GameRepo) ListGamesInWindow(ctx context.Context, start, end time.Time) ([]models.GameHeader, error) {
	games := []models.GameHeader{}
	err := r.db.SelectContext(ctx, &games,
		`SELECT `+gameHeaderColumns+` FROM games WHERE match_date >= $1 AND match_date < $2 ORDER BY match_date ASC, kickoff ASC`,
		start, end)
	return games, err
}

// SearchGames applies the composable directory filters. Level equal to
// models.LevelAny disables the level predicate.
func (r *GameRepo) SearchGames(ctx context.Context, filter models.GameSearchFilter) ([]models.GameHeader, error) {
	query := `SELECT ` + gameHeaderColumns + ` FROM games WHERE title ILIKE '%' || $1 || '%' AND match_date >= $2`
	args := []interface{}{filter.Title, filter.DateFrom}

	if filter.Level != models.LevelAny {
		args = append(args, filter.Level)
		query += fmt.Sprintf(` AND level = $%d`, len(args))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		query += fmt.Sprintf(` AND location ILIKE '%%' || $%d || '%%'`, len(args))
	}
	if filter.TimeFrom != "" {
		args = append(args, filter.TimeFrom)
		query += fmt.Sprintf(` AND kickoff >= $%d`, len(args))
	}
	query += ` ORDER BY match_date ASC, kickoff ASC`

	games := []models.GameHeader{}
	err := r.db.SelectContext(ctx, &games, query, args...)
	return games, err
}

// GetGameMeta returns the restricted projection used before a viewer is
// authorized: only whether a passcode is required, never its value.
func (r *GameRepo) GetGameMeta(ctx context.Context, gameID int) (models.GameMeta, error) {
	var meta models.GameMeta
	err := r.db.GetContext(ctx, &meta,
		`SELECT id, organizer_id, title, description, (passcode IS NOT NULL AND passcode <> '') AS passcode_required FROM games WHERE id=$1`,
		gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GameMeta{}, ErrGameNotFound
	}
	return meta, err
}

// GetGame fetches a full game record. Authorization is the caller's
// responsibility.
func (r *GameRepo) GetGame(ctx context.Context, gameID int) (models.Game, error) {
	var game models.Game
	err := r.db.GetContext(ctx, &game, `SELECT `+gameColumns+` FROM games WHERE id=$1`, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Game{}, ErrGameNotFound
	}
	return game, err
}

// GetGameWithPasscode returns the full record only when the supplied
// passcode matches; a mismatch leaks no detail.
func (r *GameRepo) GetGameWithPasscode(ctx context.Context, gameID int, passcode string) (models.Game, error) {
	game, err := r.GetGame(ctx, gameID)
	if err != nil {
		return models.Game{}, err
	}
	if game.Passcode.Valid && game.Passcode.String != "" && game.Passcode.String != passcode {
		return models.Game{}, ErrPasscodeMismatch
	}
	return game, nil
}

// CreateGame creates the game and the organizer's participation row in
// one transaction; the counter starts at 1.
func (r *GameRepo) CreateGame(ctx context.Context, organizerID int, input models.GameInput) (models.Game, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Game{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var game models.Game
	if err = tx.GetContext(ctx, &game,
		`INSERT INTO games (organizer_id, title, description, location, match_date, kickoff, level, passcode, participants, max_players, min_players, rules)
         VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), 1, NULLIF($9, 0), NULLIF($10, 0), $11)
         RETURNING `+gameColumns,
		organizerID, input.Title, input.Description, input.Location, input.MatchDate, input.Kickoff,
		input.Level, input.Passcode, input.MaxPlayers, input.MinPlayers, input.Rules); err != nil {
		return models.Game{}, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO game_participants (game_id, user_id) VALUES ($1, $2)`, game.ID, organizerID); err != nil {
		return models.Game{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Game{}, err
	}
	return game, nil
}

// UpdateGame overwrites the editable fields. Last writer wins; there is
// no version check.
func (r *GameRepo) UpdateGame(ctx context.Context, gameID int, input models.GameInput) (models.Game, error) {
	var game models.Game
	err := r.db.GetContext(ctx, &game,
		`UPDATE games SET title=$2, description=$3, location=$4, match_date=$5, kickoff=$6, level=$7, passcode=NULLIF($8, ''), max_players=NULLIF($9, 0), min_players=NULLIF($10, 0), rules=$11
         WHERE id=$1 RETURNING `+gameColumns,
		gameID, input.Title, input.Description, input.Location, input.MatchDate, input.Kickoff,
		input.Level, input.Passcode, input.MaxPlayers, input.MinPlayers, input.Rules)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Game{}, ErrGameNotFound
	}
	return game, err
}

// CancelGame flips the status to cancelled. Participation rows are kept
// and joined users are not notified; clients observe on re-read.
func (r *GameRepo) CancelGame(ctx context.Context, gameID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE games SET status=$2 WHERE id=$1`, gameID, models.GameStatusCancelled)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrGameNotFound
	}
	return nil
}
