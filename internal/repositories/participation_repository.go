package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"matchday-service/internal/models"
)

var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotJoined     = errors.New("not joined")
	ErrGameFull      = errors.New("game full")
)

// ParticipationRepository manages the (game, user) membership set and
// the denormalized participant counter on the game row.
type ParticipationRepository interface {
	IsJoined(ctx context.Context, gameID int, userID int) (bool, error)
	Join(ctx context.Context, gameID int, userID int) (int, error)
	Leave(ctx context.Context, gameID int, userID int) (int, error)
	ListParticipants(ctx context.Context, gameID int) ([]models.Participation, error)
	ReconcileCounters(ctx context.Context) (int64, error)
}

// ParticipationRepo is a sqlx implementation of ParticipationRepository.
type ParticipationRepo struct {
	db *sqlx.DB
}

// NewParticipationRepo constructs a ParticipationRepo.
func NewParticipationRepo(db *sqlx.DB) *ParticipationRepo {
	return &ParticipationRepo{db: db}
}

// IsJoined checks membership. Zero ids are simply not members.
func (r *ParticipationRepo) IsJoined(ctx context.Context, gameID int, userID int) (bool, error) {
	if gameID == 0 || userID == 0 {
		return false, nil
	}
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM game_participants WHERE game_id=$1 AND user_id=$2)`, gameID, userID)
	return exists, err
}

// Join inserts the participation row and increments the counter in one
// transaction. The game row is locked first so capacity checks and the
// counter stay consistent under concurrent joins; two racing joins end
// with a counter of 2, never 1.
func (r *ParticipationRepo) Join(ctx context.Context, gameID int, userID int) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var game struct {
		Participants int           `db:"participants"`
		MaxPlayers   sql.NullInt64 `db:"max_players"`
		Status       string        `db:"status"`
	}
	err = tx.GetContext(ctx, &game,
		`SELECT participants, max_players, status FROM games WHERE id=$1 FOR UPDATE`, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrGameNotFound
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	if game.Status == models.GameStatusCancelled {
		err = ErrGameCancelled
		return 0, err
	}
	if game.MaxPlayers.Valid && game.Participants >= int(game.MaxPlayers.Int64) {
		err = ErrGameFull
		return 0, err
	}

	var joined bool
	if err = tx.GetContext(ctx, &joined,
		`SELECT EXISTS(SELECT 1 FROM game_participants WHERE game_id=$1 AND user_id=$2)`, gameID, userID); err != nil {
		return 0, err
	}
	if joined {
		err = ErrAlreadyJoined
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO game_participants (game_id, user_id) VALUES ($1, $2)`, gameID, userID); err != nil {
		return 0, err
	}

	var count int
	if err = tx.GetContext(ctx, &count,
		`UPDATE games SET participants = participants + 1 WHERE id=$1 RETURNING participants`, gameID); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// Leave deletes the participation row and decrements the counter,
// mirroring Join.
func (r *ParticipationRepo) Leave(ctx context.Context, gameID int, userID int) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var status string
	err = tx.GetContext(ctx, &status, `SELECT status FROM games WHERE id=$1 FOR UPDATE`, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrGameNotFound
		return 0, err
	}
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM game_participants WHERE game_id=$1 AND user_id=$2`, gameID, userID)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		err = ErrNotJoined
		return 0, err
	}

	var count int
	if err = tx.GetContext(ctx, &count,
		`UPDATE games SET participants = participants - 1 WHERE id=$1 RETURNING participants`, gameID); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// ListParticipants returns participation rows in join order.
func (r *ParticipationRepo) ListParticipants(ctx context.Context, gameID int) ([]models.Participation, error) {
	rows := []models.Participation{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT game_id, user_id, joined_at FROM game_participants WHERE game_id=$1 ORDER BY joined_at ASC`, gameID)
	return rows, err
}

// ReconcileCounters recomputes every game's participant count and
// repairs rows where the stored counter drifted. Returns the number of
// repaired rows.
func (r *ParticipationRepo) ReconcileCounters(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE games g SET participants = sub.actual
        FROM (
            SELECT g2.id, COALESCE(p.n, 0) AS actual
            FROM games g2
            LEFT JOIN (
                SELECT game_id, COUNT(*) AS n FROM game_participants GROUP BY game_id
            ) p ON p.game_id = g2.id
        ) sub
        WHERE sub.id = g.id AND g.participants <> sub.actual`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
