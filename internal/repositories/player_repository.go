package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"matchday-service/internal/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository reads the profile projection maintained by the
// profile service.
type PlayerRepository interface {
	GetPlayer(ctx context.Context, playerID int) (models.Player, error)
	BulkPlayers(ctx context.Context, ids []int) ([]models.Player, error)
}

// PlayerRepo is a sqlx implementation of PlayerRepository.
type PlayerRepo struct {
	db *sqlx.DB
}

// NewPlayerRepo constructs a PlayerRepo.
func NewPlayerRepo(db *sqlx.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// GetPlayer fetches one profile.
func (r *PlayerRepo) GetPlayer(ctx context.Context, playerID int) (models.Player, error) {
	var player models.Player
	err := r.db.GetContext(ctx, &player,
		`SELECT id, display_name, thumbnail_url, position, private FROM players WHERE id=$1`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, ErrPlayerNotFound
	}
	return player, err
}

// BulkPlayers fetches multiple profiles in one query. Missing ids are
// simply absent from the result.
func (r *PlayerRepo) BulkPlayers(ctx context.Context, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, display_name, thumbnail_url, position, private FROM players WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	players := []models.Player{}
	err = r.db.SelectContext(ctx, &players, query, args...)
	return players, err
}
