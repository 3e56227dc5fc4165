package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"matchday-service/internal/models"
	"matchday-service/internal/repositories"
)

type GameRepositoryMock struct {
	mock.Mock
}

func (m *GameRepositoryMock) ListGamesInWindow(ctx context.Context, start, end time.Time) ([]models.GameHeader, error) {
	args := m.Called(ctx, start, end)
	var games []models.GameHeader
	if val := args.Get(0); val != nil {
		games = val.([]models.GameHeader)
	}
	return games, args.Error(1)
}

func (m *GameRepositoryMock) SearchGames(ctx context.Context, filter models.GameSearchFilter) ([]models.GameHeader, error) {
	args := m.Called(ctx, filter)
	var games []models.GameHeader
	if val := args.Get(0); val != nil {
		games = val.([]models.GameHeader)
	}
	return games, args.Error(1)
}

func (m *GameRepositoryMock) GetGameMeta(ctx context.Context, gameID int) (models.GameMeta, error) {
	args := m.Called(ctx, gameID)
	var meta models.GameMeta
	if val := args.Get(0); val != nil {
		meta = val.(models.GameMeta)
	}
	return meta, args.Error(1)
}

func (m *GameRepositoryMock) GetGame(ctx context.Context, gameID int) (models.Game, error) {
	args := m.Called(ctx, gameID)
	var game models.Game
	if val := args.Get(0); val != nil {
		game = val.(models.Game)
	}
	return game, args.Error(1)
}

func (m *GameRepositoryMock) GetGameWithPasscode(ctx context.Context, gameID int, passcode string) (models.Game, error) {
	args := m.Called(ctx, gameID, passcode)
	var game models.Game
	if val := args.Get(0); val != nil {
		game = val.(models.Game)
	}
	return game, args.Error(1)
}

func (m *GameRepositoryMock) CreateGame(ctx context.Context, organizerID int, input models.GameInput) (models.Game, error) {
	args := m.Called(ctx, organizerID, input)
	var game models.Game
	if val := args.Get(0); val != nil {
		game = val.(models.Game)
	}
	return game, args.Error(1)
}

func (m *GameRepositoryMock) UpdateGame(ctx context.Context, gameID int, input models.GameInput) (models.Game, error) {
	args := m.Called(ctx, gameID, input)
	var game models.Game
	if val := args.Get(0); val != nil {
		game = val.(models.Game)
	}
	return game, args.Error(1)
}

func (m *GameRepositoryMock) CancelGame(ctx context.Context, gameID int) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

type ParticipationRepositoryMock struct {
	mock.Mock
}

func (m *ParticipationRepositoryMock) IsJoined(ctx context.Context, gameID int, userID int) (bool, error) {
	args := m.Called(ctx, gameID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ParticipationRepositoryMock) Join(ctx context.Context, gameID int, userID int) (int, error) {
	args := m.Called(ctx, gameID, userID)
	return args.Int(0), args.Error(1)
}

func (m *ParticipationRepositoryMock) Leave(ctx context.Context, gameID int, userID int) (int, error) {
	args := m.Called(ctx, gameID, userID)
	return args.Int(0), args.Error(1)
}

func (m *ParticipationRepositoryMock) ListParticipants(ctx context.Context, gameID int) ([]models.Participation, error) {
	args := m.Called(ctx, gameID)
	var rows []models.Participation
	if val := args.Get(0); val != nil {
		rows = val.([]models.Participation)
	}
	return rows, args.Error(1)
}

func (m *ParticipationRepositoryMock) ReconcileCounters(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, gameID int, senderID int, content string) (models.ChatMessage, error) {
	args := m.Called(ctx, gameID, senderID, content)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, gameID int, limit, offset int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, gameID, limit, offset)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.ChatMessage, error) {
	args := m.Called(ctx, messageID)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int, senderID int) error {
	args := m.Called(ctx, messageID, senderID)
	return args.Error(0)
}

type PlayerRepositoryMock struct {
	mock.Mock
}

func (m *PlayerRepositoryMock) GetPlayer(ctx context.Context, playerID int) (models.Player, error) {
	args := m.Called(ctx, playerID)
	var player models.Player
	if val := args.Get(0); val != nil {
		player = val.(models.Player)
	}
	return player, args.Error(1)
}

func (m *PlayerRepositoryMock) BulkPlayers(ctx context.Context, ids []int) ([]models.Player, error) {
	args := m.Called(ctx, ids)
	var players []models.Player
	if val := args.Get(0); val != nil {
		players = val.([]models.Player)
	}
	return players, args.Error(1)
}

var _ repositories.GameRepository = (*GameRepositoryMock)(nil)
var _ repositories.ParticipationRepository = (*ParticipationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.PlayerRepository = (*PlayerRepositoryMock)(nil)
