package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"matchday-service/internal/mocks"
	"matchday-service/internal/models"
	"matchday-service/internal/repositories"
	"matchday-service/internal/ws"
)

func setupParticipationRouter(handler *ParticipationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/games/:game_id/participants", handler.List)
	r.POST("/games/:game_id/join", handler.Join)
	r.DELETE("/games/:game_id/join", handler.Leave)
	return r
}

func TestListParticipantsResolvesProfiles(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	playerRepo := new(mocks.PlayerRepositoryMock)
	handler := NewParticipationHandler(participationRepo, playerRepo, ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	joined := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	participationRepo.On("ListParticipants", mock.Anything, 5).
		Return([]models.Participation{{GameID: 5, UserID: 2, JoinedAt: joined}}, nil).Once()
	playerRepo.On("BulkPlayers", mock.Anything, []int{2}).
		Return([]models.Player{{ID: 2, DisplayName: "ayumi"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/5/participants", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Participants []struct {
			UserID int           `json:"user_id"`
			Player models.Player `json:"player"`
		} `json:"participants"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Participants, 1)
	assert.Equal(t, "ayumi", resp.Participants[0].Player.DisplayName)
	participationRepo.AssertExpectations(t)
	playerRepo.AssertExpectations(t)
}

func TestJoinSuccessReturnsCount(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	playerRepo := new(mocks.PlayerRepositoryMock)
	handler := NewParticipationHandler(participationRepo, playerRepo, ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	participationRepo.On("Join", mock.Anything, 5, 1).Return(4, nil).Once()
	playerRepo.On("GetPlayer", mock.Anything, 1).Return(models.Player{ID: 1, DisplayName: "ken"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/games/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 4, resp["participants"])
	participationRepo.AssertExpectations(t)
	playerRepo.AssertExpectations(t)
}

func TestJoinGameFullConflict(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	handler := NewParticipationHandler(participationRepo, new(mocks.PlayerRepositoryMock), ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	participationRepo.On("Join", mock.Anything, 5, 1).Return(0, repositories.ErrGameFull).Once()

	req := httptest.NewRequest(http.MethodPost, "/games/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	participationRepo.AssertExpectations(t)
}

func TestJoinTwiceConflict(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	handler := NewParticipationHandler(participationRepo, new(mocks.PlayerRepositoryMock), ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	participationRepo.On("Join", mock.Anything, 5, 1).Return(0, repositories.ErrAlreadyJoined).Once()

	req := httptest.NewRequest(http.MethodPost, "/games/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	participationRepo.AssertExpectations(t)
}

func TestJoinCancelledGameConflict(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	handler := NewParticipationHandler(participationRepo, new(mocks.PlayerRepositoryMock), ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	participationRepo.On("Join", mock.Anything, 5, 1).Return(0, repositories.ErrGameCancelled).Once()

	req := httptest.NewRequest(http.MethodPost, "/games/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	participationRepo.AssertExpectations(t)
}

func TestLeaveSuccessReturnsCount(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	playerRepo := new(mocks.PlayerRepositoryMock)
	handler := NewParticipationHandler(participationRepo, playerRepo, ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	participationRepo.On("Leave", mock.Anything, 5, 1).Return(2, nil).Once()
	playerRepo.On("GetPlayer", mock.Anything, 1).Return(models.Player{ID: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/games/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp["participants"])
	participationRepo.AssertExpectations(t)
}

func TestLeaveWithoutJoinConflict(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	handler := NewParticipationHandler(participationRepo, new(mocks.PlayerRepositoryMock), ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	participationRepo.On("Leave", mock.Anything, 5, 1).Return(0, repositories.ErrNotJoined).Once()

	req := httptest.NewRequest(http.MethodDelete, "/games/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	participationRepo.AssertExpectations(t)
}

func TestJoinMissingProfileStillSucceeds(t *testing.T) {
	participationRepo := new(mocks.ParticipationRepositoryMock)
	playerRepo := new(mocks.PlayerRepositoryMock)
	handler := NewParticipationHandler(participationRepo, playerRepo, ws.NewHub(zap.NewNop()), nil)
	router := setupParticipationRouter(handler)

	participationRepo.On("Join", mock.Anything, 5, 1).Return(3, nil).Once()
	playerRepo.On("GetPlayer", mock.Anything, 1).Return(models.Player{}, repositories.ErrPlayerNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/games/5/join", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	playerRepo.AssertExpectations(t)
}
