package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"matchday-service/internal/mocks"
	"matchday-service/internal/models"
	"matchday-service/internal/repositories"
)

func setupGameRouter(handler *GameHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/games/today", handler.ListToday)
	r.GET("/games/week", handler.ListWeek)
	r.GET("/games/search", handler.Search)
	r.POST("/games", handler.Organize)
	r.GET("/games/:game_id/meta", handler.GetMeta)
	r.GET("/games/:game_id", handler.GetDetail)
	r.POST("/games/:game_id/passcode", handler.UnlockDetail)
	r.PUT("/games/:game_id", handler.Update)
	r.DELETE("/games/:game_id", handler.Cancel)
	return r
}

func TestListTodaySuccess(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("ListGamesInWindow", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.GameHeader{{ID: 3, Title: "friday five-a-side"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/today", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.GameHeader
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["games"], 1)
	assert.Equal(t, "friday five-a-side", resp["games"][0].Title)
	gameRepo.AssertExpectations(t)
}

func TestListWeekRepoError(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("ListGamesInWindow", mock.Anything, mock.Anything, mock.Anything).
		Return(([]models.GameHeader)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/week", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	gameRepo.AssertExpectations(t)
}

func TestSearchPassesFilter(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("SearchGames", mock.Anything, mock.MatchedBy(func(f models.GameSearchFilter) bool {
		return f.Title == "futsal" && f.Level == 2 && f.Location == "riverside" && f.TimeFrom == "18:00"
	})).Return([]models.GameHeader{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/search?title=futsal&level=2&location=riverside&date_from=2026-09-07&time_from=18:00", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	gameRepo.AssertExpectations(t)
}

func TestSearchZeroPadsTimeFrom(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	// Kickoffs are compared lexically, so "9:30" must become "09:30"
	// or every game from 10:00 onward would be excluded.
	gameRepo.On("SearchGames", mock.Anything, mock.MatchedBy(func(f models.GameSearchFilter) bool {
		return f.TimeFrom == "09:30"
	})).Return([]models.GameHeader{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/search?time_from=9:30", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	gameRepo.AssertExpectations(t)
}

func TestSearchInvalidLevel(t *testing.T) {
	handler := NewGameHandler(new(mocks.GameRepositoryMock), new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/games/search?level=pro", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchInvalidTimeFrom(t *testing.T) {
	handler := NewGameHandler(new(mocks.GameRepositoryMock), new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/games/search?time_from=6pm", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMetaExposesGateNotPasscode(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGameMeta", mock.Anything, 5).
		Return(models.GameMeta{ID: 5, Title: "locked game", PasscodeRequired: true}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/5/meta", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["passcode_required"])
	assert.NotContains(t, resp, "passcode")
	gameRepo.AssertExpectations(t)
}

func TestGetMetaNotFound(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGameMeta", mock.Anything, 42).
		Return(models.GameMeta{}, repositories.ErrGameNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/42/meta", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	gameRepo.AssertExpectations(t)
}

func TestGetDetailOpenGame(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGame", mock.Anything, 5).
		Return(models.Game{ID: 5, OrganizerID: 9, Title: "open game"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	gameRepo.AssertExpectations(t)
}

func TestGetDetailGatedForbidden(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	participationRepo := new(mocks.ParticipationRepositoryMock)
	handler := NewGameHandler(gameRepo, participationRepo, nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGame", mock.Anything, 5).
		Return(models.Game{ID: 5, OrganizerID: 9, Passcode: sql.NullString{String: "boot", Valid: true}}, nil).Once()
	participationRepo.On("IsJoined", mock.Anything, 5, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	gameRepo.AssertExpectations(t)
	participationRepo.AssertExpectations(t)
}

func TestGetDetailGatedJoinedViewer(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	participationRepo := new(mocks.ParticipationRepositoryMock)
	handler := NewGameHandler(gameRepo, participationRepo, nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGame", mock.Anything, 5).
		Return(models.Game{ID: 5, OrganizerID: 9, Passcode: sql.NullString{String: "boot", Valid: true}}, nil).Once()
	participationRepo.On("IsJoined", mock.Anything, 5, 1).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/games/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	participationRepo.AssertExpectations(t)
}

func TestUnlockDetailWrongThenRightPasscode(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGameWithPasscode", mock.Anything, 5, "wrong").
		Return(models.Game{}, repositories.ErrPasscodeMismatch).Once()
	gameRepo.On("GetGameWithPasscode", mock.Anything, 5, "boot").
		Return(models.Game{ID: 5, Title: "locked game"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/games/5/passcode", bytes.NewBufferString(`{"passcode":"wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/games/5/passcode", bytes.NewBufferString(`{"passcode":"boot"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Game
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "locked game", resp.Title)
	gameRepo.AssertExpectations(t)
}

func TestOrganizeSuccess(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("CreateGame", mock.Anything, 1, mock.MatchedBy(func(in models.GameInput) bool {
		return in.Title == "sunday kickabout" && in.Kickoff == "09:30" && in.MaxPlayers == 10
	})).Return(models.Game{ID: 8, OrganizerID: 1, Participants: 1}, nil).Once()

	body := bytes.NewBufferString(`{"title":"sunday kickabout","match_date":"2026-09-06","kickoff":"9:30","max_players":10}`)
	req := httptest.NewRequest(http.MethodPost, "/games", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.Game
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Participants)
	gameRepo.AssertExpectations(t)
}

func TestOrganizeRejectsMinAboveMax(t *testing.T) {
	handler := NewGameHandler(new(mocks.GameRepositoryMock), new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	body := bytes.NewBufferString(`{"title":"g","match_date":"2026-09-06","kickoff":"18:00","min_players":8,"max_players":4}`)
	req := httptest.NewRequest(http.MethodPost, "/games", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateNonOrganizerForbidden(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGame", mock.Anything, 5).
		Return(models.Game{ID: 5, OrganizerID: 9}, nil).Once()

	body := bytes.NewBufferString(`{"title":"hijack","match_date":"2026-09-06","kickoff":"18:00"}`)
	req := httptest.NewRequest(http.MethodPut, "/games/5", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	gameRepo.AssertExpectations(t)
}

func TestCancelByOrganizer(t *testing.T) {
	gameRepo := new(mocks.GameRepositoryMock)
	handler := NewGameHandler(gameRepo, new(mocks.ParticipationRepositoryMock), nil)
	router := setupGameRouter(handler)

	gameRepo.On("GetGame", mock.Anything, 5).
		Return(models.Game{ID: 5, OrganizerID: 1}, nil).Once()
	gameRepo.On("CancelGame", mock.Anything, 5).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/games/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	gameRepo.AssertExpectations(t)
}
