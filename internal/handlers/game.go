package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"matchday-service/internal/models"
	"matchday-service/internal/repositories"
	"matchday-service/internal/schedule"
	"matchday-service/internal/telemetry"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// GameHandler manages the game directory endpoints.
type GameHandler struct {
	gameRepo          repositories.GameRepository
	participationRepo repositories.ParticipationRepository
	audit             *telemetry.AuditEmitter
}

// NewGameHandler constructs a GameHandler.
func NewGameHandler(gameRepo repositories.GameRepository, participationRepo repositories.ParticipationRepository, audit *telemetry.AuditEmitter) *GameHandler {
	return &GameHandler{
		gameRepo:          gameRepo,
		participationRepo: participationRepo,
		audit:             audit,
	}
}

// ListToday handles GET /games/today.
func (h *GameHandler) ListToday(c *gin.Context) {
	start, end := schedule.DayWindow(time.Now())
	h.listWindow(c, start, end)
}

// ListWeek handles GET /games/week (Monday through Sunday of the
// current week).
func (h *GameHandler) ListWeek(c *gin.Context) {
	start, end := schedule.WeekWindow(time.Now())
	h.listWindow(c, start, end)
}

func (h *GameHandler) listWindow(c *gin.Context, start, end time.Time) {
	games, err := h.gameRepo.ListGamesInWindow(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Search handles GET /games/search. An empty title matches all titles
// and a missing or zero level means any level.
func (h *GameHandler) Search(c *gin.Context) {
	filter := models.GameSearchFilter{
		Title:    c.Query("title"),
		Location: c.Query("location"),
	}

	if v := c.Query("level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil || level < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level"})
			return
		}
		filter.Level = level
	}

	filter.DateFrom, _ = schedule.DayWindow(time.Now())
	if v := c.Query("date_from"); v != "" {
		dateFrom, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
			return
		}
		filter.DateFrom = dateFrom
	}

	if v := c.Query("time_from"); v != "" {
		timeFrom, err := time.Parse(timeLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time_from"})
			return
		}
		// Stored kickoffs are zero-padded and compared lexically, so the
		// bound must be zero-padded too.
		filter.TimeFrom = fmt.Sprintf("%02d:%02d", timeFrom.Hour(), timeFrom.Minute())
	}

	games, err := h.gameRepo.SearchGames(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// GetMeta handles GET /games/:game_id/meta, the gated placeholder
// projection.
func (h *GameHandler) GetMeta(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	meta, err := h.gameRepo.GetGameMeta(c.Request.Context(), gameID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGameNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// GetDetail handles GET /games/:game_id. The viewer must be the
// organizer, already joined, or the game must have no passcode.
func (h *GameHandler) GetDetail(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	game, err := h.gameRepo.GetGame(c.Request.Context(), gameID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGameNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "game not found"})
		return
	}

	authorized, err := viewerAuthorized(c.Request.Context(), h.participationRepo, game, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !authorized {
		c.JSON(http.StatusForbidden, gin.H{"error": "passcode required"})
		return
	}

	c.JSON(http.StatusOK, game)
}

// UnlockDetail handles POST /games/:game_id/passcode. A wrong passcode
// yields a mismatch failure with no detail leaked.
func (h *GameHandler) UnlockDetail(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	var req struct {
		Passcode string `json:"passcode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameRepo.GetGameWithPasscode(c.Request.Context(), gameID, req.Passcode)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		case errors.Is(err, repositories.ErrPasscodeMismatch):
			h.emitAudit(c, "WARN", "Passcode mismatch")
			c.JSON(http.StatusForbidden, gin.H{"error": "passcode mismatch"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		}
		return
	}

	c.JSON(http.StatusOK, game)
}

// Organize handles POST /games: creates the game with the organizer as
// its first participant.
func (h *GameHandler) Organize(c *gin.Context) {
	userID := c.GetInt("userID")

	input, ok := bindGameInput(c)
	if !ok {
		return
	}

	game, err := h.gameRepo.CreateGame(c.Request.Context(), userID, input)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create game"})
		return
	}

	h.emitAudit(c, "INFO", "Game organized")
	c.JSON(http.StatusCreated, game)
}

// Update handles PUT /games/:game_id. Full overwrite, organizer only,
// last writer wins.
func (h *GameHandler) Update(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	game, err := h.gameRepo.GetGame(c.Request.Context(), gameID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGameNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "game not found"})
		return
	}
	if game.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the organizer may edit"})
		return
	}

	input, ok := bindGameInput(c)
	if !ok {
		return
	}

	updated, err := h.gameRepo.UpdateGame(c.Request.Context(), gameID, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update game"})
		return
	}

	h.emitAudit(c, "INFO", "Game updated")
	c.JSON(http.StatusOK, updated)
}

// Cancel handles DELETE /games/:game_id: a status flip, never a hard
// delete.
func (h *GameHandler) Cancel(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	game, err := h.gameRepo.GetGame(c.Request.Context(), gameID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGameNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "game not found"})
		return
	}
	if game.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the organizer may cancel"})
		return
	}

	if err := h.gameRepo.CancelGame(c.Request.Context(), gameID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel game"})
		return
	}

	h.emitAudit(c, "INFO", "Game cancelled")
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func bindGameInput(c *gin.Context) (models.GameInput, bool) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Location    string `json:"location"`
		MatchDate   string `json:"match_date" binding:"required"`
		Kickoff     string `json:"kickoff" binding:"required"`
		Level       int    `json:"level"`
		Passcode    string `json:"passcode"`
		MaxPlayers  int    `json:"max_players"`
		MinPlayers  int    `json:"min_players"`
		Rules       string `json:"rules"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.GameInput{}, false
	}

	matchDate, err := time.ParseInLocation(dateLayout, req.MatchDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match_date"})
		return models.GameInput{}, false
	}
	kickoff, err := time.Parse(timeLayout, req.Kickoff)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kickoff"})
		return models.GameInput{}, false
	}
	if req.Level < 0 || req.MaxPlayers < 0 || req.MinPlayers < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field"})
		return models.GameInput{}, false
	}
	if req.MaxPlayers > 0 && req.MinPlayers > req.MaxPlayers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_players exceeds max_players"})
		return models.GameInput{}, false
	}

	return models.GameInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		MatchDate:   matchDate,
		Kickoff:     fmt.Sprintf("%02d:%02d", kickoff.Hour(), kickoff.Minute()),
		Level:       req.Level,
		Passcode:    req.Passcode,
		MaxPlayers:  req.MaxPlayers,
		MinPlayers:  req.MinPlayers,
		Rules:       req.Rules,
	}, true
}

func parseGameID(c *gin.Context) (int, bool) {
	gameID, err := strconv.Atoi(c.Param("game_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return 0, false
	}
	return gameID, true
}

// viewerAuthorized applies the gating rule: the organizer, a joined
// player, or anyone when no passcode is set.
func viewerAuthorized(ctx context.Context, participationRepo repositories.ParticipationRepository, game models.Game, userID int) (bool, error) {
	if game.OrganizerID == userID {
		return true, nil
	}
	if !game.Passcode.Valid || game.Passcode.String == "" {
		return true, nil
	}
	return participationRepo.IsJoined(ctx, game.ID, userID)
}
