package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"matchday-service/internal/models"
	"matchday-service/internal/repositories"
	"matchday-service/internal/telemetry"
	"matchday-service/internal/ws"
)

// ParticipationHandler manages join / cancel-RSVP endpoints.
type ParticipationHandler struct {
	participationRepo repositories.ParticipationRepository
	playerRepo        repositories.PlayerRepository
	hub               *ws.Hub
	audit             *telemetry.AuditEmitter
}

// NewParticipationHandler constructs a ParticipationHandler.
func NewParticipationHandler(participationRepo repositories.ParticipationRepository, playerRepo repositories.PlayerRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ParticipationHandler {
	return &ParticipationHandler{
		participationRepo: participationRepo,
		playerRepo:        playerRepo,
		hub:               hub,
		audit:             audit,
	}
}

// List handles GET /games/:game_id/participants with resolved
// profiles, in join order.
func (h *ParticipationHandler) List(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}

	rows, err := h.participationRepo.ListParticipants(c.Request.Context(), gameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}

	players, err := h.playerRepo.BulkPlayers(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	playerByID := map[int]models.Player{}
	for _, p := range players {
		playerByID[p.ID] = p
	}

	type participantResponse struct {
		UserID   int           `json:"user_id"`
		JoinedAt time.Time     `json:"joined_at"`
		Player   models.Player `json:"player"`
	}

	resp := make([]participantResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, participantResponse{
			UserID:   row.UserID,
			JoinedAt: row.JoinedAt,
			Player:   playerByID[row.UserID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"participants": resp})
}

// Join handles POST /games/:game_id/join. Capacity and duplicate
// checks happen in the repository transaction, so the UI-level button
// state is advisory only.
func (h *ParticipationHandler) Join(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	count, err := h.participationRepo.Join(c.Request.Context(), gameID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		case errors.Is(err, repositories.ErrGameCancelled):
			c.JSON(http.StatusConflict, gin.H{"error": "game is cancelled"})
		case errors.Is(err, repositories.ErrGameFull):
			h.emitAudit(c, "WARN", "Join rejected, game full")
			c.JSON(http.StatusConflict, gin.H{"error": "game is full"})
		case errors.Is(err, repositories.ErrAlreadyJoined):
			c.JSON(http.StatusConflict, gin.H{"error": "already joined"})
		default:
			h.emitAudit(c, "ERROR", "internal error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join game"})
		}
		return
	}

	h.hub.BroadcastParticipantJoined(gameID, h.resolvePlayer(c, userID))
	h.emitAudit(c, "INFO", "Joined game")
	c.JSON(http.StatusOK, gin.H{"participants": count})
}

// Leave handles DELETE /games/:game_id/join.
func (h *ParticipationHandler) Leave(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	count, err := h.participationRepo.Leave(c.Request.Context(), gameID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		case errors.Is(err, repositories.ErrNotJoined):
			c.JSON(http.StatusConflict, gin.H{"error": "not joined"})
		default:
			h.emitAudit(c, "ERROR", "internal error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel rsvp"})
		}
		return
	}

	h.hub.BroadcastParticipantLeft(gameID, h.resolvePlayer(c, userID))
	h.emitAudit(c, "INFO", "Cancelled RSVP")
	c.JSON(http.StatusOK, gin.H{"participants": count})
}

// resolvePlayer loads the profile for a broadcast; a missing profile
// row degrades to a bare id rather than failing the mutation.
func (h *ParticipationHandler) resolvePlayer(c *gin.Context, userID int) models.Player {
	player, err := h.playerRepo.GetPlayer(c.Request.Context(), userID)
	if err != nil {
		return models.Player{ID: userID}
	}
	return player
}

func (h *ParticipationHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
