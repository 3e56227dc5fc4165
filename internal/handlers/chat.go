package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"matchday-service/internal/models"
	"matchday-service/internal/repositories"
	"matchday-service/internal/telemetry"
	"matchday-service/internal/ws"
)

const (
	maxMessageLength   = 2000
	defaultMessagePage = 50
	maxMessagePage     = 200
)

// ChatHandler manages a game's chat endpoints.
type ChatHandler struct {
	gameRepo          repositories.GameRepository
	participationRepo repositories.ParticipationRepository
	messageRepo       repositories.MessageRepository
	playerRepo        repositories.PlayerRepository
	hub               *ws.Hub
	audit             *telemetry.AuditEmitter
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(gameRepo repositories.GameRepository, participationRepo repositories.ParticipationRepository, messageRepo repositories.MessageRepository, playerRepo repositories.PlayerRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		gameRepo:          gameRepo,
		participationRepo: participationRepo,
		messageRepo:       messageRepo,
		playerRepo:        playerRepo,
		hub:               hub,
		audit:             audit,
	}
}

// ListMessages handles GET /games/:game_id/messages, ascending by
// creation time, paginated by limit/offset.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	gameID, _, ok := h.authorizeViewer(c)
	if !ok {
		return
	}

	limit := defaultMessagePage
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed > maxMessagePage {
			parsed = maxMessagePage
		}
		limit = parsed
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		offset = parsed
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), gameID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	players, err := h.playerRepo.BulkPlayers(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
		return
	}
	nameByID := map[int]string{}
	for _, p := range players {
		nameByID[p.ID] = p.DisplayName
	}

	type messageResponse struct {
		models.ChatMessage
		SenderName string `json:"sender_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{ChatMessage: m, SenderName: nameByID[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostMessage handles POST /games/:game_id/messages: persists and
// broadcasts.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	gameID, userID, ok := h.authorizeViewer(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		return
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message too long"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), gameID, userID, content)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.hub.BroadcastMessage(gameID, msg)
	h.emitAudit(c, "INFO", "Message sent")
	c.JSON(http.StatusCreated, msg)
}

// DeleteMessage handles DELETE /games/:game_id/messages/:message_id.
// Only the sender may delete; the check is enforced here, not in the
// UI.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	gameID, userID, ok := h.authorizeViewer(c)
	if !ok {
		return
	}

	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.GameID != gameID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to game"})
		return
	}
	if msg.SenderID != userID {
		h.emitAudit(c, "ERROR", "not allowed to delete message")
		c.JSON(http.StatusForbidden, gin.H{"error": "only sender may delete"})
		return
	}

	if err := h.messageRepo.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.hub.BroadcastMessageDeleted(gameID, messageID)
	h.emitAudit(c, "INFO", "Message deleted")
	c.Status(http.StatusNoContent)
}

// authorizeViewer loads the game and applies the same gating rule as
// game detail. Returns ok=false after writing the error response.
func (h *ChatHandler) authorizeViewer(c *gin.Context) (int, int, bool) {
	gameID, ok := parseGameID(c)
	if !ok {
		return 0, 0, false
	}
	userID := c.GetInt("userID")

	game, err := h.gameRepo.GetGame(c.Request.Context(), gameID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGameNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "game not found"})
		return 0, 0, false
	}

	authorized, err := viewerAuthorized(c.Request.Context(), h.participationRepo, game, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return 0, 0, false
	}
	if !authorized {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for game"})
		return 0, 0, false
	}
	return gameID, userID, true
}

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
