package ws

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"matchday-service/internal/middleware"
	"matchday-service/internal/models"
	"matchday-service/internal/observability"
	"matchday-service/internal/repositories"
)

// GameWebSocketHandler streams chat and participant events for a game.
type GameWebSocketHandler struct {
	hub               *Hub
	gameRepo          repositories.GameRepository
	participationRepo repositories.ParticipationRepository
	jwtSecret         []byte
}

// NewGameWebSocketHandler constructs a GameWebSocketHandler.
func NewGameWebSocketHandler(hub *Hub, gameRepo repositories.GameRepository, participationRepo repositories.ParticipationRepository, jwtSecret []byte) *GameWebSocketHandler {
	return &GameWebSocketHandler{
		hub:               hub,
		gameRepo:          gameRepo,
		participationRepo: participationRepo,
		jwtSecret:         jwtSecret,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authorizes the viewer like a game detail read, upgrades the
// connection, and registers it in the game's room until the peer
// closes.
func (h *GameWebSocketHandler) Handle(c *gin.Context) {
	gameID, err := strconv.Atoi(c.Param("game_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	ctx, span := otel.Tracer("matchday-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	}
	token = strings.TrimPrefix(token, "Bearer ")

	userID, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	game, err := h.gameRepo.GetGame(ctx, gameID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	authorized, err := h.canView(c, game, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}
	if !authorized {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for game"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddGameClient(gameID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(gameID, "ws_connect", info, 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	// Keep the connection alive and tear down the room registration on
	// every exit path.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveGameClient(gameID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload(gameID, "ws_disconnect", info, time.Since(info.ConnectedAt), closeReason),
			}, observability.BuildHeaders(requestID, traceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   wsEventPayload(gameID, "ws_error", info, time.Since(info.ConnectedAt), closeReason),
					}, observability.BuildHeaders(requestID, traceID))
				}
				return
			}
		}
	}()
}

func (h *GameWebSocketHandler) canView(c *gin.Context, game models.Game, userID int) (bool, error) {
	if game.OrganizerID == userID {
		return true, nil
	}
	if !game.Passcode.Valid || game.Passcode.String == "" {
		return true, nil
	}
	return h.participationRepo.IsJoined(c.Request.Context(), game.ID, userID)
}
