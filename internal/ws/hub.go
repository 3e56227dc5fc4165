package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"matchday-service/internal/models"
	"matchday-service/internal/observability"
)

// Event types mirrored to subscribed game viewers.
const (
	EventMessage           = "message"
	EventMessageDeleted    = "message_deleted"
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
)

const wsRoutingKey = "ws_events.games"

// gameClient pairs a connection's identity with its write lock.
// gorilla/websocket does not support concurrent writers on one
// connection, and two HTTP mutations on the same game can broadcast at
// the same time.
type gameClient struct {
	info    ConnInfo
	writeMu sync.Mutex
}

// Hub maintains the active websocket room per game.
type Hub struct {
	gameRooms map[int]map[*websocket.Conn]*gameClient
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		gameRooms: make(map[int]map[*websocket.Conn]*gameClient),
		logger:    logger,
	}
}

// AddGameClient registers a websocket connection to a game room.
func (h *Hub) AddGameClient(gameID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.gameRooms[gameID]; !ok {
		h.gameRooms[gameID] = make(map[*websocket.Conn]*gameClient)
	}
	h.gameRooms[gameID][conn] = &gameClient{info: info}
}

// RemoveGameClient removes a game websocket connection. Removing an
// absent connection is a no-op, so teardown is idempotent.
func (h *Hub) RemoveGameClient(gameID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.gameRooms[gameID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.gameRooms, gameID)
		}
	}
}

// BroadcastMessage sends a new chat message to all viewers of a game.
func (h *Hub) BroadcastMessage(gameID int, msg models.ChatMessage) {
	h.broadcast(gameID, models.GameEvent{Type: EventMessage, Message: &msg})
}

// BroadcastMessageDeleted notifies viewers that a message was removed.
func (h *Hub) BroadcastMessageDeleted(gameID int, messageID int) {
	h.broadcast(gameID, models.GameEvent{Type: EventMessageDeleted, MessageID: messageID})
}

// BroadcastParticipantJoined mirrors a join into every viewer's
// participant list.
func (h *Hub) BroadcastParticipantJoined(gameID int, player models.Player) {
	h.broadcast(gameID, models.GameEvent{Type: EventParticipantJoined, Player: &player})
}

// BroadcastParticipantLeft mirrors an RSVP cancellation.
func (h *Hub) BroadcastParticipantLeft(gameID int, player models.Player) {
	h.broadcast(gameID, models.GameEvent{Type: EventParticipantLeft, Player: &player})
}

func (h *Hub) broadcast(gameID int, event models.GameEvent) {
	h.mu.RLock()
	clients := make(map[*websocket.Conn]*gameClient, len(h.gameRooms[gameID]))
	for conn, client := range h.gameRooms[gameID] {
		clients[conn] = client
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn, client := range clients {
		client.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, payload)
		client.writeMu.Unlock()
		if err != nil {
			h.logger.Warn("websocket write error", zap.Int("game_id", gameID), zap.Error(err))
			conn.Close()
			h.RemoveGameClient(gameID, conn)
			h.publishWSError(gameID, client.info, err)
		}
	}
}

func (h *Hub) publishWSError(gameID int, info ConnInfo, err error) {
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(gameID, "ws_error", info, time.Since(info.ConnectedAt), err.Error()),
	}, headers)
	observability.IncWSEvent("ws_error")
}
