package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

func wsEventPayload(gameID int, event string, info ConnInfo, duration time.Duration, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "game",
			"resource_id": gameID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": duration.Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
