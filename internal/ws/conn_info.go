package ws

import "time"

// ConnInfo identifies one subscribed game viewer for event payloads
// and teardown logging.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
