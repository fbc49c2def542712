package realtime

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrStaleConnection  = errors.New("connection stale (no pong)")
	ErrConnectionClosed = errors.New("connection closed")
	ErrAlreadyClosed    = errors.New("already closed")
)

// Status is the observable connection state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Wildcard matches every event type in the dispatch table.
const Wildcard = "*"

// Event type names pushed by the MakrX event bus.
const (
	EventOrderCreated    = "order.created"
	EventOrderUpdated    = "order.updated"
	EventOrderCompleted  = "order.completed"
	EventJobCreated      = "service_job.created"
	EventJobUpdated      = "service_job.updated"
	EventJobCompleted    = "service_job.completed"
	EventJobProgress     = "job.progress"
	EventExportCompleted = "export.completed"
	EventExportFailed    = "export.failed"
	EventInventoryAlert  = "inventory.alert"
)

// DefaultEventTypes returns the subscription set applied on a fresh session.
func DefaultEventTypes() []string {
	return []string{
		EventOrderCreated,
		EventOrderUpdated,
		EventOrderCompleted,
		EventJobCreated,
		EventJobUpdated,
		EventJobCompleted,
		EventJobProgress,
		EventExportCompleted,
		EventExportFailed,
		EventInventoryAlert,
	}
}

// Event is the normalized representation handed to handlers.
// Payload stays opaque; consumers decode it at the point of use.
type Event struct {
	ID        string
	Type      string
	Source    string
	Payload   json.RawMessage
	Timestamp time.Time
}

// Handler receives dispatched events. Handlers run on the read loop and
// must not block.
type Handler func(Event)

// TimestampedMessage wraps raw frame data with its receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Frame type tags on the wire.
const (
	frameEvent        = "event"
	framePing         = "ping"
	framePong         = "pong"
	frameSubscribe    = "subscribe"
	frameUnsubscribe  = "unsubscribe"
	frameSubscribed   = "subscription_confirmed"
	frameUnsubscribed = "unsubscription_confirmed"
)

// outboundFrame is a client-to-server JSON text frame.
type outboundFrame struct {
	Type       string   `json:"type"`
	EventTypes []string `json:"event_types,omitempty"`
}

// inboundFrame is the envelope for every server-to-client frame.
type inboundFrame struct {
	Type       string          `json:"type"`
	EventType  string          `json:"event_type,omitempty"`
	EventID    string          `json:"event_id,omitempty"`
	Source     string          `json:"source,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
	EventTypes []string        `json:"event_types,omitempty"`
}

// ClientConfig configures a WebSocket transport client.
type ClientConfig struct {
	URL              string        // Full endpoint including identity and token
	HandshakeTimeout time.Duration // Dial handshake deadline
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Inbound message channel buffer size
}

// ManagerConfig configures the connection manager.
type ManagerConfig struct {
	BaseURL              string        // Event bus base URL (e.g. wss://events.makrx.org)
	HeartbeatInterval    time.Duration // Period between outbound pings
	LivenessTimeout      time.Duration // Max wait for a pong after a ping
	ReconnectInterval    time.Duration // Fixed delay between reconnect attempts
	MaxReconnectAttempts int           // Consecutive failures before StatusError
	MessageBufferSize    int           // Inbound channel buffer size
	WriteTimeout         time.Duration // Write deadline for sends
	EventTypes           []string      // Initial subscription set (nil = DefaultEventTypes)
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		HeartbeatInterval:    30 * time.Second,
		LivenessTimeout:      10 * time.Second,
		ReconnectInterval:    5 * time.Second,
		MaxReconnectAttempts: 5,
		MessageBufferSize:    1000,
		WriteTimeout:         5 * time.Second,
	}
}

// Stats contains runtime counters for the manager.
type Stats struct {
	EventsReceived  int64
	ParseErrors     int64
	Reconnects      int64
	DroppedMessages int64
}
