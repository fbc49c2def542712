package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makrx/realtime/internal/auth"
)

// Manager owns the single event-bus session for a process: the
// transport lifecycle, heartbeat, subscription replay, and handler
// dispatch. Multiple consumers share one Manager instead of opening
// duplicate connections.
//
// State machine: disconnected -> connecting -> connected, with a fixed
// reconnect interval bounded by MaxReconnectAttempts. Exhausting the
// budget yields StatusError, which only an explicit Connect leaves.
// Nothing here returns an error across the public surface; failures
// become logged side effects or the observable Status.
type Manager struct {
	cfg    ManagerConfig
	creds  auth.Source
	logger *slog.Logger

	dispatch *DispatchTable
	subs     *SubscriptionSet

	mu        sync.Mutex
	status    Status
	client    Client
	hb        *heartbeat
	attempts  int
	retry     *time.Timer
	session   uint64 // bumped on every connect/teardown; stale callbacks no-op
	lastEvent *Event
	stats     Stats
}

// NewManager creates a manager with the initial subscription set
// applied. It does not connect; call Connect once credentials exist.
func NewManager(cfg ManagerConfig, creds auth.Source, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultManagerConfig()
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	if cfg.LivenessTimeout == 0 {
		cfg.LivenessTimeout = def.LivenessTimeout
	}
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = def.ReconnectInterval
	}
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
	if cfg.MessageBufferSize == 0 {
		cfg.MessageBufferSize = def.MessageBufferSize
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.EventTypes == nil {
		cfg.EventTypes = DefaultEventTypes()
	}

	return &Manager{
		cfg:      cfg,
		creds:    creds,
		logger:   logger,
		dispatch: NewDispatchTable(logger),
		subs:     NewSubscriptionSet(cfg.EventTypes...),
		status:   StatusDisconnected,
	}
}

// Connect opens the event-bus session. Idempotent: a no-op while
// connecting or connected. Without credentials it logs and stays
// disconnected. An explicit call resets the retry budget, so it is also
// the way out of StatusError.
func (m *Manager) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.status {
	case StatusConnecting, StatusConnected:
		return
	}

	m.attempts = 0
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	m.startConnectLocked()
}

// Disconnect tears the session down: cancels pending retry and
// heartbeat timers, closes the transport, resets the retry counter.
// Always leaves status disconnected; no further callbacks fire. Must be
// called on logout or shutdown.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.session++
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	if m.hb != nil {
		m.hb.stop()
		m.hb = nil
	}
	c := m.client
	m.client = nil
	if c != nil {
		m.stats.DroppedMessages += c.Dropped()
	}
	m.attempts = 0
	m.status = StatusDisconnected
	m.mu.Unlock()

	if c != nil {
		c.Close()
	}
	m.logger.Info("realtime disconnected")
}

// Subscribe adds event types to the subscription set. While connected,
// an incremental subscribe frame is sent for the newly added types only.
func (m *Manager) Subscribe(types ...string) {
	added := m.subs.Add(types...)
	if len(added) == 0 {
		return
	}

	m.mu.Lock()
	c := m.client
	connected := m.status == StatusConnected
	m.mu.Unlock()

	if !connected {
		return
	}
	if err := sendFrame(c, outboundFrame{Type: frameSubscribe, EventTypes: added}); err != nil {
		m.logger.Warn("subscribe send failed", "event_types", added, "error", err)
	}
}

// Unsubscribe removes event types from the subscription set. While
// connected, an incremental unsubscribe frame is sent for the types
// actually removed.
func (m *Manager) Unsubscribe(types ...string) {
	removed := m.subs.Remove(types...)
	if len(removed) == 0 {
		return
	}

	m.mu.Lock()
	c := m.client
	connected := m.status == StatusConnected
	m.mu.Unlock()

	if !connected {
		return
	}
	if err := sendFrame(c, outboundFrame{Type: frameUnsubscribe, EventTypes: removed}); err != nil {
		m.logger.Warn("unsubscribe send failed", "event_types", removed, "error", err)
	}
}

// On registers a handler for an event type (or Wildcard) and returns
// its unregister function.
func (m *Manager) On(eventType string, fn Handler) func() {
	return m.dispatch.Add(eventType, fn)
}

// Status returns the observable connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// IsConnected reports whether the session is currently connected.
func (m *Manager) IsConnected() bool {
	return m.Status() == StatusConnected
}

// LastEvent returns the most recently received event, if any.
func (m *Manager) LastEvent() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastEvent == nil {
		return Event{}, false
	}
	return *m.lastEvent, true
}

// Subscriptions returns the current subscription set membership.
func (m *Manager) Subscriptions() []string {
	return m.subs.All()
}

// Stats returns current counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	if m.client != nil {
		s.DroppedMessages += m.client.Dropped()
	}
	return s
}

// startConnectLocked transitions to connecting and opens the transport
// asynchronously. Caller holds m.mu.
func (m *Manager) startConnectLocked() {
	creds, err := m.creds.Credentials()
	if err != nil || !creds.Valid() {
		m.logger.Warn("realtime connect skipped: credentials unavailable")
		m.status = StatusDisconnected
		return
	}

	endpoint, err := m.endpoint(creds)
	if err != nil {
		m.logger.Error("invalid realtime endpoint", "base_url", m.cfg.BaseURL, "error", err)
		m.status = StatusError
		return
	}

	m.status = StatusConnecting
	m.session++
	go m.open(m.session, endpoint)
}

// endpoint builds <base>/ws/<identity>?token=<token>.
func (m *Manager) endpoint(creds auth.Credentials) (string, error) {
	u, err := url.Parse(m.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("ws", creds.Identity)
	q := u.Query()
	q.Set("token", creds.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// open dials the endpoint and, on success, installs the session:
// replays the full subscription set, starts the heartbeat, and begins
// reading.
func (m *Manager) open(session uint64, endpoint string) {
	c := NewClient(ClientConfig{
		URL:          endpoint,
		WriteTimeout: m.cfg.WriteTimeout,
		BufferSize:   m.cfg.MessageBufferSize,
	}, m.logger)

	if err := c.Connect(context.Background()); err != nil {
		m.logger.Warn("realtime connect failed", "error", err)
		m.handleDisconnect(session, err)
		return
	}

	m.mu.Lock()
	if session != m.session || m.status != StatusConnecting {
		m.mu.Unlock()
		c.Close()
		return
	}
	m.client = c
	m.status = StatusConnected
	m.attempts = 0
	hb := newHeartbeat(
		m.cfg.HeartbeatInterval,
		m.cfg.LivenessTimeout,
		m.logger,
		func() error { return sendFrame(c, outboundFrame{Type: framePing}) },
		func() { m.handleDisconnect(session, ErrStaleConnection) },
	)
	m.hb = hb
	types := m.subs.All()
	m.mu.Unlock()

	m.logger.Info("realtime connected", "subscriptions", len(types))

	// Always exactly one replay frame, even for an empty set.
	if err := sendFrame(c, outboundFrame{Type: frameSubscribe, EventTypes: types}); err != nil {
		m.logger.Warn("subscription replay failed", "error", err)
	}

	hb.start()
	go m.readLoop(session, c, hb)
}

// readLoop consumes frames from the transport until the session ends.
func (m *Manager) readLoop(session uint64, c Client, hb *heartbeat) {
	for {
		select {
		case <-c.Done():
			m.handleDisconnect(session, ErrConnectionClosed)
			return
		case err := <-c.Errors():
			m.handleDisconnect(session, err)
			return
		case msg := <-c.Messages():
			m.handleMessage(c, hb, msg)
		}
	}
}

// handleMessage parses and routes a single inbound frame. Control
// frames are consumed here; event frames go to the dispatch table.
// Malformed frames are logged and dropped without touching the
// connection.
func (m *Manager) handleMessage(c Client, hb *heartbeat, msg TimestampedMessage) {
	var frame inboundFrame
	if err := json.Unmarshal(msg.Data, &frame); err != nil {
		m.logger.Warn("malformed realtime frame", "error", err)
		m.mu.Lock()
		m.stats.ParseErrors++
		m.mu.Unlock()
		return
	}

	switch frame.Type {
	case framePing:
		// The bus probes us too; answer immediately
		if err := sendFrame(c, outboundFrame{Type: framePong}); err != nil {
			m.logger.Debug("pong send failed", "error", err)
		}

	case framePong:
		hb.pong()

	case frameSubscribed, frameUnsubscribed:
		m.logger.Debug("subscription acknowledged", "type", frame.Type, "event_types", frame.EventTypes)

	case frameEvent:
		evt := normalizeEvent(frame, msg.ReceivedAt)
		m.mu.Lock()
		m.lastEvent = &evt
		m.stats.EventsReceived++
		m.mu.Unlock()
		m.dispatch.Dispatch(evt)

	default:
		m.logger.Debug("unhandled frame type", "type", frame.Type)
	}
}

// handleDisconnect tears down the current session and either schedules
// a reconnect or, with the retry budget spent, enters StatusError.
// Stale sessions are ignored.
func (m *Manager) handleDisconnect(session uint64, cause error) {
	m.mu.Lock()
	if session != m.session {
		m.mu.Unlock()
		return
	}
	m.session++
	if m.hb != nil {
		m.hb.stop()
		m.hb = nil
	}
	c := m.client
	m.client = nil
	if c != nil {
		m.stats.DroppedMessages += c.Dropped()
	}

	if m.attempts < m.cfg.MaxReconnectAttempts {
		m.attempts++
		attempt := m.attempts
		m.status = StatusDisconnected
		scheduled := m.session
		m.retry = time.AfterFunc(m.cfg.ReconnectInterval, func() {
			m.retryConnect(scheduled)
		})
		m.stats.Reconnects++
		m.mu.Unlock()

		if c != nil {
			c.Close()
		}
		m.logger.Warn("realtime connection lost, reconnecting",
			"error", cause,
			"attempt", attempt,
			"max_attempts", m.cfg.MaxReconnectAttempts,
			"interval", m.cfg.ReconnectInterval,
		)
		return
	}

	m.status = StatusError
	m.mu.Unlock()

	if c != nil {
		c.Close()
	}
	m.logger.Error("realtime reconnect budget exhausted",
		"error", cause,
		"attempts", m.cfg.MaxReconnectAttempts,
	)
}

// retryConnect fires when the reconnect timer elapses. The timer may
// fire before a concurrent Disconnect calls Stop() and still reach
// here, so the timer itself is not proof the schedule is live: the
// session captured at scheduling time must still be current and the
// retry handle must not have been cancelled.
func (m *Manager) retryConnect(scheduled uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retry == nil || scheduled != m.session {
		return
	}
	m.retry = nil
	if m.status != StatusDisconnected {
		return
	}
	m.startConnectLocked()
}

// normalizeEvent converts an event frame to the internal representation.
// A missing event id gets a generated one; a missing or unparseable
// timestamp falls back to the local receive time.
func normalizeEvent(frame inboundFrame, receivedAt time.Time) Event {
	id := frame.EventID
	if id == "" {
		id = uuid.NewString()
	}

	ts := receivedAt
	if frame.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, frame.Timestamp); err == nil {
			ts = parsed
		}
	}

	return Event{
		ID:        id,
		Type:      frame.EventType,
		Source:    frame.Source,
		Payload:   frame.Payload,
		Timestamp: ts,
	}
}

// sendFrame marshals and writes a single outbound frame.
func sendFrame(c Client, f outboundFrame) error {
	if c == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return c.Send(data)
}
