package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// heartbeat proves liveness of an open connection. On a fixed period it
// sends an application-level ping and arms a shorter deadline timer;
// a pong disarms the deadline, a deadline expiry reports the connection
// dead. It runs only between start() and stop(), and stop() releases
// every timer it armed.
type heartbeat struct {
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	sendPing func() error
	onDead   func()

	mu       sync.Mutex
	period   *time.Timer
	deadline *time.Timer
	stopped  bool
}

func newHeartbeat(interval, timeout time.Duration, logger *slog.Logger, sendPing func() error, onDead func()) *heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	return &heartbeat{
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		sendPing: sendPing,
		onDead:   onDead,
	}
}

// start arms the first ping cycle.
func (h *heartbeat) start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.period != nil {
		return
	}
	h.period = time.AfterFunc(h.interval, h.beat)
}

// beat sends one ping, arms the liveness deadline, and schedules the
// next cycle.
func (h *heartbeat) beat() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	if h.deadline == nil {
		h.deadline = time.AfterFunc(h.timeout, h.expire)
	}
	h.period = time.AfterFunc(h.interval, h.beat)
	h.mu.Unlock()

	if err := h.sendPing(); err != nil {
		h.logger.Debug("failed to send ping", "error", err)
	}
}

// pong disarms the pending liveness deadline.
func (h *heartbeat) pong() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deadline != nil {
		h.deadline.Stop()
		h.deadline = nil
	}
}

// expire fires when no pong arrived within the liveness timeout.
func (h *heartbeat) expire() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.deadline = nil
	h.mu.Unlock()

	h.logger.Warn("no pong within liveness timeout", "timeout", h.timeout)
	h.onDead()
}

// stop releases all timers. No callbacks fire after stop returns.
func (h *heartbeat) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	if h.period != nil {
		h.period.Stop()
		h.period = nil
	}
	if h.deadline != nil {
		h.deadline.Stop()
		h.deadline = nil
	}
}
