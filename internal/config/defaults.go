package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL              = "wss://events.makrx.org"
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultLivenessTimeout      = 10 * time.Second
	DefaultReconnectInterval    = 5 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultMessageBufferSize    = 1000
	DefaultWriteTimeout         = 5 * time.Second
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultBatchSize            = 100
	DefaultFlushInterval        = 1 * time.Second
)

func (c *WatcherConfig) applyDefaults() {
	// Realtime defaults
	if c.Realtime.BaseURL == "" {
		c.Realtime.BaseURL = DefaultBaseURL
	}
	if c.Realtime.HeartbeatInterval == 0 {
		c.Realtime.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Realtime.LivenessTimeout == 0 {
		c.Realtime.LivenessTimeout = DefaultLivenessTimeout
	}
	if c.Realtime.ReconnectInterval == 0 {
		c.Realtime.ReconnectInterval = DefaultReconnectInterval
	}
	if c.Realtime.MaxReconnectAttempts == 0 {
		c.Realtime.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.Realtime.MessageBufferSize == 0 {
		c.Realtime.MessageBufferSize = DefaultMessageBufferSize
	}
	if c.Realtime.WriteTimeout == 0 {
		c.Realtime.WriteTimeout = DefaultWriteTimeout
	}

	// Database defaults (only meaningful when the journal is enabled)
	applyDBDefaults(&c.Database.Postgres)

	// Journal defaults
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultFlushInterval
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
