package config

import "time"

// WatcherConfig is the root configuration for an eventwatch instance.
type WatcherConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Journal  JournalConfig  `yaml:"journal"`
}

// InstanceConfig identifies this watcher.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// RealtimeConfig holds event-bus connection settings.
type RealtimeConfig struct {
	BaseURL              string        `yaml:"base_url"`
	AutoConnect          *bool         `yaml:"auto_connect"` // nil = true
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	LivenessTimeout      time.Duration `yaml:"liveness_timeout"`
	ReconnectInterval    time.Duration `yaml:"reconnect_interval"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	MessageBufferSize    int           `yaml:"message_buffer_size"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	EventTypes           []string      `yaml:"event_types"` // Empty = built-in default set
}

// ShouldAutoConnect reports whether the session should be opened on
// startup. Defaults to true when unset.
func (c RealtimeConfig) ShouldAutoConnect() bool {
	return c.AutoConnect == nil || *c.AutoConnect
}

// AuthConfig holds the caller identity and token. Both support ${ENV}
// substitution; either may be left empty to fall back to the
// MAKRX_USER_ID / MAKRX_AUTH_TOKEN environment variables.
type AuthConfig struct {
	UserID string `yaml:"user_id"`
	Token  string `yaml:"token"`
}

// DatabaseConfig holds the Postgres connection for the event journal.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// JournalConfig holds event journal settings.
type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}
