package database

import (
	"fmt"
	"net/url"

	"github.com/makrx/realtime/internal/config"
)

// appName tags journal connections in pg_stat_activity.
const appName = "eventwatch"

// BuildConnString builds a PostgreSQL connection string for the journal
// pool. Passwords are URL-encoded to survive special characters.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	opts := url.Values{}
	opts.Set("sslmode", sslMode)
	opts.Set("application_name", appName)

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		opts.Encode(),
	)
}
