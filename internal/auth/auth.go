// Package auth provides the session credentials consumed by the
// realtime connection manager. Token issuance itself happens elsewhere;
// this package only carries the caller identity and bearer token to the
// endpoint builder.
package auth

import (
	"errors"
	"os"
)

// ErrMissingCredentials is returned when identity or token is absent.
var ErrMissingCredentials = errors.New("identity and token are required")

// Environment variables read by FromEnv.
const (
	EnvUserID = "MAKRX_USER_ID"
	EnvToken  = "MAKRX_AUTH_TOKEN"
)

// Credentials identify the caller for the realtime endpoint.
type Credentials struct {
	Identity string // User or service id, becomes the /ws/<identity> path segment
	Token    string // Bearer token, appended as ?token=<token>
}

// Valid reports whether both fields are present.
func (c Credentials) Valid() bool {
	return c.Identity != "" && c.Token != ""
}

// Source provides the current session credentials. The connection
// manager re-reads the source on every connect attempt so rotated
// tokens are picked up on reconnect.
type Source interface {
	Credentials() (Credentials, error)
}

// StaticSource returns fixed credentials.
type StaticSource struct {
	creds Credentials
}

// NewStaticSource creates a source with fixed identity and token.
func NewStaticSource(identity, token string) *StaticSource {
	return &StaticSource{creds: Credentials{Identity: identity, Token: token}}
}

// Credentials implements Source.
func (s *StaticSource) Credentials() (Credentials, error) {
	if !s.creds.Valid() {
		return Credentials{}, ErrMissingCredentials
	}
	return s.creds, nil
}

// FromEnv builds a StaticSource from MAKRX_USER_ID and MAKRX_AUTH_TOKEN.
func FromEnv() *StaticSource {
	return NewStaticSource(os.Getenv(EnvUserID), os.Getenv(EnvToken))
}
