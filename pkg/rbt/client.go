package rbt

import (
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// SessionStore saves the session cookie of a successful login so a later
// client can reuse it through Config.SessionID.
type SessionStore interface {
	UpdateSession(serverURL, sessionID string) error
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{}) {}
func (nopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building a root resource.
//
// # Authentication
//
// Review Board accepts either an API token, sent as "Authorization: token
// <APIToken>", or a cookie session obtained by logging in with Username and
// Password. When both are set the token is sent and the login is skipped.
// A SessionID from an earlier login is reused without logging in again.
//
// # Timeouts and retries
//
// Per-call deadlines are controlled through the context passed to
// Resource.Call. Timeout caps every HTTP exchange. Retries are off unless
// RetryMax is positive; the materialization pipeline itself never retries.
type Config struct {
	// BaseURL: address of the Review Board server, e.g.
	// "https://reviews.example.com". A missing scheme is resolved by
	// rbtclient.New (https first, then http).
	BaseURL string

	// APIToken: Review Board API token.
	APIToken string
	// Username and Password: credentials for the cookie session login.
	Username string
	Password string
	// SessionID: a session cookie saved by an earlier login.
	SessionID string
	// SessionStore: receives the session of every successful login.
	SessionStore SessionStore

	// ContentTypes: entries added to (or replacing) the built-in registry.
	ContentTypes map[string]string
	// LinkSearch: nested link discovery policy.
	LinkSearch LinkSearch
	// Collision: sanitization collision policy.
	Collision CollisionPolicy

	// Timeout: per-exchange HTTP timeout. Zero uses the default.
	Timeout time.Duration
	// RetryMax: retries for connection errors, 429 and 5xx. Zero disables.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug: logs every HTTP request and response when a Logger is set.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Headers: sent with every request.
	Headers map[string]string

	// RequestInterceptors and ResponseInterceptors run around every exchange.
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
}

// Options returns the resource options described by the config.
func (c *Config) Options() []Option {
	registry := DefaultContentTypes()
	if len(c.ContentTypes) > 0 {
		registry = registry.With(c.ContentTypes)
	}

	return []Option{
		WithContentTypes(registry),
		WithLinkSearch(c.LinkSearch),
		WithCollisionPolicy(c.Collision),
		WithLogger(c.Logger),
	}
}
