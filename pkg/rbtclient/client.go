package rbtclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/rbt/internal/auth"
	"github.com/fivetwenty-io/rbt/internal/constants"
	rbthttp "github.com/fivetwenty-io/rbt/internal/http"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
)

// Client bundles the HTTP session, the API root and the metrics gathered
// while navigating.
type Client struct {
	config   *rbt.Config
	baseURL  string
	session  *rbthttp.Client
	root     *rbt.Resource
	metrics  *rbt.MetricsCollector
	sessions *auth.SessionManager
}

// New creates a Review Board client. A BaseURL without scheme is probed over
// https first and falls back to http. When Username and Password are set and
// no APIToken is, the session is logged in before New returns.
func New(ctx context.Context, config *rbt.Config) (*Client, error) {
	if config == nil {
		return nil, rbt.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, rbt.ErrBaseURLRequired
	}

	baseURL, err := CanonicalURL(ctx, config.BaseURL)
	if err != nil {
		return nil, err
	}

	metrics := rbt.NewMetricsCollector()
	session := rbthttp.NewClient(baseURL, httpOptions(config, metrics)...)

	if config.SessionID != "" {
		session.SetCookies(baseURL+"/", []*http.Cookie{{
			Name:  constants.SessionCookie,
			Value: config.SessionID,
			Path:  "/",
		}})
	}

	client := &Client{
		config:   config,
		baseURL:  baseURL,
		session:  session,
		root:     rbt.NewRoot(session, baseURL, config.Options()...),
		metrics:  metrics,
		sessions: auth.NewSessionManager(session, config.SessionStore),
	}

	if config.APIToken == "" && config.Username != "" && config.Password != "" {
		_, err = client.Login(ctx, config.Username, config.Password)
		if err != nil {
			return nil, err
		}
	}

	return client, nil
}

// NewWithURL creates an anonymous client.
func NewWithURL(ctx context.Context, baseURL string) (*Client, error) {
	return New(ctx, &rbt.Config{BaseURL: baseURL})
}

// NewWithToken creates a client authenticated with an API token.
func NewWithToken(ctx context.Context, baseURL, token string) (*Client, error) {
	return New(ctx, &rbt.Config{BaseURL: baseURL, APIToken: token})
}

// NewWithPassword creates a client and logs its session in.
func NewWithPassword(ctx context.Context, baseURL, username, password string) (*Client, error) {
	return New(ctx, &rbt.Config{BaseURL: baseURL, Username: username, Password: password})
}

func httpOptions(config *rbt.Config, metrics *rbt.MetricsCollector) []rbthttp.Option {
	opts := []rbthttp.Option{
		rbthttp.WithUserAgent(config.UserAgent),
		rbthttp.WithTimeout(config.Timeout),
		rbthttp.WithRequestInterceptor(rbt.RequestIDInterceptor()),
		rbthttp.WithRequestInterceptor(rbt.MetricsRequestInterceptor(metrics)),
		rbthttp.WithResponseInterceptor(rbt.MetricsResponseInterceptor(metrics)),
	}

	if config.Logger != nil {
		opts = append(opts, rbthttp.WithLogger(config.Logger), rbthttp.WithDebug(config.Debug))

		if config.Debug {
			opts = append(opts,
				rbthttp.WithRequestInterceptor(rbt.LoggingInterceptor(config.Logger)),
				rbthttp.WithResponseInterceptor(rbt.LoggingResponseInterceptor(config.Logger)),
			)
		}
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, rbthttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	if len(config.Headers) > 0 {
		opts = append(opts, rbthttp.WithRequestInterceptor(rbt.HeaderInterceptor(config.Headers)))
	}

	if config.APIToken != "" {
		opts = append(opts, rbthttp.WithRequestInterceptor(rbt.TokenInterceptor(config.APIToken)))
	}

	for _, interceptor := range config.RequestInterceptors {
		opts = append(opts, rbthttp.WithRequestInterceptor(interceptor))
	}

	for _, interceptor := range config.ResponseInterceptors {
		opts = append(opts, rbthttp.WithResponseInterceptor(interceptor))
	}

	return opts
}

// Root returns the API root resource.
func (c *Client) Root() *rbt.Resource {
	return c.root
}

// BaseURL returns the canonical server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the HTTP session shared by every resource.
func (c *Client) Session() rbt.Session {
	return c.session
}

// Metrics returns per-endpoint request metrics.
func (c *Client) Metrics() *rbt.MetricsCollector {
	return c.metrics
}

// SessionID returns the session cookie obtained by the last successful Login.
func (c *Client) SessionID() string {
	return c.sessions.SessionID()
}

// Login authenticates the session through the web login form and returns
// the session cookie value. The session is handed to Config.SessionStore
// when one is set.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	result, err := c.sessions.Login(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("logging in as %s: %w", username, err)
	}

	if c.config.Logger != nil {
		c.config.Logger.Info("logged in", map[string]interface{}{
			"user":   username,
			"server": c.baseURL,
		})
	}

	return result.SessionID, nil
}

// Navigate fetches the root and follows the named links in order. params
// are sent with the last call only.
func (c *Client) Navigate(ctx context.Context, params rbt.Params, links ...string) (*rbt.Component, error) {
	var rootParams rbt.Params
	if len(links) == 0 {
		rootParams = params
	}

	component, err := c.root.Call(ctx, rootParams)
	if err != nil {
		return nil, err
	}

	for i, name := range links {
		var callParams rbt.Params
		if i == len(links)-1 {
			callParams = params
		}

		component, err = component.Follow(ctx, name, callParams)
		if err != nil {
			return nil, err
		}
	}

	return component, nil
}

// CanonicalURL returns rawURL with a scheme. An address that already has one
// is returned without a trailing slash. Otherwise https is tried first and
// http is used when the https exchange fails at the transport level.
func CanonicalURL(ctx context.Context, rawURL string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	if trimmed == "" {
		return "", rbt.ErrBaseURLRequired
	}

	parsed, err := url.Parse(trimmed)
	if err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
		return trimmed, nil
	}

	secure := "https://" + trimmed
	probe := rbthttp.NewClient(secure, rbthttp.WithTimeout(constants.ShortHTTPTimeout))

	_, err = probe.Get(ctx, secure+rbt.RootPath, nil)
	if err == nil || errors.As(err, new(*rbt.APIError)) {
		return secure, nil
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("probing %s: %w", secure, ctx.Err())
	}

	return "http://" + trimmed, nil
}
