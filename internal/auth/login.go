package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/fivetwenty-io/rbt/internal/constants"
	rbthttp "github.com/fivetwenty-io/rbt/internal/http"
)

// Client is the part of the HTTP session the login flow needs.
type Client interface {
	Do(ctx context.Context, req *rbthttp.Request) (*rbthttp.Response, error)
	Cookies(address string) []*http.Cookie
	BaseURL() string
}

// Result is the outcome of a login.
type Result struct {
	// StatusCode of the last exchange of the flow.
	StatusCode int
	// SessionID is the value of the session cookie, when one was set.
	SessionID string
}

// Login authenticates the session through the web login form. The form is
// fetched first so the server sets its CSRF cookie, then the credentials are
// posted with that token and a Referer header. On success the session cookie
// stays in the client's jar.
func Login(ctx context.Context, client Client, username, password string) (*Result, error) {
	if username == "" || password == "" {
		return nil, constants.ErrNoCredentials
	}

	loginURL := client.BaseURL() + constants.LoginPath

	resp, err := client.Do(ctx, &rbthttp.Request{Method: http.MethodGet, Path: loginURL})
	if err != nil {
		return resultOf(resp), fmt.Errorf("fetching login form: %w", err)
	}

	if resp.StatusCode != constants.HTTPStatusOK {
		return resultOf(resp), fmt.Errorf("%w: login form returned %d", constants.ErrLoginRejected, resp.StatusCode)
	}

	csrf := cookieValue(client.Cookies(loginURL), constants.CSRFCookie)
	if csrf == "" {
		return resultOf(resp), constants.ErrNoCSRFToken
	}

	resp, err = client.Do(ctx, &rbthttp.Request{
		Method: http.MethodPost,
		Path:   loginURL,
		Form: url.Values{
			"username":            {username},
			"password":            {password},
			"csrfmiddlewaretoken": {csrf},
			"next":                {"/"},
		},
		Headers: map[string]string{"Referer": loginURL},
	})
	if err != nil {
		return resultOf(resp), fmt.Errorf("posting credentials: %w", err)
	}

	result := resultOf(resp)
	result.SessionID = cookieValue(client.Cookies(client.BaseURL()+"/"), constants.SessionCookie)

	if result.SessionID == "" {
		return result, fmt.Errorf("%w: no session cookie for %s", constants.ErrLoginRejected, username)
	}

	return result, nil
}

// ConfigPersister saves a session so later runs can reuse it.
type ConfigPersister interface {
	UpdateSession(serverURL, sessionID string) error
}

// SessionManager logs in and persists the resulting session.
type SessionManager struct {
	client    Client
	persister ConfigPersister
	mutex     sync.RWMutex
	sessionID string
}

// NewSessionManager creates a session manager. persister may be nil, in
// which case sessions only live as long as the client.
func NewSessionManager(client Client, persister ConfigPersister) *SessionManager {
	return &SessionManager{
		client:    client,
		persister: persister,
	}
}

// Login runs the login flow and persists the session.
func (m *SessionManager) Login(ctx context.Context, username, password string) (*Result, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result, err := Login(ctx, m.client, username, password)
	if err != nil {
		return result, err
	}

	m.sessionID = result.SessionID

	if m.persister != nil {
		err = m.persister.UpdateSession(m.client.BaseURL(), result.SessionID)
		if err != nil {
			return result, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	return result, nil
}

// SessionID returns the session obtained by the last successful login.
func (m *SessionManager) SessionID() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.sessionID
}

func resultOf(resp *rbthttp.Response) *Result {
	if resp == nil {
		return &Result{}
	}

	return &Result{StatusCode: resp.StatusCode}
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}

	return ""
}
