package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is the persistent HTTP session shared by every resource of a
// navigation chain. Cookies set by the server are kept between exchanges.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	logger       rbt.Logger
	debug        bool
	userAgent    string
	interceptors *rbt.InterceptorChain
}

// Request represents an HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Form    url.Values
	Headers map[string]string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger rbt.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig enables retries of connection errors, 429 and 5xx.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout caps a single HTTP exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRequestInterceptor adds a request interceptor run by Send.
func WithRequestInterceptor(interceptor rbt.RequestInterceptor) Option {
	return func(c *Client) {
		c.interceptors.AddRequestInterceptor(interceptor)
	}
}

// WithResponseInterceptor adds a response interceptor run by Send.
func WithResponseInterceptor(interceptor rbt.ResponseInterceptor) Option {
	return func(c *Client) {
		c.interceptors.AddResponseInterceptor(interceptor)
	}
}

// NewClient creates a new HTTP client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	// cookiejar.New never fails with nil options.
	jar, _ := cookiejar.New(nil)
	retryClient.HTTPClient.Jar = jar

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		userAgent:    constants.DefaultUserAgent,
		interceptors: rbt.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.Logger = &retryLogger{logger: client.logger}
	}

	return client
}

// BaseURL returns the address relative paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cookies returns the session cookies the jar would send to address.
func (c *Client) Cookies(address string) []*http.Cookie {
	target, err := url.Parse(c.resolve(address))
	if err != nil {
		return nil
	}

	return c.httpClient.HTTPClient.Jar.Cookies(target)
}

// SetCookies stores cookies in the jar for address.
func (c *Client) SetCookies(address string, cookies []*http.Cookie) {
	target, err := url.Parse(c.resolve(address))
	if err != nil {
		return
	}

	c.httpClient.HTTPClient.Jar.SetCookies(target, cookies)
}

// Do performs an HTTP request. A status of 400 or above returns both the
// response and an *rbt.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	address, err := withQuery(c.resolve(req.Path), req.Query)
	if err != nil {
		return nil, fmt.Errorf("building request URL: %w", err)
	}

	var body interface{}
	if req.Form != nil {
		body = []byte(req.Form.Encode())
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, address, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Form != nil {
		httpReq.Header.Set("Content-Type", constants.ContentTypeForm)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    address,
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code":  resp.StatusCode,
			"content_type": httpResp.Header.Get("Content-Type"),
			"bytes":        len(respBody),
		})
	}

	if resp.StatusCode >= constants.HTTPStatusBadRequest {
		return resp, rbt.ParseAPIError(address, resp.StatusCode, respBody)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a form-encoded POST request.
func (c *Client) Post(ctx context.Context, path string, form url.Values) (*Response, error) {
	if form == nil {
		form = url.Values{}
	}

	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Form:   form,
	})
}

// Put performs a form-encoded PUT request.
func (c *Client) Put(ctx context.Context, path string, form url.Values) (*Response, error) {
	if form == nil {
		form = url.Values{}
	}

	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Form:   form,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// Send implements rbt.Session. Params become the query string for GET and
// DELETE and the form body for POST and PUT. Interceptors run around the
// exchange.
func (c *Client) Send(ctx context.Context, method rbt.Method, address string, params rbt.Params) (*rbt.Response, error) {
	exchange := &rbt.Exchange{
		Method:   method,
		Address:  address,
		Params:   params,
		Headers:  make(http.Header),
		Metadata: make(map[string]interface{}),
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, exchange)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:  string(exchange.Method),
		Path:    exchange.Address,
		Headers: make(map[string]string, len(exchange.Headers)),
	}

	for key := range exchange.Headers {
		req.Headers[key] = exchange.Headers.Get(key)
	}

	values := make(url.Values, len(exchange.Params))
	for key, value := range exchange.Params {
		values.Set(key, value)
	}

	if exchange.Method.HasBody() {
		req.Form = values
	} else if len(values) > 0 {
		req.Query = values
	}

	resp, sendErr := c.Do(ctx, req)

	var result *rbt.Response
	if resp != nil {
		result = &rbt.Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
		}
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, exchange, result, sendErr)
	if err != nil {
		return result, err
	}

	return result, sendErr
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func withQuery(address string, query url.Values) (string, error) {
	if len(query) == 0 {
		return address, nil
	}

	target, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", address, err)
	}

	merged := target.Query()
	for key, values := range query {
		for _, value := range values {
			merged.Add(key, value)
		}
	}

	target.RawQuery = merged.Encode()

	return target.String(), nil
}

// retryLogger forwards retryablehttp's leveled logs. Per-attempt debug lines
// are dropped; the client logs its own exchanges.
type retryLogger struct {
	logger rbt.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keyValueFields(keysAndValues))
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keyValueFields(keysAndValues))
}

func (l *retryLogger) Debug(string, ...interface{}) {}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keyValueFields(keysAndValues))
}

func keyValueFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/constants.KeyValueParts)

	for i := 0; i+1 < len(keysAndValues); i += constants.KeyValueParts {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
