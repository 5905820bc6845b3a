package rbt

import (
	"context"
	"net/http"
	"strings"
)

// Method is an HTTP verb a link can be bound to.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// ParseMethod normalizes s and checks it is one of the supported verbs.
func ParseMethod(s string) (Method, error) {
	method := Method(strings.ToUpper(strings.TrimSpace(s)))

	switch method {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return method, nil
	default:
		return "", &MethodError{Method: s}
	}
}

// HasBody reports whether params travel in the request body for this verb.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut
}

// Params are the query parameters or form fields sent with a call.
type Params map[string]string

// Link is the {href, method} pair found under a payload's links field.
type Link struct {
	Href   string `json:"href"   yaml:"href"`
	Method string `json:"method" yaml:"method"`
}

// Response is what a Session hands back for one HTTP exchange.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ContentType returns the declared Content-Type header.
func (r *Response) ContentType() string {
	if r.Headers == nil {
		return ""
	}

	return r.Headers.Get("Content-Type")
}

// Session performs HTTP exchanges over a persistent connection. It is shared
// by every Resource of a navigation chain and outlives all of them.
//
// Send must return an error on transport-level failure. It may also return an
// error for an HTTP failure status; the Resource checks the status either way.
type Session interface {
	Send(ctx context.Context, method Method, address string, params Params) (*Response, error)
}

// SessionFunc adapts a function to the Session interface.
type SessionFunc func(ctx context.Context, method Method, address string, params Params) (*Response, error)

// Send implements Session.
func (f SessionFunc) Send(ctx context.Context, method Method, address string, params Params) (*Response, error) {
	return f(ctx, method, address, params)
}
