package rbt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Resource is a callable bound to one address and HTTP verb. Each Call is
// independent: nothing is cached between calls.
type Resource struct {
	session Session
	name    string
	href    string
	method  Method
	opts    *options
}

// NewResource creates a resource. The method must be GET, POST, PUT or
// DELETE; anything else fails with ErrUnsupportedMethod.
func NewResource(session Session, name, href, method string, opts ...Option) (*Resource, error) {
	return newResource(session, name, href, method, newOptions(opts))
}

func newResource(session Session, name, href, method string, o *options) (*Resource, error) {
	verb, err := ParseMethod(method)
	if err != nil {
		return nil, fmt.Errorf("creating resource %s: %w", name, err)
	}

	return &Resource{
		session: session,
		name:    Sanitize(name),
		href:    href,
		method:  verb,
		opts:    o,
	}, nil
}

// Name returns the resource name used for content-type lookup.
func (r *Resource) Name() string {
	return r.name
}

// Href returns the bound address.
func (r *Resource) Href() string {
	return r.href
}

// Method returns the bound HTTP verb.
func (r *Resource) Method() Method {
	return r.method
}

// Call performs the request and materializes the response. params become
// the query string for GET and DELETE and the form body for POST and PUT.
//
// The steps run in a fixed order: transport, HTTP status, content type,
// JSON decode, stat check, component build, link resolution. Any failure
// aborts the call.
func (r *Resource) Call(ctx context.Context, params Params) (*Component, error) {
	expected, err := r.opts.contentTypes.Lookup(r.name)
	if err != nil {
		return nil, err
	}

	resp, err := r.session.Send(ctx, r.method, r.href, params)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.href, err)
	}

	err = checkHTTPStatus(r.href, resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return r.empty(), nil
	}

	actual := resp.ContentType()
	if actual != expected {
		return nil, &BadContentTypeError{
			Address:  r.href,
			Status:   resp.StatusCode,
			Expected: expected,
			Actual:   actual,
		}
	}

	payload, err := decodePayload(r.href, resp.Body)
	if err != nil {
		return nil, err
	}

	_, err = CheckStat(payload)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.href, err)
	}

	component, err := build(r.name, payload, nil, r.opts.collision)
	if err != nil {
		return nil, err
	}

	component, err = resolveLinks(component.withAddress(r.href), r.session, r.opts)
	if err != nil {
		return nil, err
	}

	r.opts.logger.Debug("resource fetched", map[string]interface{}{
		"resource": r.name,
		"method":   string(r.method),
		"address":  r.href,
		"fields":   len(component.fields),
		"links":    len(component.linkNames),
	})

	return component, nil
}

func (r *Resource) empty() *Component {
	return &Component{
		name:    r.name,
		address: r.href,
		index:   map[string]int{},
		raw:     map[string]interface{}{},
	}
}

func checkHTTPStatus(address string, resp *Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	return ParseAPIError(address, resp.StatusCode, resp.Body)
}

func decodePayload(address string, body []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload map[string]interface{}

	err := decoder.Decode(&payload)
	if err != nil {
		return nil, &DecodeError{Address: address, Err: err}
	}

	if payload == nil {
		return nil, &DecodeError{Address: address, Err: errNullBody}
	}

	_, err = decoder.Token()
	if !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Address: address, Err: errTrailingData}
	}

	return payload, nil
}

// NewRoot creates the resource for the API root of the server at baseURL.
// It is the only resource a caller constructs directly; every other resource
// is discovered through links.
func NewRoot(session Session, baseURL string, opts ...Option) *Resource {
	return &Resource{
		session: session,
		name:    RootResource,
		href:    strings.TrimSuffix(baseURL, "/") + RootPath,
		method:  MethodGet,
		opts:    newOptions(opts),
	}
}

// Root resource identity.
const (
	RootResource = "root"
	RootPath     = "/api/"
)
