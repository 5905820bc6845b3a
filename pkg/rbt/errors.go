package rbt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrUnknownResource   = errors.New("no content type registered for resource")
	ErrBadContentType    = errors.New("unexpected content type")
	ErrDecode            = errors.New("response body is not a JSON object")
	ErrMissingStat       = errors.New("response has no stat field")
	ErrBadStat           = errors.New("response stat is neither ok nor fail")
	ErrMissingLink       = errors.New("link not found")
	ErrMissingField      = errors.New("field not found")
	ErrFieldType         = errors.New("field has a different type")
	ErrMalformedLink     = errors.New("link descriptor requires href and method")
	ErrFieldCollision    = errors.New("field names collide after sanitization")
	ErrInvalidPolicy     = errors.New("invalid policy")
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrConfigRequired    = errors.New("config is required")
	ErrHTTPStatus        = errors.New("HTTP request failed")

	errNullBody     = errors.New("body is null")
	errTrailingData = errors.New("trailing data after JSON object")
)

// Review Board API error codes.
const (
	ErrorCodeDoesNotExist     = 100
	ErrorCodePermissionDenied = 101
	ErrorCodeInvalidAttribute = 102
	ErrorCodeNotLoggedIn      = 103
	ErrorCodeLoginFailed      = 104
	ErrorCodeInvalidFormData  = 105
)

// MethodError reports a verb outside GET/POST/PUT/DELETE.
type MethodError struct {
	Method string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedMethod, e.Method)
}

func (e *MethodError) Unwrap() error {
	return ErrUnsupportedMethod
}

// APIError is an HTTP failure status, optionally carrying the Review Board
// error payload ({"stat": "fail", "err": {"code": ..., "msg": ...}}).
type APIError struct {
	Address    string `json:"address"     yaml:"address"`
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Code       int    `json:"code"        yaml:"code"`
	Message    string `json:"msg"         yaml:"msg"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s returned %d: %s (code: %d)", ErrHTTPStatus, e.Address, e.StatusCode, e.Message, e.Code)
	}

	return fmt.Sprintf("%s: %s returned %d %s", ErrHTTPStatus, e.Address, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error {
	return ErrHTTPStatus
}

// ParseAPIError builds an APIError for a failure status, reading the Review
// Board error payload from body when there is one.
func ParseAPIError(address string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{Address: address, StatusCode: statusCode}

	var payload struct {
		Err struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		} `json:"err"`
	}

	if json.Unmarshal(body, &payload) == nil {
		apiErr.Code = payload.Err.Code
		apiErr.Message = payload.Err.Msg
	}

	return apiErr
}

// BadContentTypeError is raised when the declared Content-Type differs from
// the type registered for the resource.
type BadContentTypeError struct {
	Address  string
	Status   int
	Expected string
	Actual   string
}

func (e *BadContentTypeError) Error() string {
	return fmt.Sprintf("%s from %s (status %d): expected %q, got %q", ErrBadContentType, e.Address, e.Status, e.Expected, e.Actual)
}

func (e *BadContentTypeError) Unwrap() error {
	return ErrBadContentType
}

// DecodeError wraps a JSON decoding failure.
type DecodeError struct {
	Address string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Address, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// StatError reports an unrecognized outcome value.
type StatError struct {
	Stat interface{}
}

func (e *StatError) Error() string {
	return fmt.Sprintf("%s: %v", ErrBadStat, e.Stat)
}

func (e *StatError) Unwrap() error {
	return ErrBadStat
}

// MissingLinkError is returned when navigating to a link the response does
// not carry.
type MissingLinkError struct {
	Address string
	Name    string
}

func (e *MissingLinkError) Error() string {
	return fmt.Sprintf("%s: %q in %s", ErrMissingLink, e.Name, e.Address)
}

func (e *MissingLinkError) Unwrap() error {
	return ErrMissingLink
}

// FieldError is returned when reading an attribute a component does not have.
type FieldError struct {
	Component string
	Name      string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s has no field %q", ErrMissingField, e.Component, e.Name)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// CollisionError lists the source keys that map to the same attribute.
type CollisionError struct {
	Component string
	Field     string
	Keys      []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %s.%s from keys %s", ErrFieldCollision, e.Component, e.Field, strings.Join(e.Keys, ", "))
}

func (e *CollisionError) Unwrap() error {
	return ErrFieldCollision
}

// LinkError reports a malformed link descriptor.
type LinkError struct {
	Address string
	Name    string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s: %q in %s", ErrMalformedLink, e.Name, e.Address)
}

func (e *LinkError) Unwrap() error {
	return ErrMalformedLink
}

// IsBadContentType checks if the error is a content-type mismatch.
func IsBadContentType(err error) bool {
	return errors.Is(err, ErrBadContentType)
}

// IsMissingLink checks if the error is a missing-link failure.
func IsMissingLink(err error) bool {
	return errors.Is(err, ErrMissingLink)
}

// IsNotFound checks if the error is an HTTP 404 or a Review Board
// "does not exist" error.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound || apiErr.Code == ErrorCodeDoesNotExist
	}

	return false
}

// IsNotLoggedIn checks if the error asks the caller to authenticate.
func IsNotLoggedIn(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.Code == ErrorCodeNotLoggedIn
	}

	return false
}
