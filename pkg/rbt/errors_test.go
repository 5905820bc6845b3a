package rbt

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		Address:    "https://rb/api/review-requests/9/",
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeDoesNotExist,
		Message:    "Object does not exist",
	}

	assert.Equal(t, "HTTP request failed: https://rb/api/review-requests/9/ returned 404: Object does not exist (code: 100)", err.Error())

	bare := &APIError{Address: "https://rb/api/", StatusCode: http.StatusBadGateway}
	assert.Equal(t, "HTTP request failed: https://rb/api/ returned 502 Bad Gateway", bare.Error())
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    int
		message string
	}{
		{
			name:    "review board payload",
			status:  http.StatusForbidden,
			body:    `{"stat": "fail", "err": {"code": 101, "msg": "You don't have permission for this"}}`,
			code:    ErrorCodePermissionDenied,
			message: "You don't have permission for this",
		},
		{
			name:   "html body",
			status: http.StatusInternalServerError,
			body:   "<html>oops</html>",
		},
		{
			name:   "empty body",
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseAPIError("https://rb/api/", tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			require.ErrorIs(t, err, ErrHTTPStatus)
		})
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&MethodError{Method: "PATCH"}, ErrUnsupportedMethod},
		{&BadContentTypeError{Address: "a", Status: 200, Expected: "x", Actual: "y"}, ErrBadContentType},
		{&DecodeError{Address: "a", Err: errNullBody}, ErrDecode},
		{&DecodeError{Address: "a", Err: errNullBody}, errNullBody},
		{&StatError{Stat: "maybe"}, ErrBadStat},
		{&MissingLinkError{Address: "a", Name: "create"}, ErrMissingLink},
		{&FieldError{Component: "root", Name: "x"}, ErrMissingField},
		{&CollisionError{Component: "root", Field: "a_b", Keys: []string{"a-b", "a_b"}}, ErrFieldCollision},
		{&LinkError{Address: "a", Name: "self"}, ErrMalformedLink},
	}

	for _, tt := range tests {
		wrapped := fmt.Errorf("GET a: %w", tt.err)
		assert.ErrorIs(t, wrapped, tt.sentinel, tt.err.Error())
		assert.Contains(t, tt.err.Error(), tt.sentinel.Error())
	}
}

func TestErrorHelpers(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &APIError{StatusCode: http.StatusNotFound})
	doesNotExist := &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeDoesNotExist}
	notLoggedIn := &APIError{StatusCode: http.StatusForbidden, Code: ErrorCodeNotLoggedIn}
	unauthorized := &APIError{StatusCode: http.StatusUnauthorized}

	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(doesNotExist))
	assert.False(t, IsNotFound(notLoggedIn))
	assert.False(t, IsNotFound(errors.New("other")))

	assert.True(t, IsNotLoggedIn(notLoggedIn))
	assert.True(t, IsNotLoggedIn(unauthorized))
	assert.False(t, IsNotLoggedIn(notFound))

	assert.True(t, IsBadContentType(&BadContentTypeError{}))
	assert.False(t, IsBadContentType(notFound))
	assert.True(t, IsMissingLink(&MissingLinkError{}))
}
