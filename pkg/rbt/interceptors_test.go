package rbt_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := rbt.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	// Add multiple interceptors
	chain.AddRequestInterceptor(func(ctx context.Context, req *rbt.Exchange) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *rbt.Exchange) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	req := &rbt.Exchange{
		Method:  rbt.MethodGet,
		Address: "http://rb/api/",
	}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := rbt.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *rbt.Exchange, resp *rbt.Response, err error) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *rbt.Exchange, resp *rbt.Response, err error) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	req := &rbt.Exchange{Method: rbt.MethodGet, Address: "http://rb/api/"}
	resp := &rbt.Response{StatusCode: http.StatusOK}

	err := chain.ExecuteResponseInterceptors(ctx, req, resp, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	chain := rbt.NewInterceptorChain()
	errStop := errors.New("stop")
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *rbt.Exchange) error {
		return errStop
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *rbt.Exchange) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &rbt.Exchange{})
	require.ErrorIs(t, err, errStop)
	assert.False(t, called)
}

func TestHeaderInterceptor(t *testing.T) {
	headers := map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	}

	interceptor := rbt.HeaderInterceptor(headers)
	req := &rbt.Exchange{}

	err := interceptor(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

func TestTokenInterceptor(t *testing.T) {
	req := &rbt.Exchange{}

	err := rbt.TokenInterceptor("abc")(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "token abc", req.Headers.Get("Authorization"))
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := rbt.RequestIDInterceptor()

	first := &rbt.Exchange{}
	second := &rbt.Exchange{}

	require.NoError(t, interceptor(context.Background(), first))
	require.NoError(t, interceptor(context.Background(), second))

	id := first.Headers.Get(rbt.RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, first.Metadata["request_id"])
	assert.NotEqual(t, id, second.Headers.Get(rbt.RequestIDHeader))
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &MockLogger{}
	req := &rbt.Exchange{Method: rbt.MethodGet, Address: "http://rb/api/"}

	require.NoError(t, rbt.LoggingInterceptor(logger)(context.Background(), req))
	require.NoError(t, rbt.LoggingResponseInterceptor(logger)(context.Background(), req, &rbt.Response{StatusCode: http.StatusOK}, nil))
	require.NoError(t, rbt.LoggingResponseInterceptor(logger)(context.Background(), req, nil, errors.New("refused")))

	assert.Equal(t, []string{"API Request", "API Response", "API Response Error"}, logger.messages)
}

func TestMetricsInterceptors(t *testing.T) {
	collector := rbt.NewMetricsCollector()
	requestInterceptor := rbt.MetricsRequestInterceptor(collector)
	responseInterceptor := rbt.MetricsResponseInterceptor(collector)
	ctx := context.Background()

	var changes int

	collector.SetOnChange(func(endpoint string, metrics rbt.Metrics) {
		changes++

		assert.Equal(t, "GET http://rb/api/", endpoint)
	})

	for _, status := range []int{http.StatusOK, http.StatusNotFound} {
		req := &rbt.Exchange{Method: rbt.MethodGet, Address: "http://rb/api/"}

		require.NoError(t, requestInterceptor(ctx, req))
		time.Sleep(time.Millisecond)
		require.NoError(t, responseInterceptor(ctx, req, &rbt.Response{StatusCode: status}, nil))
	}

	metrics, ok := collector.GetMetrics("GET http://rb/api/")
	require.True(t, ok)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.Positive(t, metrics.AverageLatency)
	assert.Equal(t, 2, changes)
	assert.Equal(t, []string{"GET http://rb/api/"}, collector.Endpoints())

	_, ok = collector.GetMetrics("POST http://rb/api/")
	assert.False(t, ok)
}
