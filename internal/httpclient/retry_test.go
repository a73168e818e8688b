package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(codes ...int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:  2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		StatusCodes: codes,
	}
}

func TestRetryPolicy(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusTooManyRequests)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))
}

func TestRetryPolicy_MaxRetriesExceeded(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusServiceUnavailable)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: "GET"})
	require.Error(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))

	var httpErr *errorwrapper.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

func TestRetryPolicy_NonRetryableStatus(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusServiceUnavailable)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   300 * time.Millisecond,
	}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 300*time.Millisecond, p.Delay(3))

	p.Jitter = true
	d := p.Delay(1)
	assert.GreaterOrEqual(t, d, 200*time.Millisecond)
	assert.Less(t, d, 220*time.Millisecond)
}

func TestRetryPolicy_NetworkErrorsAreRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry()).Build()
	require.NoError(t, err)

	_, err = client.Do(&HTTPRequest{URL: url})
	require.Error(t, err)
	assert.True(t, errorwrapper.IsNetworkError(err))
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.True(t, p.Retryable(http.StatusTooManyRequests))
	assert.False(t, p.Retryable(http.StatusForbidden))
}
