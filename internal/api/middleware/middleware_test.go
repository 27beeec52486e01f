package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/constants"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestIdMiddleware(t *testing.T) {
	var seen string
	h := RequestIdMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getRequestID(r)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.RequestIDHeader, "req-1")
	h.ServeHTTP(rec, req)
	require.Equal(t, "req-1", seen)
	require.Equal(t, "req-1", rec.Header().Get(constants.RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.NotEqual(t, "req-1", seen)
}

func TestRecoverAndLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := RequestIdMiddleware(LoggerMiddleware(&logger)(RecoverMiddleware(&logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	require.Contains(t, buf.String(), "panic recovered")
	require.Contains(t, buf.String(), `"status":500`)
	require.Contains(t, buf.String(), `"level":"error"`)
}

func TestTokenBucket(t *testing.T) {
	bucket := NewTokenBucket(&LimiterConfig{Capacity: 2, RatePS: 20, RefillRate: 10 * time.Millisecond})
	defer bucket.Stop()

	require.True(t, bucket.Allow())
	require.True(t, bucket.Allow())
	require.False(t, bucket.Allow())

	require.Eventually(t, bucket.Allow, time.Second, 20*time.Millisecond)
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	bucket := NewTokenBucket(&LimiterConfig{Capacity: 2, RatePS: 1000, RefillRate: 5 * time.Millisecond})
	defer bucket.Stop()

	time.Sleep(50 * time.Millisecond)
	require.True(t, bucket.Allow())
	require.True(t, bucket.Allow())
	// 補充速度極快, 只檢查上限
	require.LessOrEqual(t, bucket.current.Load(), int64(2))
}

func TestTokenBucket_SetLimits(t *testing.T) {
	bucket := NewTokenBucket(&LimiterConfig{Capacity: 5, RatePS: 1, RefillRate: time.Hour})
	defer bucket.Stop()

	bucket.SetLimits(2, 10)
	capacity, rate := bucket.Limits()
	require.Equal(t, 2, capacity)
	require.Equal(t, 10, rate)

	require.True(t, bucket.Allow())
	require.True(t, bucket.Allow())
	require.False(t, bucket.Allow())

	// 非正數忽略
	bucket.SetLimits(0, 10)
	capacity, _ = bucket.Limits()
	require.Equal(t, 2, capacity)
}

func TestRateLimitMiddleware(t *testing.T) {
	bucket := NewTokenBucket(&LimiterConfig{Capacity: 1, RatePS: 1, RefillRate: time.Hour})
	defer bucket.Stop()

	h := NewRateLimitMiddleware(bucket)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}
