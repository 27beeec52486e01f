package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/shop/internal/api/handler"
)

type LimiterConfig struct {
	Capacity   int
	RatePS     int           // tokens/秒
	RefillRate time.Duration // 補充時間間隔
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity:   100,
		RatePS:     50,
		RefillRate: 100 * time.Millisecond,
	}
}

/*
請使用 defer 呼叫 Stop()
*/
type TokenBucket struct {
	LimiterConfig
	capacity     atomic.Int64 // 可於執行期調整, 以此為準
	ratePS       atomic.Int64
	current      atomic.Int64
	lastRefilled atomic.Int64
	cancel       chan struct{}
	once         sync.Once //for close background
}

/*
請使用 defer 呼叫 Stop()
*/
func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	t := &TokenBucket{
		cancel: make(chan struct{}),
	}

	if config != nil {
		t.LimiterConfig = *config
	} else {
		t.LimiterConfig = GetDefaultLimiterConfig()
	}
	if t.RefillRate <= 0 {
		t.RefillRate = GetDefaultLimiterConfig().RefillRate
	}

	t.capacity.Store(int64(t.Capacity))
	t.ratePS.Store(int64(t.RatePS))
	t.current.Store(int64(t.Capacity))
	t.lastRefilled.Store(time.Now().UnixNano())
	go t.background()
	return t
}

func (t *TokenBucket) Allow() bool {
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

// countNewTokens 不足一個 token 時回傳 0, 呼叫端不更新 lastRefilled 讓時間繼續累積
func (t *TokenBucket) countNewTokens(now int64) int64 {
	elapsed := time.Duration(now - t.lastRefilled.Load())
	return int64(elapsed.Seconds() * float64(t.ratePS.Load()))
}

// SetLimits 調整容量與補充速率, 目前 token 超過新容量時直接截斷
func (t *TokenBucket) SetLimits(capacity, ratePS int) {
	if capacity <= 0 || ratePS <= 0 {
		return
	}
	t.capacity.Store(int64(capacity))
	t.ratePS.Store(int64(ratePS))
	for {
		current := t.current.Load()
		if current <= int64(capacity) || t.current.CompareAndSwap(current, int64(capacity)) {
			return
		}
	}
}

// Limits 回傳目前生效的容量與速率
func (t *TokenBucket) Limits() (capacity, ratePS int) {
	return int(t.capacity.Load()), int(t.ratePS.Load())
}

func (t *TokenBucket) background() {
	ticker := time.NewTicker(t.RefillRate)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			toAdd := t.countNewTokens(now)
			if toAdd <= 0 {
				continue
			}
			for {
				current := t.current.Load()
				newTokens := current + toAdd
				if capacity := t.capacity.Load(); newTokens > capacity {
					newTokens = capacity
				}
				if t.current.CompareAndSwap(current, newTokens) {
					t.lastRefilled.Store(now)
					break
				}
			}
		}
	}
}

func (t *TokenBucket) Stop() {
	t.once.Do(func() {
		close(t.cancel)
	})
}

// NewRateLimitMiddleware 超過限制回 429, 不進入後續 handler
func NewRateLimitMiddleware(bucket *TokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !bucket.Allow() {
				w.Header().Set("Retry-After", "1")
				handler.ErrorJSON(w, r, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
