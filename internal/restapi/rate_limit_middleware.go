package restapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware keeps one token bucket per key.
type RateLimitMiddleware struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	rateLimit rate.Limit
	burstSize int
	keyFunc   func(*http.Request) string
}

// NewRateLimitMiddleware allows requestsPerInterval requests per key per
// interval. A non-positive rate disables limiting.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	if requestsPerInterval <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	middleware := &RateLimitMiddleware{
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rate.Every(interval / time.Duration(requestsPerInterval)),
		burstSize: requestsPerInterval,
		keyFunc:   keyFunc,
	}
	return middleware.rateLimitHandler
}

func (rl *RateLimitMiddleware) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rateLimit, rl.burstSize)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimitMiddleware) rateLimitHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if rl.keyFunc != nil {
			key = rl.keyFunc(r)
		}

		if !rl.getLimiter(key).Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := time.Duration(float64(time.Second) / float64(rl.rateLimit))
	if retryAfter < time.Second {
		retryAfter = time.Second
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"code":429,"text":"rate limit exceeded","version":2}` + "\n"))
}
