/*
Package limiter provides request rate limiting keyed by client IP address.

It uses the token bucket algorithm (rate.Limiter) per IP and runs a cleanup
goroutine that periodically removes inactive limiters to bound memory use.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"wavechat/internal/pkg/errs"
	"wavechat/internal/pkg/logx"
	"wavechat/internal/pkg/resp"
)

// IPRateLimiter implements a per-IP request rate limiter.
type IPRateLimiter struct {
	// mu protects concurrent access to the limits map.
	mu *sync.RWMutex

	// limits maps client IP address to its *rate.Limiter instance.
	limits map[string]*rate.Limiter

	// r is the allowed event rate per second.
	r rate.Limit

	// b is the burst size (token bucket capacity).
	b int
}

// NewIPRateLimiter creates an IPRateLimiter with rate r and burst b and
// starts the background cleanup goroutine.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		mu:     &sync.RWMutex{},
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanUpVisitors()

	return i
}

// GetLimiter returns the limiter for ip, creating it on first use.
// Double-checked locking keeps creation concurrent-safe.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if !exists {
		i.mu.Lock()
		limiter, exists = i.limits[ip]
		if !exists {
			limiter = rate.NewLimiter(i.r, i.b)
			i.limits[ip] = limiter
		}
		i.mu.Unlock()
	}

	return limiter
}

// cleanUpVisitors periodically removes limiters whose token bucket is full,
// i.e. IPs that have gone idle.
func (i *IPRateLimiter) cleanUpVisitors() {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		i.mu.Lock()
		count := 0
		for ip, limiter := range i.limits {
			if limiter.TokensAt(time.Now()) >= float64(limiter.Burst()) {
				delete(i.limits, ip)
				count++
			}
		}
		remaining := len(i.limits)
		i.mu.Unlock()

		logx.Info("Rate limiter cleanup finished.", "removed", count, "remaining", remaining)
	}
}

// Middleware wraps next with a rate limiting check, answering 429 when the
// limit is exceeded.
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !i.GetLimiter(ip).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
