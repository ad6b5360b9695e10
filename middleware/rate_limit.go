package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the map size above which idle entries are pruned.
	cleanupThreshold = 500
	maxIdleAge       = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	ips map[string]*ipEntry
	mu  sync.Mutex
	r   rate.Limit
	b   int
	now func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   r,
		b:   b,
		now: time.Now,
	}
}

// PerMinute allows n requests per minute with a burst of n. It returns nil,
// which disables limiting, when n is not positive.
func PerMinute(n int) *IPRateLimiter {
	if n <= 0 {
		return nil
	}
	return NewIPRateLimiter(rate.Limit(float64(n)/60), n)
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if len(i.ips) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range i.ips {
			if e.lastSeen.Before(cutoff) {
				delete(i.ips, k)
			}
		}
	}

	e, ok := i.ips[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit throttles anonymous callers per IP. Admin sessions are exempt.
func RateLimit(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || IsAdmin(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			l := limiter.GetLimiter(clientIP(r))
			if !l.AllowN(limiter.now(), 1) {
				if l.Limit() > 0 {
					retry := time.Duration(float64(time.Second) / float64(l.Limit()))
					w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				}
				writeError(w, http.StatusTooManyRequests, "too many report attempts, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
