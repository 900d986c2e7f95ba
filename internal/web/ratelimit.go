package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/datadash/internal/logging"
)

// visitorTTL is how long an idle client's bucket is kept.
const visitorTTL = 10 * time.Minute

// rateLimiter keeps a token bucket per client IP.
type rateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter allows perMinute requests per IP with the given burst.
func newRateLimiter(perMinute, burst int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		visitors:    make(map[string]*visitor),
		limit:       rate.Limit(float64(perMinute) / 60),
		burst:       burst,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) > visitorTTL {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(rl.visitors, key)
			}
		}
		rl.lastCleanup = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// middleware returns an HTTP middleware that rate limits by IP. RemoteAddr
// has already been rewritten by TrustedRealIP for trusted proxies.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.allow(ip) {
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"ip", ip,
			)
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
