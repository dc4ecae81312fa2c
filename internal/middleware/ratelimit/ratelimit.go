package ratelimit

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client. Idle buckets expire from the
// registry so memory stays bounded by the number of recent clients.
type Limiter struct {
	clients *cache.Cache
	limit   rate.Limit
	burst   int
	hits    int64
}

type Config struct {
	RequestsPerSecond float64
	Burst             int
	IdleExpiry        time.Duration
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		Burst:             20,
		IdleExpiry:        10 * time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

func NewLimiter(config Config) *Limiter {
	defaults := DefaultConfig()
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.Burst <= 0 {
		config.Burst = defaults.Burst
	}
	if config.IdleExpiry <= 0 {
		config.IdleExpiry = defaults.IdleExpiry
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}

	return &Limiter{
		clients: cache.New(config.IdleExpiry, config.CleanupInterval),
		limit:   rate.Limit(config.RequestsPerSecond),
		burst:   config.Burst,
	}
}

func (l *Limiter) bucket(clientIP string) *rate.Limiter {
	if v, ok := l.clients.Get(clientIP); ok {
		// touch to extend the idle expiry
		l.clients.SetDefault(clientIP, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.clients.Add(clientIP, lim, cache.DefaultExpiration); err != nil {
		// lost a race with another request from the same client
		if v, ok := l.clients.Get(clientIP); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Allow reports whether a request from clientIP may proceed now
func (l *Limiter) Allow(clientIP string) bool {
	if l.bucket(clientIP).Allow() {
		return true
	}
	atomic.AddInt64(&l.hits, 1)
	return false
}

func (l *Limiter) ActiveClients() int {
	return l.clients.ItemCount()
}

// Hits is the number of rejected requests since start
func (l *Limiter) Hits() int64 {
	return atomic.LoadInt64(&l.hits)
}

func (l *Limiter) retryAfter() string {
	secs := int(time.Duration(float64(time.Second) / float64(l.limit)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// Middleware limits the given methods only; an empty list limits everything.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request), methods ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(limited) > 0 && !limited[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			if !l.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", l.retryAfter())
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
