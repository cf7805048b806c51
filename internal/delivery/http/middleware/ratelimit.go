package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	h "embervite/internal/delivery/http/helpers"
)

// RateLimiter is a per-key token bucket. Buckets idle for two windows are pruned.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int
	window   time.Duration
	burst    int
	cleanup  time.Duration
	now      func() time.Time
	stopOnce sync.Once
	stop     chan struct{}
}

type bucket struct {
	tokens   int
	refilled time.Time
}

// RateLimitConfig holds rate limiter configuration. Zero values take defaults.
type RateLimitConfig struct {
	Rate    int           // requests per window, default 30
	Window  time.Duration // default 1 minute
	Burst   int           // extra requests allowed on top of Rate
	Cleanup time.Duration // prune interval, default 5 minutes
}

// NewRateLimiter creates a limiter and starts its prune loop. Call Stop to end it.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 30
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst < 0 {
		cfg.Burst = 0
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = 5 * time.Minute
	}
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    cfg.Rate,
		window:  cfg.Window,
		burst:   cfg.Burst,
		cleanup: cfg.Cleanup,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.pruneLoop()
	return rl
}

// Stop ends the prune loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) pruneLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.prune()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-2 * rl.window)
	for key, b := range rl.buckets {
		if b.refilled.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Allow takes one token from key's bucket and reports whether one was available.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	capacity := rl.rate + rl.burst
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: capacity, refilled: now}
		rl.buckets[key] = b
	} else if elapsed := now.Sub(b.refilled); elapsed >= rl.window {
		b.tokens = capacity
		b.refilled = now
	} else if add := int(int64(rl.rate) * int64(elapsed) / int64(rl.window)); add > 0 {
		b.tokens += add
		if b.tokens >= capacity {
			b.tokens = capacity
			b.refilled = now
		} else {
			// Advance only by the time the added tokens account for, so the
			// remainder counts toward the next token.
			b.refilled = b.refilled.Add(time.Duration(add) * rl.window / time.Duration(rl.rate))
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true, b.tokens, b.refilled.Add(rl.window)
	}
	return false, 0, b.refilled.Add(rl.window)
}

// clientIP is the remote host without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests beyond the limiter's budget for the client IP with 429.
func RateLimit(limiter *RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, reset := limiter.Allow(clientIP(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
			if !allowed {
				retryAfter := int(reset.Sub(limiter.now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "too many requests, try again later")
				return
			}
			next(w, r)
		}
	}
}
