package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/utils"
)

type RateLimitConfig struct {
	// Scope names the guarded surface ("harvest", "reload", "datasets") in
	// logs and the X-RateLimit-Scope header.
	Scope             string
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool // resolve IP from proxy headers when true

	// Key picks the bucket of a request. Defaults to the client IP.
	Key func(r *http.Request, trustProxy bool) string
	// Now defaults to time.Now.
	Now func() time.Time
}

// ClientKey buckets requests by client IP.
func ClientKey(r *http.Request, trustProxy bool) string {
	return utils.ClientIP(r, trustProxy)
}

// HarvestTargetKey buckets requests by client IP and harvest target
// ({serviceID} or {provider}), so repeated triggers of one service do not
// spend the budget of another. Must run after route matching.
func HarvestTargetKey(r *http.Request, trustProxy bool) string {
	key := utils.ClientIP(r, trustProxy)
	if id := chi.URLParam(r, "serviceID"); id != "" {
		return key + "|service:" + id
	}
	if p := chi.URLParam(r, "provider"); p != "" {
		return key + "|provider:" + p
	}
	return key
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	lastRef  time.Time
	lastSeen time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	rate      float64
	capacity  float64
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	if cfg.Key == nil {
		cfg.Key = ClientKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:       cfg,
		rate:      float64(cfg.RefillPerIPPerMin) / 60.0,
		capacity:  float64(cfg.Burst),
		buckets:   make(map[string]*bucket, 1024),
		lastSweep: cfg.Now(),
	}
}

func (l *limiter) getBucket(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries {
		l.sweepLocked(now)
	}
	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: l.capacity, lastRef: now, lastSeen: now}
		l.buckets[key] = b
	}
	return b
}

func (l *limiter) allow(key string, now time.Time) (ok bool, remaining int, retryAfterSec int) {
	b := l.getBucket(key, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRef).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
		b.lastRef = now
	}

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		b.lastSeen = now
		return true, int(math.Floor(b.tokens)), 0
	}

	needed := 1.0 - b.tokens
	sec := int(math.Ceil(needed / l.rate))
	if sec < 1 {
		sec = 1
	}
	return false, int(math.Floor(b.tokens)), sec
}

func (l *limiter) sweepLocked(now time.Time) {
	ttl := l.cfg.IdleTTL
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > ttl {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *limiter) sweepMaybe(now time.Time) {
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		l.sweepLocked(now)
	}
	l.mu.Unlock()
}

// RateLimit applies a token bucket per cfg.Key within cfg.Scope. Rejected
// requests get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limitStr := strconv.Itoa(l.cfg.Burst)
	log = log.With(logger.String("scope", l.cfg.Scope))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := l.cfg.Now()
			l.sweepMaybe(now)

			key := l.cfg.Key(r, l.cfg.TrustProxy)
			if l.cfg.Scope != "" {
				w.Header().Set("X-RateLimit-Scope", l.cfg.Scope)
			}

			ok, remaining, retry := l.allow(key, now)
			if !ok {
				log.Warn("trigger rate limited",
					logger.String("key", key),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("request_id", middleware.GetReqID(r.Context())),
					logger.Int("retry_after_s", retry))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("X-RateLimit-Limit", limitStr)
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			// Write informational headers AFTER the handler, so they reflect this request's consumption.
			defer func(rem int) {
				if rem < 0 {
					rem = 0
				}
				w.Header().Set("X-RateLimit-Limit", limitStr)
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rem))
			}(remaining)

			next.ServeHTTP(w, r)
		})
	}
}
