package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pageza/dietrec/backend/internal/logging"
	"github.com/pageza/dietrec/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Burst is the local limiter's bucket size. Zero means Limit.
	Burst int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimiter handles rate limiting using Redis, so every replica shares one
// fixed-window counter per client.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:api"
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// Allow counts a request from key against the current window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// LocalRateLimiter is a per-process token bucket per client, used when no
// Redis is configured.
type LocalRateLimiter struct {
	config RateLimitConfig
	limit  rate.Limit
	burst  int

	mu        sync.Mutex
	clients   map[string]*localClient
	lastSweep time.Time
	now       func() time.Time
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter refills Limit tokens per Window.
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	burst := config.Burst
	if burst <= 0 {
		burst = config.Limit
	}
	return &LocalRateLimiter{
		config:  config,
		limit:   rate.Limit(float64(config.Limit) / config.Window.Seconds()),
		burst:   burst,
		clients: make(map[string]*localClient),
		now:     time.Now,
	}
}

// Allow takes a token from key's bucket.
func (l *LocalRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.clients[key]
	if !ok {
		c = &localClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	allowed := c.limiter.AllowN(now, 1)
	tokens := c.limiter.TokensAt(now)

	reset := now
	if tokens < 1 && l.limit > 0 {
		wait := time.Duration((1 - tokens) / float64(l.limit) * float64(time.Second))
		reset = now.Add(wait)
	}
	return Decision{
		Allowed:   allowed,
		Limit:     l.burst,
		Remaining: max(int(math.Floor(tokens)), 0),
		Reset:     reset,
	}, nil
}

// sweep forgets clients idle for more than two windows.
func (l *LocalRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.config.Window {
		return
	}
	l.lastSweep = now
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > 2*l.config.Window {
			delete(l.clients, key)
		}
	}
}

// RateLimit returns a Gin middleware that enforces limiter per client IP.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("Rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retryAfter := max(int(math.Ceil(time.Until(d.Reset).Seconds())), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			endpoint := c.FullPath()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.APIRateLimitHits.WithLabelValues(endpoint).Inc()
			AbortWithEnvelope(c, http.StatusTooManyRequests,
				"rate limit exceeded",
				fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", d.Limit, window))
			return
		}

		c.Next()
	}
}
