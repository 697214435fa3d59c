package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tracklin/internal/metrics"
)

const rateLimitKeyPrefix = "tracklin:rl:"

// RateLimiter is a fixed window limiter keyed by client IP and route,
// counted in redis with INCR and EXPIRE. The window
// is (re)armed whenever the counter is found without a TTL. A nil client or a redis error
// lets the request through.
type RateLimiter struct {
	logger      zerolog.Logger
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

func NewRateLimiter(
	logger zerolog.Logger,
	client *redis.Client,
	maxRequests int,
	window time.Duration,
) *RateLimiter {
	return &RateLimiter{
		logger:      logger,
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.client == nil || l.maxRequests <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := l.key(c)

		var incr *redis.IntCmd
		var ttl *redis.DurationCmd
		_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			l.logger.Error().
				Err(err).
				Str("key", key).
				Msg("failed to increment rate limit counter")
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		// A counter without a TTL never resets, whether it was just created
		// or an earlier EXPIRE was lost.
		count := incr.Val()
		if ttl.Val() < 0 {
			err = l.client.Expire(ctx, key, l.window).Err()
			if err != nil {
				l.logger.Error().
					Err(err).
					Str("key", key).
					Msg("failed to set rate limit window")
			}
		}

		remaining := int64(l.maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(l.maxRequests) {
			l.logger.Warn().
				Str("client_ip", c.ClientIP()).
				Str("route", c.FullPath()).
				Msg("rate limit exceeded")
			metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

func (l *RateLimiter) key(c *gin.Context) string {
	return rateLimitKeyPrefix +
		strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" +
		c.FullPath() + ":" + c.ClientIP()
}
