package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Counter is the fixed-window counter the rate limiter keeps per user
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisCounter keeps the counters in Redis
type RedisCounter struct {
	Client redis.Cmdable
}

func (r RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return r.Client.Incr(ctx, key).Result()
}

func (r RedisCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.Client.Expire(ctx, key, ttl).Err()
}

func (r RedisCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.Client.TTL(ctx, key).Result()
}

// IssueRateLimiter allows each user limit issue reports per window. It must
// run after AuthMiddleware.
func IssueRateLimiter(counter Counter, queuePrefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()

		// Create individual key for each user
		userKey := queuePrefix + ":" + user.ID

		// Increment user's count with TTL
		count, err := counter.Incr(ctx, userKey)
		if err != nil {
			log.Error().Err(err).Str("key", userKey).Msg("rate limiter increment")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := counter.Expire(ctx, userKey, window); err != nil {
				log.Error().Err(err).Str("key", userKey).Msg("rate limiter expire")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		// Check if user exceeded limit
		if count > int64(limit) {
			retryAfter, _ := counter.TTL(ctx, userKey)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
