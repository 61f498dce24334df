package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/penline/core/internal/pkg/response"
)

// RateLimit enforces a fixed-window limit per client IP for anonymous
// callers. Redis failures let the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		bucket := time.Now().Unix() / seconds
		key := fmt.Sprintf("penline:rate_limit:%s:%d", ip, bucket)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window+time.Second)
		}

		if count > int64(limit) {
			c.Header("Retry-After", strconv.FormatInt(seconds, 10))
			response.TooManyRequests(c, "Too many requests, please try again later")
			return
		}

		c.Next()
	}
}
