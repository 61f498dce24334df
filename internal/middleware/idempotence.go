package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/penline/core/internal/pkg/response"
)

const (
	idempotenceHeader = "X-Idempotence-Key"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a POST/PUT that repeats a client-supplied
// X-Idempotence-Key while the first one is in flight or within
// idempotenceTTL of its success. Requests without the header always pass,
// so identical posts and comments are each stored.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !idempotent(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		key := idempotenceKey(c)
		if key == "" {
			c.Next()
			return
		}

		redisKey := "penline:idempotence:" + key
		ctx := c.Request.Context()

		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			msg := "The same request can only be sent once within 60 seconds"
			if val == "0" {
				msg = "The same request is still being processed"
			}
			response.Conflict(c, msg)
			return
		}
		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if setErr := rdb.Set(ctx, redisKey, "0", idempotenceTTL).Err(); setErr != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}

// idempotent reports whether the route takes part. Login and register are
// excluded so a failed attempt can be retried immediately.
func idempotent(method, path string) bool {
	switch method {
	case http.MethodPost, http.MethodPut:
	default:
		return false
	}

	p := strings.TrimRight(strings.ToLower(strings.TrimSpace(path)), "/")
	switch p {
	case "/api/auth/login", "/api/auth/register":
		return false
	}
	return true
}

// idempotenceKey scopes the client key to the route and the caller's token,
// so two clients picking the same key do not block each other. It is empty
// when the client sent no key.
func idempotenceKey(c *gin.Context) string {
	hdr := strings.TrimSpace(c.GetHeader(idempotenceHeader))
	if hdr == "" {
		return ""
	}
	raw := fmt.Sprintf("%s|%s|%s|%s", hdr, c.Request.Method, c.Request.URL.Path, extractToken(c))
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
