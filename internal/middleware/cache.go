package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	responseCachePrefix   = "penline:api-cache:"
	defaultCacheTTL       = 15 * time.Second
	defaultCacheMaxBody   = 1 << 20
	cacheStatusHeader     = "X-Penline-Cache"
	cacheBypassQueryParam = "ts"
)

// CacheOptions selects which routes are cached. Routes are gin route
// templates such as "/api/categories/:id".
type CacheOptions struct {
	TTL          time.Duration
	Routes       []string
	MaxBodyBytes int
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body     []byte
	max      int
	overflow bool
}

func (w *bodyRecorder) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *bodyRecorder) capture(data []byte) {
	if w.overflow {
		return
	}
	if len(w.body)+len(data) > w.max {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

// ResponseCache serves anonymous GETs of the listed routes from Redis and
// drops every cached entry after a successful write.
func ResponseCache(rdb *redis.Client, opts CacheOptions, log *zap.Logger) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = defaultCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultCacheMaxBody
	}
	routes := make(map[string]struct{}, len(opts.Routes))
	for _, r := range opts.Routes {
		routes[r] = struct{}{}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if c.Request.Method != http.MethodGet {
			c.Next()
			if isWrite(c.Request.Method) && c.Writer.Status() < http.StatusBadRequest {
				if _, err := PurgeResponseCache(ctx, rdb); err != nil {
					log.Warn("response cache purge failed", zap.Error(err))
				}
			}
			return
		}

		if _, ok := routes[c.FullPath()]; !ok || IsAuthenticated(c) || c.Query(cacheBypassQueryParam) != "" {
			c.Next()
			return
		}

		key := responseCachePrefix + c.Request.URL.RequestURI()
		if hit, ok := readCached(ctx, rdb, key); ok {
			c.Header(cacheStatusHeader, "hit")
			c.Data(hit.Status, hit.ContentType, hit.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, max: opts.MaxBodyBytes}
		c.Writer = rec
		c.Header(cacheStatusHeader, "miss")
		c.Next()

		if rec.Status() != http.StatusOK || rec.overflow || len(rec.body) == 0 {
			return
		}
		raw, err := json.Marshal(cachedResponse{
			Status:      rec.Status(),
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body,
		})
		if err != nil {
			return
		}
		if err := rdb.Set(ctx, key, raw, opts.TTL).Err(); err != nil {
			log.Warn("response cache store failed", zap.Error(err))
		}
	}
}

// PurgeResponseCache deletes every cached response.
func PurgeResponseCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, responseCachePrefix+"*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func readCached(ctx context.Context, rdb *redis.Client, key string) (cachedResponse, bool) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return cachedResponse{}, false
	}
	var hit cachedResponse
	if err := json.Unmarshal(raw, &hit); err != nil {
		return cachedResponse{}, false
	}
	if hit.Status <= 0 {
		hit.Status = http.StatusOK
	}
	if hit.ContentType == "" {
		hit.ContentType = "application/json; charset=utf-8"
	}
	return hit, true
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
