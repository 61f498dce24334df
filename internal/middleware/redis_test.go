package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAnonymousCallers(t *testing.T) {
	_, rdb := newRedis(t)
	r := gin.New()
	r.Use(RateLimit(rdb, 2, time.Minute, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	w := do(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	r := gin.New()
	r.Use(RateLimit(rdb, 1, time.Minute, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
}

func postWithKey(r http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(idempotenceHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotenceRejectsRepeatedKey(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	r := gin.New()
	r.Use(Idempotence(rdb))
	r.POST("/api/posts", func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, postWithKey(r, "k1", `{"title":"a"}`).Code)
	assert.Equal(t, http.StatusConflict, postWithKey(r, "k1", `{"title":"a"}`).Code)
	assert.Equal(t, http.StatusCreated, postWithKey(r, "k2", `{"title":"a"}`).Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotenceIgnoresRequestsWithoutKey(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	r := gin.New()
	r.Use(Idempotence(rdb))
	r.POST("/api/posts", func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, postWithKey(r, "", `{"title":"same"}`).Code)
	}
	assert.Equal(t, 3, calls)
}

func TestIdempotenceReleasesFailedRequests(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	r := gin.New()
	r.Use(Idempotence(rdb))
	r.POST("/api/posts", func(c *gin.Context) {
		calls++
		c.Status(http.StatusBadRequest)
	})

	postWithKey(r, "k1", `{}`)
	postWithKey(r, "k1", `{}`)
	assert.Equal(t, 2, calls)
}

func newCachedRouter(t *testing.T) (*gin.Engine, *redis.Client, *int) {
	t.Helper()
	_, rdb := newRedis(t)
	hits := new(int)
	r := gin.New()
	r.Use(ResponseCache(rdb, CacheOptions{TTL: time.Minute, Routes: []string{"/api/posts"}}, zap.NewNop()))
	r.GET("/api/posts", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"n": *hits})
	})
	r.GET("/api/posts/:id", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"n": *hits})
	})
	r.POST("/api/posts", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r, rdb, hits
}

func TestResponseCacheServesListedRoutes(t *testing.T) {
	r, _, hits := newCachedRouter(t)

	first := do(r, http.MethodGet, "/api/posts?page=1", "")
	assert.Equal(t, "miss", first.Header().Get(cacheStatusHeader))
	second := do(r, http.MethodGet, "/api/posts?page=1", "")
	assert.Equal(t, "hit", second.Header().Get(cacheStatusHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *hits)

	do(r, http.MethodGet, "/api/posts?page=2", "")
	assert.Equal(t, 2, *hits)
}

func TestResponseCacheSkipsUnlistedRoutes(t *testing.T) {
	r, _, hits := newCachedRouter(t)

	do(r, http.MethodGet, "/api/posts/abc", "")
	w := do(r, http.MethodGet, "/api/posts/abc", "")
	assert.Empty(t, w.Header().Get(cacheStatusHeader))
	assert.Equal(t, 2, *hits)
}

func TestResponseCachePurgedByWrites(t *testing.T) {
	r, rdb, hits := newCachedRouter(t)

	do(r, http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/posts", `{}`).Code)

	keys, err := rdb.Keys(t.Context(), responseCachePrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	do(r, http.MethodGet, "/api/posts", "")
	assert.Equal(t, 2, *hits)
}
