package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/penline/core/internal/config"
	pkgredis "github.com/penline/core/internal/pkg/redis"
	"github.com/penline/core/internal/store/memory"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return newTestAppWithRedis(t, nil)
}

func newTestAppWithRedis(t *testing.T, rc *pkgredis.Client) *App {
	t.Helper()
	cfg, err := config.Parse([]byte("env: test\njwt_secret: test-secret\ndatabase:\n  driver: memory\n"))
	require.NoError(t, err)
	cfg.Upload.Dir = t.TempDir()

	a, err := build(zap.NewNop(), cfg, memory.New(), rc)
	require.NoError(t, err)
	return a
}

type idData struct {
	Data struct {
		ID       string `json:"id"`
		Token    string `json:"token"`
		Slug     string `json:"slug"`
		Comments []struct {
			Content string `json:"content"`
		} `json:"comments"`
	} `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) idData {
	t.Helper()
	var out idData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func call(a *App, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestPingAndNotFound(t *testing.T) {
	a := newTestApp(t)

	w := call(a, http.MethodGet, "/api/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":"pong"}`, w.Body.String())

	w = call(a, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBlogFlow(t *testing.T) {
	a := newTestApp(t)

	w := call(a, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Root", "email": "root@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	token := reg.Data.Token

	w = call(a, http.MethodPost, "/api/categories", token, map[string]string{"name": "Technology", "color": "#3b82f6"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))

	for i := 0; i < 2; i++ {
		w = call(a, http.MethodPost, "/api/posts", token, map[string]string{
			"title": "Hello World", "content": "# Hi", "category": cat.Data.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = call(a, http.MethodGet, "/api/posts/hello-world-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"viewCount":1`)

	w = call(a, http.MethodDelete, "/api/categories/"+cat.Data.ID, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(a, http.MethodGet, "/feed.xml", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Hello World</title>")

	w = call(a, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "penline_posts_created_total 2")
}

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern, host string
		want          bool
	}{
		{"blog.example.com", "blog.example.com", true},
		{"*.example.com", "api.example.com", true},
		{"*.example.com", "example.org", false},
		{"localhost:*", "localhost:5173", true},
		{"localhost:*", "127.0.0.1:5173", false},
		{"*", "anything", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchOriginPattern(tc.pattern, tc.host), tc.pattern+" "+tc.host)
	}

	allow := originMatcher([]string{"*.example.com"})
	assert.True(t, allow("https://www.example.com"))
	assert.False(t, allow("https://evil.com"))
}

func TestRepeatedWritesWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := pkgredis.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	a := newTestAppWithRedis(t, rc)

	w := call(a, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Root", "email": "root@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := decodeData(t, w).Data.Token

	w = call(a, http.MethodPost, "/api/categories", token, map[string]string{"name": "Web Development"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	catID := decodeData(t, w).Data.ID

	w = call(a, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var slugs, ids []string
	for i := 0; i < 2; i++ {
		w = call(a, http.MethodPost, "/api/posts", token, map[string]string{
			"title": "Hello, World!", "content": "same body", "category": catID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		created := decodeData(t, w)
		slugs = append(slugs, created.Data.Slug)
		ids = append(ids, created.Data.ID)
	}
	assert.Equal(t, []string{"hello-world", "hello-world-1"}, slugs)

	w = call(a, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`, "list cache is purged by the writes")

	var last idData
	for i := 0; i < 2; i++ {
		w = call(a, http.MethodPost, "/api/posts/"+ids[0]+"/comments", token, map[string]string{"content": "+1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		last = decodeData(t, w)
	}
	require.Len(t, last.Data.Comments, 2)
	assert.Equal(t, "+1", last.Data.Comments[1].Content)
}
