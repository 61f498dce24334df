package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/jwt"
	"github.com/penline/core/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *jwt.Manager, *models.UserModel) {
	t.Helper()
	st := memory.New()
	user := &models.UserModel{Name: "Ada", Email: "ada@example.com", Role: models.RoleUser}
	require.NoError(t, st.Users().Create(context.Background(), user))

	tokens := jwt.New("secret", time.Hour)
	authn := NewAuthenticator(tokens, st.Users())

	r := gin.New()
	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, CurrentIdentity(c).ID)
	}
	r.GET("/private", authn.Auth(), whoami)
	r.GET("/public", authn.OptionalAuth(), whoami)
	r.GET("/admin", authn.Auth(), RequireAdmin(), whoami)
	return r, tokens, user
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiresValidToken(t *testing.T) {
	r, tokens, user := newAuthRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "garbage").Code)

	token, err := tokens.Sign(user.ID, user.Role)
	require.NoError(t, err)
	w := get(r, "/private", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID, w.Body.String())
}

func TestAuthRejectsDeletedAccount(t *testing.T) {
	r, tokens, _ := newAuthRouter(t)
	token, err := tokens.Sign(models.NewID(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", token).Code)
}

func TestOptionalAuth(t *testing.T) {
	r, tokens, user := newAuthRouter(t)

	w := get(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	token, err := tokens.Sign(user.ID, user.Role)
	require.NoError(t, err)
	assert.Equal(t, user.ID, get(r, "/public", token).Body.String())
}

func TestRequireAdminUsesStoredRole(t *testing.T) {
	r, tokens, user := newAuthRouter(t)
	// A forged admin claim does not help; the role is read from the account.
	token, err := tokens.Sign(user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", token).Code)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Empty(t, NormalizeToken("   "))
}

func TestIdempotentRoutes(t *testing.T) {
	assert.True(t, idempotent(http.MethodPost, "/api/posts"))
	assert.True(t, idempotent(http.MethodPut, "/api/posts/abc"))
	assert.False(t, idempotent(http.MethodGet, "/api/posts"))
	assert.False(t, idempotent(http.MethodDelete, "/api/posts/abc"))
	assert.False(t, idempotent(http.MethodPost, "/api/auth/login/"))
}

func TestIdempotenceKeyNeedsClientHeader(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"title":"x"}`))
	assert.Empty(t, idempotenceKey(c))

	c.Request.Header.Set(idempotenceHeader, "client-key")
	key := idempotenceKey(c)
	assert.Len(t, key, 64)

	c.Request.Header.Set("Authorization", "Bearer other-caller")
	assert.NotEqual(t, key, idempotenceKey(c))
}
