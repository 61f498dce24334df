package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/penline/core/internal/middleware"
	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/pkg/jwt"
	"github.com/penline/core/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := NewService(st.Users(), jwt.New("secret", time.Hour), zap.NewNop())
	svc.cost = bcrypt.MinCost
	return svc, st
}

func TestRegisterFirstAccountIsAdmin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	token, first, err := svc.Register(ctx, RegisterDTO{Name: "Root", Email: "Root@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, "root@example.com", first.Email)
	assert.Equal(t, models.DefaultAvatar, first.Avatar)
	assert.NotEqual(t, "secret1", first.Password)

	_, second, err := svc.Register(ctx, RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, second.Role)

	_, _, err = svc.Register(ctx, RegisterDTO{Name: "Copy", Email: "ADA@example.com", Password: "secret3"})
	assert.True(t, apperr.IsDuplicate(err, "email"))
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, u, err := svc.Register(ctx, RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	token, got, err := svc.Login(ctx, " ADA@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	claims, err := svc.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, errInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, errInvalidCredentials)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, u, err := svc.Register(ctx, RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	caller := models.Identity{ID: u.ID, Role: u.Role}

	bio := "Writes about engines"
	updated, err := svc.UpdateProfile(ctx, caller, UpdateProfileDTO{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, "Ada", updated.Name)

	empty := " "
	_, err = svc.UpdateProfile(ctx, caller, UpdateProfileDTO{Name: &empty})
	assert.True(t, apperr.IsValidation(err))

	assert.ErrorIs(t, svc.ChangePassword(ctx, caller, "nope", "secret2"), errWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, caller, "secret1", "secret1"), errPasswordSameAsOld)
	require.NoError(t, svc.ChangePassword(ctx, caller, "secret1", "secret2"))

	_, _, err = svc.Login(ctx, "ada@example.com", "secret2")
	require.NoError(t, err)
}

func TestAuthRoutes(t *testing.T) {
	svc, st := newService(t)
	authn := middleware.NewAuthenticator(svc.tokens, st.Users())
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"), authn.Auth())

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ada", "email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		Data authResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, "admin", registered.Data.User.Role)
	assert.NotEmpty(t, w.Result().Cookies())

	w = do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")

	w = do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	w = do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data authResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	token := login.Data.Token

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/auth/me", "", nil).Code)
	w = do(http.MethodPatch, "/api/auth/me", token, gin.H{"bio": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bio":"hello"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ada@example.com"`)
}
