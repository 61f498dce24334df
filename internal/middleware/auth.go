package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/jwt"
	"github.com/penline/core/internal/pkg/response"
	"github.com/penline/core/internal/store"
)

const ContextKeyIdentity = "identity"

// Authenticator resolves bearer tokens into identities. The role comes from
// the stored account so demotions apply to tokens already issued.
type Authenticator struct {
	tokens *jwt.Manager
	users  store.UserStore
}

func NewAuthenticator(tokens *jwt.Manager, users store.UserStore) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Auth rejects requests without a valid token with 401.
func (a *Authenticator) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.resolve(c)
		if !ok {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyIdentity, id)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := a.resolve(c); ok {
			c.Set(ContextKeyIdentity, id)
		}
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).IsAdmin() {
			response.Forbidden(c, "User role is not authorized to access this route")
			return
		}
		c.Next()
	}
}

func (a *Authenticator) resolve(c *gin.Context) (models.Identity, bool) {
	token := extractToken(c)
	if token == "" {
		return models.Identity{}, false
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return models.Identity{}, false
	}
	user, err := a.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || user == nil {
		return models.Identity{}, false
	}
	return models.Identity{ID: user.ID, Role: user.Role}, true
}

// CurrentIdentity returns the caller, or the zero Identity for anonymous requests.
func CurrentIdentity(c *gin.Context) models.Identity {
	v, _ := c.Get(ContextKeyIdentity)
	id, _ := v.(models.Identity)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentIdentity(c).ID != ""
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if raw, err := c.Cookie("token"); err == nil {
		return NormalizeToken(raw)
	}
	return ""
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
