package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penline/core/internal/middleware"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/pkg/response"
	"github.com/penline/core/internal/store"
)

const tokenCookie = "token"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)

	authed := auth.Group("", authMW)
	authed.GET("/me", h.me)
	authed.PATCH("/me", h.updateProfile)
	authed.PUT("/password", h.changePassword)
	authed.POST("/logout", h.logout)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Register(c.Request.Context(), dto)
	if err != nil {
		if apperr.IsDuplicate(err, store.FieldEmail) {
			response.BadRequest(c, "Email already registered")
			return
		}
		response.Error(c, err)
		return
	}
	h.setCookie(c, token)
	response.Created(c, authResponse{Token: token, User: toResponse(u)})
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Please provide an email and password")
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			response.UnauthorizedMessage(c, "Invalid credentials")
			return
		}
		response.Error(c, err)
		return
	}
	h.setCookie(c, token)
	response.OK(c, authResponse{Token: token, User: toResponse(u)})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentIdentity(c), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentIdentity(c), dto.OldPassword, dto.NewPassword)
	switch {
	case errors.Is(err, errWrongPassword):
		response.BadRequest(c, "Current password is incorrect")
	case errors.Is(err, errPasswordSameAsOld):
		response.BadRequest(c, "New password must differ from the current one")
	case err != nil:
		response.Error(c, err)
	default:
		response.Deleted(c)
	}
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	response.Deleted(c)
}

func (h *Handler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, token, int(h.svc.tokens.TTL().Seconds()), "/", "", false, true)
}
