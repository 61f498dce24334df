package post

import (
	"github.com/gin-gonic/gin"

	"github.com/penline/core/internal/middleware"
	"github.com/penline/core/internal/pkg/pagination"
	"github.com/penline/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /posts. Writes need a token: a missing or invalid one
// is a 401 from authMW, while a caller who is neither the author nor an admin
// gets 403 on PUT and DELETE.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, optionalMW gin.HandlerFunc) {
	posts := rg.Group("/posts")
	posts.GET("", optionalMW, h.list)
	posts.GET("/search", h.search)
	posts.GET("/:id", h.get)

	authed := posts.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/:id", h.update)
	authed.DELETE("/:id", h.delete)
	authed.POST("/:id/comments", h.addComment)
}

func (h *Handler) list(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pq := pagination.FromContext(c)

	views, total, err := h.svc.List(c.Request.Context(), middleware.CurrentIdentity(c), q, pq.Page, pq.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, views, pq.Meta(total))
}

func (h *Handler) search(c *gin.Context) {
	views, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, views)
}

func (h *Handler) get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.Create(c.Request.Context(), middleware.CurrentIdentity(c), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.Update(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c)
}

func (h *Handler) addComment(c *gin.Context) {
	var dto AddCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.AddComment(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}
