package post

import (
	"time"

	"github.com/penline/core/internal/models"
)

// CreatePostDTO is the request body for creating a post. Required fields are
// checked by the service so every problem is reported at once.
type CreatePostDTO struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Excerpt       string   `json:"excerpt"`
	Tags          []string `json:"tags"`
	IsPublished   *bool    `json:"isPublished"`
	FeaturedImage string   `json:"featuredImage"`
}

// UpdatePostDTO is the request body for updating a post (all fields optional).
type UpdatePostDTO struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	Category      *string   `json:"category"`
	Excerpt       *string   `json:"excerpt"`
	Tags          *[]string `json:"tags"`
	IsPublished   *bool     `json:"isPublished"`
	FeaturedImage *string   `json:"featuredImage"`
}

// AddCommentDTO is the request body for adding a comment.
type AddCommentDTO struct {
	Content string `json:"content"`
}

// ListQuery holds query params for listing posts.
type ListQuery struct {
	Category    string  `form:"category"`
	Search      string  `form:"search"`
	IsPublished *string `form:"isPublished"`
}

// AuthorView is a user reduced to what readers see.
type AuthorView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio,omitempty"`
}

// CategoryView is a category reduced to what post lists show.
type CategoryView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type CommentView struct {
	ID        string      `json:"id"`
	User      *AuthorView `json:"user"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PostView is the API response shape for a post. Author and category are
// nil when the referenced record no longer exists.
type PostView struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	URL           string        `json:"url"`
	Content       string        `json:"content"`
	Excerpt       string        `json:"excerpt"`
	FeaturedImage string        `json:"featuredImage"`
	Author        *AuthorView   `json:"author"`
	Category      *CategoryView `json:"category"`
	Tags          []string      `json:"tags"`
	IsPublished   bool          `json:"isPublished"`
	ViewCount     int64         `json:"viewCount"`
	Comments      []CommentView `json:"comments"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func newAuthorView(u *models.UserModel, withBio bool) *AuthorView {
	if u == nil {
		return nil
	}
	v := &AuthorView{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
	if withBio {
		v.Bio = u.Bio
	}
	return v
}

func newCategoryView(c *models.CategoryModel) *CategoryView {
	if c == nil {
		return nil
	}
	return &CategoryView{ID: c.ID, Name: c.Name, Color: c.Color, Slug: c.Slug}
}
