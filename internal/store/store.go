// Package store declares the persistence contracts shared by the document,
// relational and in-memory backends.
//
// Lookups return (nil, nil) when nothing matches. Mutations of a missing
// record return apperr.NotFoundError. Unique index violations surface as
// apperr.DuplicateKeyError naming the offending field.
package store

import (
	"context"

	"github.com/penline/core/internal/models"
)

// Unique fields reported in DuplicateKeyError.
const (
	FieldSlug  = "slug"
	FieldName  = "name"
	FieldEmail = "email"
)

// PostFilter narrows PostStore.List.
type PostFilter struct {
	CategoryID  string
	Search      string
	IsPublished *bool
}

// PostStore persists posts and their embedded comments.
type PostStore interface {
	Create(ctx context.Context, post *models.PostModel) error
	// Update writes the editable fields of post (see models.EditableColumns)
	// and refreshes post with the stored document, so view counts and
	// comments recorded meanwhile are kept.
	Update(ctx context.Context, post *models.PostModel) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.PostModel, error)
	GetBySlug(ctx context.Context, slug string) (*models.PostModel, error)
	// SlugExists reports whether another post than excludeID holds slug.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	// IncrementViews atomically adds one to the view count and returns the
	// post as stored afterwards.
	IncrementViews(ctx context.Context, id string) (*models.PostModel, error)
	// AppendComment atomically adds comment to the end of the comment list
	// and returns the post as stored afterwards.
	AppendComment(ctx context.Context, id string, comment models.Comment) (*models.PostModel, error)
	// List returns one page of posts, newest first, and the total match count.
	List(ctx context.Context, filter PostFilter, page, size int) ([]*models.PostModel, int64, error)
	// Search matches q case-insensitively against title, content, excerpt and
	// tags of published posts, newest first.
	Search(ctx context.Context, q string) ([]*models.PostModel, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	Create(ctx context.Context, category *models.CategoryModel) error
	Update(ctx context.Context, category *models.CategoryModel) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*models.CategoryModel, error)
	GetBySlug(ctx context.Context, slug string) (*models.CategoryModel, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.CategoryModel, error)
	// List returns every category ordered by name.
	List(ctx context.Context) ([]*models.CategoryModel, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.UserModel) error
	Update(ctx context.Context, user *models.UserModel) error
	GetByID(ctx context.Context, id string) (*models.UserModel, error)
	GetByEmail(ctx context.Context, email string) (*models.UserModel, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.UserModel, error)
	Count(ctx context.Context) (int64, error)
}

// Store bundles the per-entity stores of one backend.
type Store interface {
	Posts() PostStore
	Categories() CategoryStore
	Users() UserStore
	Close(ctx context.Context) error
}

// Offset converts a 1-based page into a row offset.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
