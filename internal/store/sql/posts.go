package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

type postStore struct {
	db *gorm.DB
}

func (p *postStore) Create(ctx context.Context, post *models.PostModel) error {
	post.EnsureID()
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return mapWriteError(p.db.WithContext(ctx).Create(post).Error)
}

func (p *postStore) Update(ctx context.Context, post *models.PostModel) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.PostModel{}).Where("id = ?", post.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("post")
		}
		if post.Tags == nil {
			post.Tags = models.StringArray{}
		}
		err := tx.Model(&models.PostModel{}).Where("id = ?", post.ID).
			Select(models.EditableColumns).Updates(post).Error
		if err != nil {
			return mapWriteError(err)
		}
		return tx.Where("id = ?", post.ID).Take(post).Error
	})
}

func (p *postStore) Delete(ctx context.Context, id string) error {
	res := p.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PostModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("post")
	}
	return nil
}

func (p *postStore) GetByID(ctx context.Context, id string) (*models.PostModel, error) {
	return first[models.PostModel](ctx, p.db, "id = ?", id)
}

func (p *postStore) GetBySlug(ctx context.Context, slug string) (*models.PostModel, error) {
	return first[models.PostModel](ctx, p.db, "slug = ?", slug)
}

func (p *postStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists[models.PostModel](ctx, p.db, slug, excludeID)
}

func (p *postStore) IncrementViews(ctx context.Context, id string) (*models.PostModel, error) {
	var out *models.PostModel
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PostModel{}).Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var post models.PostModel
		if err := tx.Where("id = ?", id).Take(&post).Error; err != nil {
			return err
		}
		out = &post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendComment locks the row so concurrent appends serialize.
func (p *postStore) AppendComment(ctx context.Context, id string, comment models.Comment) (*models.PostModel, error) {
	var out *models.PostModel
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.PostModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		post.Comments = append(post.Comments, comment)
		post.UpdatedAt = comment.CreatedAt
		if err := tx.Model(&post).Select("comments", "updated_at").Updates(&post).Error; err != nil {
			return err
		}
		out = &post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *postStore) List(ctx context.Context, filter store.PostFilter, page, size int) ([]*models.PostModel, int64, error) {
	q := p.db.WithContext(ctx).Model(&models.PostModel{})
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.IsPublished != nil {
		q = q.Where("is_published = ?", *filter.IsPublished)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + escapeLike(s) + "%"
		q = q.Where("(title LIKE ? OR content LIKE ? OR tags LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	q = q.Order("created_at DESC").Order("id DESC").Offset(store.Offset(page, size))
	if size > 0 {
		q = q.Limit(size)
	}
	posts := make([]*models.PostModel, 0)
	if err := q.Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (p *postStore) Search(ctx context.Context, q string) ([]*models.PostModel, error) {
	like := "%" + escapeLike(strings.ToLower(q)) + "%"
	posts := make([]*models.PostModel, 0)
	err := p.db.WithContext(ctx).
		Where("is_published = ?", true).
		Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(tags) LIKE ?)", like, like, like, like).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

func (p *postStore) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&models.PostModel{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
