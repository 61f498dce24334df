package sql

import (
	"context"

	"gorm.io/gorm"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
)

type categoryStore struct {
	db *gorm.DB
}

func (c *categoryStore) Create(ctx context.Context, cat *models.CategoryModel) error {
	cat.EnsureID()
	return mapWriteError(c.db.WithContext(ctx).Create(cat).Error)
}

func (c *categoryStore) Update(ctx context.Context, cat *models.CategoryModel) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.CategoryModel{}).Where("id = ?", cat.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("category")
		}
		return mapWriteError(tx.Select("*").Omit("created_at").Updates(cat).Error)
	})
}

func (c *categoryStore) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CategoryModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (c *categoryStore) DeleteAll(ctx context.Context) (int64, error) {
	res := c.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CategoryModel{})
	return res.RowsAffected, res.Error
}

func (c *categoryStore) GetByID(ctx context.Context, id string) (*models.CategoryModel, error) {
	return first[models.CategoryModel](ctx, c.db, "id = ?", id)
}

func (c *categoryStore) GetBySlug(ctx context.Context, slug string) (*models.CategoryModel, error) {
	return first[models.CategoryModel](ctx, c.db, "slug = ?", slug)
}

func (c *categoryStore) GetByIDs(ctx context.Context, ids []string) (map[string]*models.CategoryModel, error) {
	return byIDs(ctx, c.db, ids, func(cat *models.CategoryModel) string { return cat.ID })
}

func (c *categoryStore) List(ctx context.Context) ([]*models.CategoryModel, error) {
	out := make([]*models.CategoryModel, 0)
	if err := c.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (c *categoryStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists[models.CategoryModel](ctx, c.db, slug, excludeID)
}
