package sql

import (
	"context"

	"gorm.io/gorm"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
)

type userStore struct {
	db *gorm.DB
}

func (u *userStore) Create(ctx context.Context, user *models.UserModel) error {
	user.EnsureID()
	return mapWriteError(u.db.WithContext(ctx).Create(user).Error)
}

func (u *userStore) Update(ctx context.Context, user *models.UserModel) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.UserModel{}).Where("id = ?", user.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("user")
		}
		return mapWriteError(tx.Select("*").Omit("created_at").Updates(user).Error)
	})
}

func (u *userStore) GetByID(ctx context.Context, id string) (*models.UserModel, error) {
	return first[models.UserModel](ctx, u.db, "id = ?", id)
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (*models.UserModel, error) {
	return first[models.UserModel](ctx, u.db, "email = ?", email)
}

func (u *userStore) GetByIDs(ctx context.Context, ids []string) (map[string]*models.UserModel, error) {
	return byIDs(ctx, u.db, ids, func(user *models.UserModel) string { return user.ID })
}

func (u *userStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := u.db.WithContext(ctx).Model(&models.UserModel{}).Count(&n).Error
	return n, err
}
