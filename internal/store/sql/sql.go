// Package sql is the relational backend built on GORM. Comments live in a
// JSON column of the posts row.
package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

const mysqlDuplicateEntry = 1062

// Store wraps one GORM handle.
type Store struct {
	db *gorm.DB

	posts      *postStore
	categories *categoryStore
	users      *userStore
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		posts:      &postStore{db: db},
		categories: &categoryStore{db: db},
		users:      &userStore{db: db},
	}
}

// Migrate creates or updates the tables and unique indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserModel{},
		&models.CategoryModel{},
		&models.PostModel{},
	)
}

func (s *Store) Posts() store.PostStore          { return s.posts }
func (s *Store) Categories() store.CategoryStore { return s.categories }
func (s *Store) Users() store.UserStore          { return s.users }

// DB exposes the handle for maintenance commands and tests.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mapWriteError converts unique violations into apperr.DuplicateKeyError.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry:
		return apperr.Duplicate(duplicateField(myErr.Message), err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate(duplicateField(err.Error()), err)
	}
	return err
}

// duplicateField extracts the column from "Duplicate entry 'x' for key 'posts.idx_posts_slug'".
func duplicateField(msg string) string {
	i := strings.LastIndex(msg, "for key ")
	if i < 0 {
		return ""
	}
	key := strings.Trim(msg[i+len("for key "):], "'` ")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	for _, field := range []string{store.FieldSlug, store.FieldEmail, store.FieldName} {
		if strings.HasSuffix(key, "_"+field) || key == field {
			return field
		}
	}
	if key == "PRIMARY" {
		return "_id"
	}
	return key
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	err := db.WithContext(ctx).Where(query, args...).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func slugExists[T any](ctx context.Context, db *gorm.DB, slug, excludeID string) (bool, error) {
	q := db.WithContext(ctx).Model(new(T)).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

func byIDs[T any](ctx context.Context, db *gorm.DB, ids []string, key func(*T) string) (map[string]*T, error) {
	ids = store.UniqueIDs(ids)
	out := make(map[string]*T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*T
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[key(row)] = row
	}
	return out, nil
}
