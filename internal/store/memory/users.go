package memory

import (
	"context"
	"strings"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

type userEntry struct {
	user models.UserModel
}

type userStore struct {
	s    *Store
	byID map[string]*userEntry
}

func (u *userStore) emailTaken(email, excludeID string) bool {
	for id, e := range u.byID {
		if id != excludeID && strings.EqualFold(e.user.Email, email) {
			return true
		}
	}
	return false
}

func (u *userStore) Create(_ context.Context, user *models.UserModel) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user.EnsureID()
	if _, ok := u.byID[user.ID]; ok {
		return apperr.Duplicate("_id", nil)
	}
	if u.emailTaken(user.Email, "") {
		return apperr.Duplicate(store.FieldEmail, nil)
	}
	u.byID[user.ID] = &userEntry{user: *user}
	return nil
}

func (u *userStore) Update(_ context.Context, user *models.UserModel) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	e, ok := u.byID[user.ID]
	if !ok {
		return apperr.NotFound("user")
	}
	if u.emailTaken(user.Email, user.ID) {
		return apperr.Duplicate(store.FieldEmail, nil)
	}
	e.user = *user
	return nil
}

func (u *userStore) GetByID(_ context.Context, id string) (*models.UserModel, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	if e, ok := u.byID[id]; ok {
		cp := e.user
		return &cp, nil
	}
	return nil, nil
}

func (u *userStore) GetByEmail(_ context.Context, email string) (*models.UserModel, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, e := range u.byID {
		if strings.EqualFold(e.user.Email, email) {
			cp := e.user
			return &cp, nil
		}
	}
	return nil, nil
}

func (u *userStore) GetByIDs(_ context.Context, ids []string) (map[string]*models.UserModel, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	out := make(map[string]*models.UserModel, len(ids))
	for _, id := range ids {
		if e, ok := u.byID[id]; ok {
			cp := e.user
			out[id] = &cp
		}
	}
	return out, nil
}

func (u *userStore) Count(context.Context) (int64, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	return int64(len(u.byID)), nil
}
