package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

type categoryEntry struct {
	category models.CategoryModel
}

type categoryStore struct {
	s    *Store
	byID map[string]*categoryEntry
}

func (c *categoryStore) conflict(cat *models.CategoryModel) error {
	for id, e := range c.byID {
		if id == cat.ID {
			continue
		}
		if e.category.Name == cat.Name {
			return apperr.Duplicate(store.FieldName, nil)
		}
		if e.category.Slug == cat.Slug {
			return apperr.Duplicate(store.FieldSlug, nil)
		}
	}
	return nil
}

func (c *categoryStore) Create(_ context.Context, cat *models.CategoryModel) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	cat.EnsureID()
	if _, ok := c.byID[cat.ID]; ok {
		return apperr.Duplicate("_id", nil)
	}
	if err := c.conflict(cat); err != nil {
		return err
	}
	c.byID[cat.ID] = &categoryEntry{category: *cat}
	return nil
}

func (c *categoryStore) Update(_ context.Context, cat *models.CategoryModel) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	e, ok := c.byID[cat.ID]
	if !ok {
		return apperr.NotFound("category")
	}
	if err := c.conflict(cat); err != nil {
		return err
	}
	e.category = *cat
	return nil
}

func (c *categoryStore) Delete(_ context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return apperr.NotFound("category")
	}
	delete(c.byID, id)
	return nil
}

func (c *categoryStore) DeleteAll(context.Context) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	n := int64(len(c.byID))
	c.byID = map[string]*categoryEntry{}
	return n, nil
}

func (c *categoryStore) GetByID(_ context.Context, id string) (*models.CategoryModel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	if e, ok := c.byID[id]; ok {
		cp := e.category
		return &cp, nil
	}
	return nil, nil
}

func (c *categoryStore) GetBySlug(_ context.Context, slug string) (*models.CategoryModel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	for _, e := range c.byID {
		if e.category.Slug == slug {
			cp := e.category
			return &cp, nil
		}
	}
	return nil, nil
}

func (c *categoryStore) GetByIDs(_ context.Context, ids []string) (map[string]*models.CategoryModel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	out := make(map[string]*models.CategoryModel, len(ids))
	for _, id := range ids {
		if e, ok := c.byID[id]; ok {
			cp := e.category
			out[id] = &cp
		}
	}
	return out, nil
}

func (c *categoryStore) List(context.Context) ([]*models.CategoryModel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	out := make([]*models.CategoryModel, 0, len(c.byID))
	for _, e := range c.byID {
		cp := e.category
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

func (c *categoryStore) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	for id, e := range c.byID {
		if id != excludeID && e.category.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
