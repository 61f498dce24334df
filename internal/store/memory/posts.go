package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

type postEntry struct {
	seq  int64
	post *models.PostModel
}

type postStore struct {
	s    *Store
	byID map[string]*postEntry
}

func (p *postStore) slugTaken(slug, excludeID string) bool {
	for id, e := range p.byID {
		if id != excludeID && e.post.Slug == slug {
			return true
		}
	}
	return false
}

func (p *postStore) Create(_ context.Context, post *models.PostModel) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	post.EnsureID()
	if _, ok := p.byID[post.ID]; ok {
		return apperr.Duplicate("_id", nil)
	}
	if p.slugTaken(post.Slug, "") {
		return apperr.Duplicate(store.FieldSlug, nil)
	}
	p.byID[post.ID] = &postEntry{seq: p.s.next(), post: post.Clone()}
	return nil
}

func (p *postStore) Update(_ context.Context, post *models.PostModel) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	e, ok := p.byID[post.ID]
	if !ok {
		return apperr.NotFound("post")
	}
	if p.slugTaken(post.Slug, post.ID) {
		return apperr.Duplicate(store.FieldSlug, nil)
	}
	updated := e.post.Clone()
	updated.ApplyEdits(post)
	e.post = updated
	*post = *updated.Clone()
	return nil
}

func (p *postStore) Delete(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.byID[id]; !ok {
		return apperr.NotFound("post")
	}
	delete(p.byID, id)
	return nil
}

func (p *postStore) GetByID(_ context.Context, id string) (*models.PostModel, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	if e, ok := p.byID[id]; ok {
		return e.post.Clone(), nil
	}
	return nil, nil
}

func (p *postStore) GetBySlug(_ context.Context, slug string) (*models.PostModel, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	for _, e := range p.byID {
		if e.post.Slug == slug {
			return e.post.Clone(), nil
		}
	}
	return nil, nil
}

func (p *postStore) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	return p.slugTaken(slug, excludeID), nil
}

func (p *postStore) IncrementViews(_ context.Context, id string) (*models.PostModel, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	e, ok := p.byID[id]
	if !ok {
		return nil, nil
	}
	e.post.ViewCount++
	return e.post.Clone(), nil
}

func (p *postStore) AppendComment(_ context.Context, id string, comment models.Comment) (*models.PostModel, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	e, ok := p.byID[id]
	if !ok {
		return nil, nil
	}
	e.post.Comments = append(e.post.Comments, comment)
	e.post.UpdatedAt = comment.CreatedAt
	return e.post.Clone(), nil
}

func (p *postStore) List(_ context.Context, filter store.PostFilter, page, size int) ([]*models.PostModel, int64, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := p.newestFirst(func(post *models.PostModel) bool {
		if filter.CategoryID != "" && post.CategoryID != filter.CategoryID {
			return false
		}
		if filter.IsPublished != nil && post.IsPublished != *filter.IsPublished {
			return false
		}
		if search != "" && !matchesAny(search, post.Title, post.Content, strings.Join(post.Tags, " ")) {
			return false
		}
		return true
	})

	total := int64(len(matched))
	start := store.Offset(page, size)
	if start >= len(matched) {
		return []*models.PostModel{}, total, nil
	}
	end := start + size
	if size <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (p *postStore) Search(_ context.Context, q string) ([]*models.PostModel, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	needle := strings.ToLower(q)
	return p.newestFirst(func(post *models.PostModel) bool {
		if !post.IsPublished {
			return false
		}
		if matchesAny(needle, post.Title, post.Content, post.Excerpt) {
			return true
		}
		for _, tag := range post.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		return false
	}), nil
}

func (p *postStore) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	var n int64
	for _, e := range p.byID {
		if e.post.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// newestFirst returns clones of the posts accepted by keep; callers hold the lock.
func (p *postStore) newestFirst(keep func(*models.PostModel) bool) []*models.PostModel {
	entries := make([]*postEntry, 0, len(p.byID))
	for _, e := range p.byID {
		if keep(e.post) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]*models.PostModel, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.post.Clone())
	}
	return out
}

func matchesAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
