// Package memory is a process-local store used by tests and the "memory"
// database driver. It enforces the same unique fields as the real backends.
package memory

import (
	"context"
	"sync"

	"github.com/penline/core/internal/store"
)

// Store keeps every entity in maps guarded by one mutex.
type Store struct {
	mu  sync.RWMutex
	seq int64

	posts      *postStore
	categories *categoryStore
	users      *userStore
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.posts = &postStore{s: s, byID: map[string]*postEntry{}}
	s.categories = &categoryStore{s: s, byID: map[string]*categoryEntry{}}
	s.users = &userStore{s: s, byID: map[string]*userEntry{}}
	return s
}

func (s *Store) Posts() store.PostStore          { return s.posts }
func (s *Store) Categories() store.CategoryStore { return s.categories }
func (s *Store) Users() store.UserStore          { return s.users }

func (s *Store) Close(context.Context) error { return nil }

// next returns an increasing insertion sequence; callers hold s.mu.
func (s *Store) next() int64 {
	s.seq++
	return s.seq
}
