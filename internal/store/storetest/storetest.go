// Package storetest holds behavioural tests every store.Store backend must pass.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
)

// Factory returns an empty store; it may register cleanup on t.
type Factory func(t *testing.T) store.Store

// Run exercises the full store contract against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("PostCreateAndLookup", func(t *testing.T) { testPostCreateAndLookup(t, newStore(t)) })
	t.Run("PostDuplicateSlug", func(t *testing.T) { testPostDuplicateSlug(t, newStore(t)) })
	t.Run("PostUpdate", func(t *testing.T) { testPostUpdate(t, newStore(t)) })
	t.Run("PostUpdateKeepsCounters", func(t *testing.T) { testPostUpdateKeepsCounters(t, newStore(t)) })
	t.Run("PostIncrementViews", func(t *testing.T) { testPostIncrementViews(t, newStore(t)) })
	t.Run("PostAppendComment", func(t *testing.T) { testPostAppendComment(t, newStore(t)) })
	t.Run("PostListAndSearch", func(t *testing.T) { testPostListAndSearch(t, newStore(t)) })
	t.Run("PostDelete", func(t *testing.T) { testPostDelete(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newPost(title, slug string, at time.Time) *models.PostModel {
	p := &models.PostModel{
		Title:         title,
		Slug:          slug,
		Content:       "content of " + title,
		Excerpt:       "excerpt of " + title,
		FeaturedImage: models.DefaultFeaturedImage,
		AuthorID:      models.NewID(),
		CategoryID:    models.NewID(),
		Tags:          models.StringArray{},
		IsPublished:   true,
		Comments:      []models.Comment{},
	}
	p.Touch(at)
	return p
}

func testPostCreateAndLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newPost("Hello World", "hello-world", base)
	p.Tags = models.StringArray{"go", "web"}
	require.NoError(t, s.Posts().Create(ctx, p))
	require.True(t, models.IsID(p.ID))

	byID, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Hello World", byID.Title)
	assert.Equal(t, []string{"go", "web"}, []string(byID.Tags))

	bySlug, err := s.Posts().GetBySlug(ctx, "hello-world")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, p.ID, bySlug.ID)

	missing, err := s.Posts().GetByID(ctx, models.NewID())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = s.Posts().GetBySlug(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testPostDuplicateSlug(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := newPost("Hello World", "hello-world", base)
	require.NoError(t, s.Posts().Create(ctx, first))

	err := s.Posts().Create(ctx, newPost("Hello World", "hello-world", base))
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err, store.FieldSlug), "got %v", err)

	taken, err := s.Posts().SlugExists(ctx, "hello-world", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.Posts().SlugExists(ctx, "hello-world", first.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own document is excluded")
}

func testPostUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := newPost("A", "a", base)
	b := newPost("B", "b", base.Add(time.Minute))
	require.NoError(t, s.Posts().Create(ctx, a))
	require.NoError(t, s.Posts().Create(ctx, b))

	a.Title = "A2"
	a.Slug = "a2"
	a.Tags = models.StringArray{"x"}
	require.NoError(t, s.Posts().Update(ctx, a))

	got, err := s.Posts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Title)
	assert.Equal(t, "a2", got.Slug)
	assert.Equal(t, []string{"x"}, []string(got.Tags))

	b.Slug = "a2"
	err = s.Posts().Update(ctx, b)
	assert.True(t, apperr.IsDuplicate(err, store.FieldSlug), "got %v", err)

	ghost := newPost("Ghost", "ghost", base)
	ghost.ID = models.NewID()
	assert.True(t, apperr.IsNotFound(s.Posts().Update(ctx, ghost)))
}

func testPostUpdateKeepsCounters(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newPost("Kept", "kept", base)
	require.NoError(t, s.Posts().Create(ctx, p))

	stale, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)

	_, err = s.Posts().IncrementViews(ctx, p.ID)
	require.NoError(t, err)
	_, err = s.Posts().AppendComment(ctx, p.ID, models.Comment{
		ID: models.NewID(), UserID: models.NewID(), Content: "first", CreatedAt: base,
	})
	require.NoError(t, err)

	stale.Title = "Kept again"
	stale.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.Posts().Update(ctx, stale))
	assert.Equal(t, int64(1), stale.ViewCount, "caller copy is refreshed")

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept again", got.Title)
	assert.Equal(t, int64(1), got.ViewCount)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "first", got.Comments[0].Content)
}

func testPostIncrementViews(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newPost("Views", "views", base)
	require.NoError(t, s.Posts().Create(ctx, p))

	var last *models.PostModel
	for i := 0; i < 5; i++ {
		var err error
		last, err = s.Posts().IncrementViews(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.EqualValues(t, i+1, last.ViewCount)
	}

	stored, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stored.ViewCount)

	missing, err := s.Posts().IncrementViews(ctx, models.NewID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testPostAppendComment(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newPost("Comments", "comments", base)
	require.NoError(t, s.Posts().Create(ctx, p))

	for i := 0; i < 3; i++ {
		c := models.Comment{
			ID:        models.NewID(),
			UserID:    models.NewID(),
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		got, err := s.Posts().AppendComment(ctx, p.ID, c)
		require.NoError(t, err)
		require.Len(t, got.Comments, i+1)
	}

	stored, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 3)
	for i, c := range stored.Comments {
		assert.Equal(t, fmt.Sprintf("comment %d", i), c.Content)
	}

	missing, err := s.Posts().AppendComment(ctx, models.NewID(), models.Comment{ID: models.NewID(), Content: "x"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testPostListAndSearch(t *testing.T, s store.Store) {
	ctx := context.Background()
	category := models.NewID()

	old := newPost("Old Golang notes", "old", base)
	old.CategoryID = category
	mid := newPost("Draft", "draft", base.Add(time.Hour))
	mid.IsPublished = false
	mid.CategoryID = category
	recent := newPost("Recent", "recent", base.Add(2*time.Hour))
	recent.Tags = models.StringArray{"GoLang"}
	for _, p := range []*models.PostModel{old, mid, recent} {
		require.NoError(t, s.Posts().Create(ctx, p))
	}

	all, total, err := s.Posts().List(ctx, store.PostFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"recent", "draft", "old"}, slugs(all))

	page2, total, err := s.Posts().List(ctx, store.PostFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"old"}, slugs(page2))

	published := true
	pub, total, err := s.Posts().List(ctx, store.PostFilter{IsPublished: &published}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"recent", "old"}, slugs(pub))

	byCat, _, err := s.Posts().List(ctx, store.PostFilter{CategoryID: category}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "old"}, slugs(byCat))

	found, err := s.Posts().Search(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, []string{"recent", "old"}, slugs(found))

	found, err = s.Posts().Search(ctx, "DRAFT")
	require.NoError(t, err)
	assert.Empty(t, found, "unpublished posts are not searchable")

	n, err := s.Posts().CountByCategory(ctx, category)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func testPostDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := newPost("Doomed", "doomed", base)
	require.NoError(t, s.Posts().Create(ctx, p))
	require.NoError(t, s.Posts().Delete(ctx, p.ID))

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, apperr.IsNotFound(s.Posts().Delete(ctx, p.ID)))
}

func newCategory(name, slug string) *models.CategoryModel {
	return &models.CategoryModel{
		Base:  models.Base{CreatedAt: base},
		Name:  name,
		Slug:  slug,
		Color: models.DefaultCategoryColor,
	}
}

func testCategories(t *testing.T, s store.Store) {
	ctx := context.Background()
	react := newCategory("React", "react")
	design := newCategory("Design", "design")
	require.NoError(t, s.Categories().Create(ctx, react))
	require.NoError(t, s.Categories().Create(ctx, design))

	err := s.Categories().Create(ctx, newCategory("React", "react-2"))
	assert.True(t, apperr.IsDuplicate(err, store.FieldName), "got %v", err)
	err = s.Categories().Create(ctx, newCategory("Reactive", "react"))
	assert.True(t, apperr.IsDuplicate(err, store.FieldSlug), "got %v", err)

	list, err := s.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Design", list[0].Name)
	assert.Equal(t, "React", list[1].Name)

	bySlug, err := s.Categories().GetBySlug(ctx, "design")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, design.ID, bySlug.ID)

	byIDs, err := s.Categories().GetByIDs(ctx, []string{react.ID, models.NewID()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
	assert.Equal(t, "React", byIDs[react.ID].Name)

	react.Name = "React.js"
	react.Slug = "reactjs"
	require.NoError(t, s.Categories().Update(ctx, react))
	taken, err := s.Categories().SlugExists(ctx, "reactjs", react.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = s.Categories().SlugExists(ctx, "reactjs", "")
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, s.Categories().Delete(ctx, design.ID))
	assert.True(t, apperr.IsNotFound(s.Categories().Delete(ctx, design.ID)))

	n, err := s.Categories().DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := &models.UserModel{
		Base:     models.Base{CreatedAt: base},
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hash",
		Avatar:   models.DefaultAvatar,
		Role:     models.RoleAdmin,
	}
	require.NoError(t, s.Users().Create(ctx, u))

	dup := *u
	dup.ID = ""
	err := s.Users().Create(ctx, &dup)
	assert.True(t, apperr.IsDuplicate(err, store.FieldEmail), "got %v", err)

	got, err := s.Users().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash", got.Password)
	assert.True(t, got.IsAdmin())

	got.Bio = "first programmer"
	require.NoError(t, s.Users().Update(ctx, got))
	again, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "first programmer", again.Bio)

	byIDs, err := s.Users().GetByIDs(ctx, []string{u.ID})
	require.NoError(t, err)
	assert.Contains(t, byIDs, u.ID)

	n, err := s.Users().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func slugs(posts []*models.PostModel) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}
