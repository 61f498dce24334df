package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/pkg/metrics"
	"github.com/penline/core/internal/pkg/slug"
	"github.com/penline/core/internal/store"
)

// maxSlugAttempts bounds how often a write is retried after the store
// rejects its slug as taken by a concurrent writer.
const maxSlugAttempts = 5

// Service implements the post workflow on top of the stores.
type Service struct {
	posts      store.PostStore
	categories store.CategoryStore
	users      store.UserStore
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(st store.Store, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		posts:      st.Posts(),
		categories: st.Categories(),
		users:      st.Users(),
		logger:     logger.Named("PostService"),
		metrics:    m,
		now:        time.Now,
	}
}

// List returns one page of posts, newest first. Callers other than admins
// only see published posts unless they explicitly ask for isPublished=false;
// admins are filtered only when they pass the parameter.
func (s *Service) List(ctx context.Context, caller models.Identity, q ListQuery, page, size int) ([]PostView, int64, error) {
	filter := store.PostFilter{Search: strings.TrimSpace(q.Search)}
	if q.IsPublished != nil || !caller.IsAdmin() {
		published := q.IsPublished == nil || *q.IsPublished != "false"
		filter.IsPublished = &published
	}

	if category := strings.TrimSpace(q.Category); category != "" {
		id, ok, err := s.resolveCategoryID(ctx, category)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return []PostView{}, 0, nil
		}
		filter.CategoryID = id
	}

	list, total, err := s.posts.List(ctx, filter, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.present(ctx, list, false)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// resolveCategoryID accepts a category id or slug.
func (s *Service) resolveCategoryID(ctx context.Context, ref string) (string, bool, error) {
	if models.IsID(ref) {
		return ref, true, nil
	}
	cat, err := s.categories.GetBySlug(ctx, ref)
	if err != nil {
		return "", false, fmt.Errorf("resolve category: %w", err)
	}
	if cat == nil {
		return "", false, nil
	}
	return cat.ID, true, nil
}

// Search matches q against published posts.
func (s *Service) Search(ctx context.Context, q string) ([]PostView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("Please provide a search query")
	}
	list, err := s.posts.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return s.present(ctx, list, false)
}

// Get fetches a post by id or slug and counts the view. The returned post
// carries the incremented count.
func (s *Service) Get(ctx context.Context, identifier string) (*PostView, error) {
	post, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("post")
	}

	viewed, err := s.posts.IncrementViews(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	if viewed == nil {
		return nil, apperr.NotFound("post")
	}
	s.metrics.PostViews.Inc()
	return s.presentOne(ctx, viewed, true)
}

func (s *Service) lookup(ctx context.Context, identifier string) (*models.PostModel, error) {
	identifier = strings.TrimSpace(identifier)
	if models.IsID(identifier) {
		post, err := s.posts.GetByID(ctx, identifier)
		if err != nil || post != nil {
			return post, err
		}
	}
	return s.posts.GetBySlug(ctx, identifier)
}

// Create validates the input, assigns a unique slug and persists the post
// authored by caller.
func (s *Service) Create(ctx context.Context, caller models.Identity, dto CreatePostDTO) (*PostView, error) {
	post := &models.PostModel{
		Title:         strings.TrimSpace(dto.Title),
		Content:       dto.Content,
		Excerpt:       strings.TrimSpace(dto.Excerpt),
		FeaturedImage: strings.TrimSpace(dto.FeaturedImage),
		AuthorID:      caller.ID,
		CategoryID:    strings.TrimSpace(dto.Category),
		Tags:          models.NormalizeTags(dto.Tags),
		IsPublished:   true,
		Comments:      []models.Comment{},
	}
	if dto.IsPublished != nil {
		post.IsPublished = *dto.IsPublished
	}
	if post.FeaturedImage == "" {
		post.FeaturedImage = models.DefaultFeaturedImage
	}
	if post.Excerpt == "" {
		post.Excerpt = DeriveExcerpt(post.Content)
	}

	if err := s.validate(ctx, post); err != nil {
		return nil, err
	}
	post.Touch(s.now())

	err := s.withSlug(ctx, post, func() error { return s.posts.Create(ctx, post) })
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.metrics.PostsCreated.Inc()
	s.logger.Info("post created",
		zap.String("id", post.ID),
		zap.String("slug", post.Slug),
		zap.String("author", post.AuthorID),
	)
	return s.presentOne(ctx, post, false)
}

// Update applies the supplied fields. Only the author or an admin may
// update; the author itself never changes.
func (s *Service) Update(ctx context.Context, caller models.Identity, id string, dto UpdatePostDTO) (*PostView, error) {
	existing, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if existing == nil {
		return nil, apperr.NotFound("post")
	}
	if !caller.CanModify(existing.AuthorID) {
		return nil, apperr.Unauthorized("Not authorized to update this post")
	}

	post := existing.Clone()
	titleChanged := false
	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		titleChanged = title != existing.Title
		post.Title = title
	}
	if dto.Content != nil {
		post.Content = *dto.Content
	}
	if dto.Category != nil {
		post.CategoryID = strings.TrimSpace(*dto.Category)
	}
	if dto.Tags != nil {
		post.Tags = models.NormalizeTags(*dto.Tags)
	}
	if dto.IsPublished != nil {
		post.IsPublished = *dto.IsPublished
	}
	if dto.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*dto.FeaturedImage)
		if post.FeaturedImage == "" {
			post.FeaturedImage = models.DefaultFeaturedImage
		}
	}
	switch {
	case dto.Excerpt != nil && strings.TrimSpace(*dto.Excerpt) != "":
		post.Excerpt = strings.TrimSpace(*dto.Excerpt)
	case dto.Content != nil || dto.Excerpt != nil:
		post.Excerpt = DeriveExcerpt(post.Content)
	}

	if err := s.validate(ctx, post); err != nil {
		return nil, err
	}
	post.Touch(s.now())

	save := func() error { return s.posts.Update(ctx, post) }
	if titleChanged {
		err = s.withSlug(ctx, post, save)
	} else {
		err = save()
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.logger.Info("post updated", zap.String("id", post.ID), zap.Bool("slugChanged", titleChanged))
	return s.presentOne(ctx, post, false)
}

// Delete removes a post and its comments.
func (s *Service) Delete(ctx context.Context, caller models.Identity, id string) error {
	existing, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load post: %w", err)
	}
	if existing == nil {
		return apperr.NotFound("post")
	}
	if !caller.CanModify(existing.AuthorID) {
		return apperr.Unauthorized("Not authorized to delete this post")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.logger.Info("post deleted", zap.String("id", id), zap.String("by", caller.ID))
	return nil
}

// AddComment appends a comment by caller and returns the post with every
// comment author resolved.
func (s *Service) AddComment(ctx context.Context, caller models.Identity, id string, content string) (*PostView, error) {
	existing, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if existing == nil {
		return nil, apperr.NotFound("post")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("Comment content is required")
	}

	comment := models.Comment{
		ID:        models.NewID(),
		UserID:    caller.ID,
		Content:   content,
		CreatedAt: s.now(),
	}
	updated, err := s.posts.AppendComment(ctx, id, comment)
	if err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("post")
	}

	s.metrics.CommentsAdded.Inc()
	return s.presentOne(ctx, updated, false)
}

// validate reports every field problem of post at once.
func (s *Service) validate(ctx context.Context, post *models.PostModel) error {
	verr := &apperr.ValidationError{}

	switch {
	case post.Title == "":
		verr.Add("title", "Please provide a title")
	case runeLen(post.Title) > models.MaxTitleLen:
		verr.Add("title", fmt.Sprintf("Title cannot be more than %d characters", models.MaxTitleLen))
	case slug.Slugify(post.Title) == "":
		verr.Add("title", "Title must contain at least one letter or digit")
	}
	if strings.TrimSpace(post.Content) == "" {
		verr.Add("content", "Please provide content")
	}
	if runeLen(post.Excerpt) > models.MaxExcerptLen {
		verr.Add("excerpt", fmt.Sprintf("Excerpt cannot be more than %d characters", models.MaxExcerptLen))
	}
	if post.AuthorID == "" {
		verr.Add("author", "Please provide an author")
	}

	if post.CategoryID == "" {
		verr.Add("category", "Please provide a category")
	} else {
		var cat *models.CategoryModel
		if models.IsID(post.CategoryID) {
			var err error
			cat, err = s.categories.GetByID(ctx, post.CategoryID)
			if err != nil {
				return fmt.Errorf("load category: %w", err)
			}
		}
		if cat == nil {
			verr.Add("category", "Invalid category")
		}
	}
	return verr.OrNil()
}

// withSlug assigns a fresh slug derived from the title and runs save,
// regenerating and retrying while the store reports the slug as taken.
func (s *Service) withSlug(ctx context.Context, post *models.PostModel, save func() error) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		taken, err := s.posts.SlugExists(ctx, candidate, post.ID)
		if taken {
			s.metrics.SlugCollisions.WithLabelValues("post").Inc()
		}
		return taken, err
	}

	var err error
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		post.Slug, err = slug.Generate(ctx, post.Title, exists)
		if err != nil {
			return err
		}
		err = save()
		if err == nil || !apperr.IsDuplicate(err, store.FieldSlug) {
			return err
		}
		s.metrics.SlugRetries.Inc()
		s.logger.Warn("slug taken concurrently, retrying",
			zap.String("slug", post.Slug),
			zap.Int("attempt", attempt),
		)
	}
	return err
}

func (s *Service) presentOne(ctx context.Context, post *models.PostModel, detail bool) (*PostView, error) {
	views, err := s.present(ctx, []*models.PostModel{post}, detail)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// present resolves author, category and comment authors with one batched
// lookup per store. detail adds the author bio.
func (s *Service) present(ctx context.Context, posts []*models.PostModel, detail bool) ([]PostView, error) {
	userIDs := make([]string, 0, len(posts))
	categoryIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		userIDs = append(userIDs, p.AuthorID)
		categoryIDs = append(categoryIDs, p.CategoryID)
		for _, c := range p.Comments {
			userIDs = append(userIDs, c.UserID)
		}
	}

	users, err := s.users.GetByIDs(ctx, store.UniqueIDs(userIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	categories, err := s.categories.GetByIDs(ctx, store.UniqueIDs(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		tags := []string(p.Tags)
		if tags == nil {
			tags = []string{}
		}
		comments := make([]CommentView, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, CommentView{
				ID:        c.ID,
				User:      newAuthorView(users[c.UserID], false),
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
			})
		}
		views = append(views, PostView{
			ID:            p.ID,
			Title:         p.Title,
			Slug:          p.Slug,
			URL:           "/posts/" + p.Slug,
			Content:       p.Content,
			Excerpt:       p.Excerpt,
			FeaturedImage: p.FeaturedImage,
			Author:        newAuthorView(users[p.AuthorID], detail),
			Category:      newCategoryView(categories[p.CategoryID]),
			Tags:          tags,
			IsPublished:   p.IsPublished,
			ViewCount:     p.ViewCount,
			Comments:      comments,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}
	return views, nil
}
