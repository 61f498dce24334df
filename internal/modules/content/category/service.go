package category

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/pkg/metrics"
	"github.com/penline/core/internal/pkg/slug"
	"github.com/penline/core/internal/store"
)

const maxSlugAttempts = 5

var validate = validator.New()

type CreateCategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateCategoryDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type Service struct {
	categories store.CategoryStore
	posts      store.PostStore
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(st store.Store, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		categories: st.Categories(),
		posts:      st.Posts(),
		logger:     logger.Named("CategoryService"),
		metrics:    m,
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]*models.CategoryModel, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Get resolves a category by id or slug.
func (s *Service) Get(ctx context.Context, query string) (*models.CategoryModel, error) {
	var (
		cat *models.CategoryModel
		err error
	)
	if models.IsID(query) {
		cat, err = s.categories.GetByID(ctx, query)
	}
	if err == nil && cat == nil {
		cat, err = s.categories.GetBySlug(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if cat == nil {
		return nil, apperr.NotFound("category")
	}
	return cat, nil
}

func (s *Service) Create(ctx context.Context, dto CreateCategoryDTO) (*models.CategoryModel, error) {
	cat := &models.CategoryModel{
		Name:        strings.TrimSpace(dto.Name),
		Description: strings.TrimSpace(dto.Description),
		Color:       strings.TrimSpace(dto.Color),
	}
	if cat.Color == "" {
		cat.Color = models.DefaultCategoryColor
	}
	if err := checkFields(cat); err != nil {
		return nil, err
	}
	cat.CreatedAt = s.now()

	if err := s.withSlug(ctx, cat, func() error { return s.categories.Create(ctx, cat) }); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info("category created", zap.String("id", cat.ID), zap.String("slug", cat.Slug))
	return cat, nil
}

// Update applies the supplied fields; a rename derives a new slug.
func (s *Service) Update(ctx context.Context, id string, dto UpdateCategoryDTO) (*models.CategoryModel, error) {
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if existing == nil {
		return nil, apperr.NotFound("category")
	}

	cat := *existing
	renamed := false
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		renamed = name != existing.Name
		cat.Name = name
	}
	if dto.Description != nil {
		cat.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.Color != nil {
		cat.Color = strings.TrimSpace(*dto.Color)
		if cat.Color == "" {
			cat.Color = models.DefaultCategoryColor
		}
	}
	if err := checkFields(&cat); err != nil {
		return nil, err
	}

	save := func() error { return s.categories.Update(ctx, &cat) }
	if renamed {
		err = s.withSlug(ctx, &cat, save)
	} else {
		err = save()
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &cat, nil
}

// Delete removes a category nobody references.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if existing == nil {
		return apperr.NotFound("category")
	}
	n, err := s.posts.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if n > 0 {
		return apperr.Validation(fmt.Sprintf("Cannot delete category with %d existing posts", n))
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.logger.Info("category deleted", zap.String("id", id), zap.String("slug", existing.Slug))
	return nil
}

func checkFields(cat *models.CategoryModel) error {
	verr := &apperr.ValidationError{}
	switch n := utf8.RuneCountInString(cat.Name); {
	case n == 0:
		verr.Add("name", "Please provide a category name")
	case n > models.MaxCategoryNameLen:
		verr.Add("name", fmt.Sprintf("Name cannot be more than %d characters", models.MaxCategoryNameLen))
	case slug.Slugify(cat.Name) == "":
		verr.Add("name", "Name must contain at least one letter or digit")
	}
	if utf8.RuneCountInString(cat.Description) > models.MaxCategoryDescriptionLen {
		verr.Add("description", fmt.Sprintf("Description cannot be more than %d characters", models.MaxCategoryDescriptionLen))
	}
	if err := validate.Var(cat.Color, "hexcolor"); err != nil {
		verr.Add("color", "Color must be a hex value like #6366f1")
	}
	return verr.OrNil()
}

func (s *Service) withSlug(ctx context.Context, cat *models.CategoryModel, save func() error) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		taken, err := s.categories.SlugExists(ctx, candidate, cat.ID)
		if taken {
			s.metrics.SlugCollisions.WithLabelValues("category").Inc()
		}
		return taken, err
	}

	var err error
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		cat.Slug, err = slug.Generate(ctx, cat.Name, exists)
		if err != nil {
			return err
		}
		err = save()
		if err == nil || !apperr.IsDuplicate(err, store.FieldSlug) {
			return err
		}
		s.metrics.SlugRetries.Inc()
	}
	return err
}
