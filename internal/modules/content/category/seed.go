package category

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/penline/core/internal/pkg/slug"
)

// Defaults are the categories installed by the seed command.
var Defaults = []CreateCategoryDTO{
	{Name: "Technology", Description: "Tech news and tutorials", Color: "#3b82f6"},
	{Name: "Web Development", Description: "HTML, CSS, JavaScript and more", Color: "#10b981"},
	{Name: "React", Description: "React.js tutorials and news", Color: "#06b6d4"},
	{Name: "Node.js", Description: "Server-side JavaScript", Color: "#84cc16"},
	{Name: "Design", Description: "UI/UX design principles", Color: "#f59e0b"},
	{Name: "Business", Description: "Business and entrepreneurship", Color: "#ef4444"},
}

// Seed installs Defaults, skipping those already present. With reset every
// existing category is deleted first, regardless of referencing posts.
func (s *Service) Seed(ctx context.Context, reset bool) (int, error) {
	if reset {
		n, err := s.categories.DeleteAll(ctx)
		if err != nil {
			return 0, fmt.Errorf("delete categories: %w", err)
		}
		s.logger.Info("categories removed", zap.Int64("count", n))
	}

	created := 0
	for _, dto := range Defaults {
		existing, err := s.categories.GetBySlug(ctx, slug.Slugify(dto.Name))
		if err != nil {
			return created, fmt.Errorf("check %s: %w", dto.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.Create(ctx, dto); err != nil {
			return created, fmt.Errorf("seed %s: %w", dto.Name, err)
		}
		created++
	}
	return created, nil
}
