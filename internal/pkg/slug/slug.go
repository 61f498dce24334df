package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	disallowedPattern = regexp.MustCompile(`[^\w\s-]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ExistsFunc reports whether candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Slugify lower-cases text, drops everything that is not a word character,
// whitespace or hyphen, and joins whitespace runs with a single hyphen.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = disallowedPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return whitespacePattern.ReplaceAllString(s, "-")
}

// Generate returns Slugify(text), or the first of base-1, base-2, ... that
// exists does not report as taken.
func Generate(ctx context.Context, text string, exists ExistsFunc) (string, error) {
	base := Slugify(text)
	candidate := base
	for counter := 1; ; counter++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
