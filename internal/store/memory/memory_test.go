package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/store"
	"github.com/penline/core/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() })
}

func TestReturnedPostsDoNotAliasStorage(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := &models.PostModel{Title: "T", Slug: "t", Tags: models.StringArray{"a"}}
	require.NoError(t, s.Posts().Create(ctx, p))

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Tags[0] = "mutated"
	got.Title = "mutated"

	again, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", again.Title)
	assert.Equal(t, "a", again.Tags[0])
}
