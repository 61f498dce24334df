package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Hello,   World!  ", "hello-world"},
		{"Go 1.22 released", "go-122-released"},
		{"already-slugged_text", "already-slugged_text"},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"!!!", ""},
		{"Node.js", "nodejs"},
		{"Café au lait", "caf-au-lait"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"Hello World", "  a -- b  ", "Web Development!", "x_y z"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once))
	}
}

func setExists(taken ...string) ExistsFunc {
	set := make(map[string]bool, len(taken))
	for _, s := range taken {
		set[s] = true
	}
	return func(_ context.Context, candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestGenerateFree(t *testing.T) {
	got, err := Generate(context.Background(), "Hello World", setExists())
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got)
}

func TestGenerateSkipsTaken(t *testing.T) {
	got, err := Generate(context.Background(), "Hello World", setExists("hello-world", "hello-world-1"))
	require.NoError(t, err)
	assert.Equal(t, "hello-world-2", got)
}

func TestGenerateEmptyBase(t *testing.T) {
	got, err := Generate(context.Background(), "!!!", setExists(""))
	require.NoError(t, err)
	assert.Equal(t, "-1", got)
}

func TestGenerateLookupError(t *testing.T) {
	boom := errors.New("store down")
	_, err := Generate(context.Background(), "x", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, "x", setExists())
	assert.ErrorIs(t, err, context.Canceled)
}
