package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := New().Render("# Title\n\nSome **bold** text and ~~gone~~.")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<del>gone</del>")
}

func TestRenderPassesHTMLThrough(t *testing.T) {
	out, err := New().Render("<p>already <em>html</em></p>")
	require.NoError(t, err)
	assert.Contains(t, out, "<p>already <em>html</em></p>")
}
