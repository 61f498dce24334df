package post

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hello world", StripTags("<p>Hello <strong>world</strong></p>"))
	assert.Equal(t, "a < b", StripTags("a < b"))
}

func TestDeriveExcerpt(t *testing.T) {
	short := "<p>short body</p>"
	assert.Equal(t, "short body", DeriveExcerpt(short))

	exact := strings.Repeat("x", excerptBodyLen)
	assert.Equal(t, exact, DeriveExcerpt(exact))

	long := strings.Repeat("a", 210)
	got := DeriveExcerpt(long)
	assert.Equal(t, 200, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 197), strings.TrimSuffix(got, "..."))

	multibyte := strings.Repeat("é", 250)
	assert.Equal(t, 200, utf8.RuneCountInString(DeriveExcerpt(multibyte)))
}
