package post

import (
	"regexp"
	"unicode/utf8"
)

const (
	excerptBodyLen = 197
	ellipsis       = "..."
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes every markup tag, keeping the text between them.
func StripTags(content string) string {
	return tagPattern.ReplaceAllString(content, "")
}

// DeriveExcerpt returns the tag-free content, cut to 197 runes plus "..."
// when longer. The result never exceeds 200 runes.
func DeriveExcerpt(content string) string {
	plain := StripTags(content)
	if utf8.RuneCountInString(plain) <= excerptBodyLen {
		return plain
	}
	return string([]rune(plain)[:excerptBodyLen]) + ellipsis
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
