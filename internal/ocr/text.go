package ocr

import (
	"strings"
	"unicode"
)

// CleanLineText normalizes detector line text before it enters the merge
// engine. CJK text carries no meaningful interior whitespace, so if the line
// contains any Han, Hiragana, or Katakana character all whitespace is
// stripped; otherwise the text is returned as-is. Lines that clean to the
// empty string should be discarded by the caller.
func CleanLineText(s string) string {
	if !containsCJK(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			return true
		}
	}
	return false
}
