package answer

import (
	"strings"
	"unicode"
)

const (
	katakanaFirst = 0x30A1 // ァ
	katakanaLast  = 0x30F6 // ヶ
	kanaOffset    = 0x60
	middleDot     = 0x30FB // ・
)

// Normalize maps raw answer text to a canonical comparable form.
//
// Normalization rules:
// - Lowercase
// - Whitespace, hyphens, underscores and the katakana middle dot are removed
// - Katakana (U+30A1-U+30F6) is folded to hiragana
//
// Normalize is idempotent.
func Normalize(text string) string {
	text = strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsSpace(r), r == '-', r == '_', r == middleDot:
			continue
		case r >= katakanaFirst && r <= katakanaLast:
			b.WriteRune(r - kanaOffset)
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
