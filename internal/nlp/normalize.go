// Package nlp holds the text normalization shared by every classifier.
package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// spelling maps common Paraguayan chat misspellings to their canonical
// form. Applied per token after diacritic folding.
var spelling = map[string]string{
	"kiero":    "quiero",
	"kmiero":   "quiero",
	"nesecito": "necesito",
	"nesesito": "necesito",
	"kuesta":   "cuesta",
	"bale":     "vale",
	"ai":       "hay",
	"q":        "que",
	"xq":       "porque",
	"pq":       "porque",
}

// Fold lowercases the text and strips diacritics so that "cédula" and
// "cedula" compare equal.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Normalize folds the text, drops punctuation and rewrites known
// misspellings token by token.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Tokens returns the normalized tokens of the text.
func Tokens(s string) []string {
	folded := Fold(s)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if canonical, ok := spelling[f]; ok {
			f = canonical
		}
		out = append(out, f)
	}
	return out
}
