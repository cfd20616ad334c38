package extract

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrIDFormat = errors.New("la cedula debe tener entre 6 y 8 digitos")
	ErrIDSpaced = errors.New("la cedula no puede llevar espacios sueltos entre los digitos")
)

var (
	idPlain   = regexp.MustCompile(`^\d{6,8}(-\d)?$`)
	idDotted  = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(-\d)?$`)
	idGrouped = regexp.MustCompile(`^\d{1,3}( \d{3})+(-\d)?$`)
	checkTail = regexp.MustCompile(`-\d$`)

	idInText = regexp.MustCompile(`\b\d{1,3}(\.\d{3})+(-\d)?\b|\b\d{6,8}(-\d)?\b|\b\d{1,3}( \d{3})+(-\d)?\b`)
)

// NormalizeID canonicalizes a national ID to its bare digits. Dots and
// the standard thousands grouping with spaces are accepted, and a
// single trailing check digit is dropped. Digits separated by
// irregular whitespace are a different, invalid shape and are
// rejected rather than repaired. The operation is idempotent.
func NormalizeID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	switch {
	case idPlain.MatchString(s), idDotted.MatchString(s), idGrouped.MatchString(s):
	default:
		if strings.ContainsAny(s, " \t") {
			return "", ErrIDSpaced
		}
		return "", ErrIDFormat
	}
	s = checkTail.ReplaceAllString(s, "")
	s = strings.NewReplacer(".", "", " ", "").Replace(s)
	if len(s) < 6 || len(s) > 8 {
		return "", ErrIDFormat
	}
	return s, nil
}

// FindID locates an ID-shaped substring in free text and normalizes
// it.
func FindID(text string) (string, bool) {
	for _, cand := range idInText.FindAllString(text, -1) {
		if id, err := NormalizeID(cand); err == nil {
			return id, true
		}
	}
	return "", false
}
