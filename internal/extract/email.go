package extract

import (
	"errors"
	"regexp"
	"strings"
)

var ErrEmailFormat = errors.New("el email no parece valido")

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// ParseEmail accepts on syntactic shape only; deliverability is not
// checked.
func ParseEmail(text string) (string, error) {
	if m := emailRe.FindString(text); m != "" {
		return strings.ToLower(m), nil
	}
	return "", ErrEmailFormat
}
