package extract

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"turnero/internal/nlp"
)

var (
	ErrNameTokenCount = errors.New("el nombre debe tener entre 2 y 4 palabras")
	ErrNameShortToken = errors.New("cada parte del nombre debe tener al menos 2 letras")
	ErrNameNotAlpha   = errors.New("el nombre solo puede contener letras")
	ErrNameNoCapital  = errors.New("el nombre debe incluir al menos una mayuscula")
	ErrNameStopWord   = errors.New("eso no parece un nombre")
)

// nameStopWords are common Spanish words that disqualify a token from
// being part of a person name.
var nameStopWords = map[string]struct{}{
	"yo": {}, "tu": {}, "el": {}, "ella": {}, "nosotros": {}, "ustedes": {},
	"no": {}, "si": {}, "nada": {}, "algo": {}, "que": {}, "como": {},
	"cuando": {}, "donde": {}, "quiero": {}, "puedo": {}, "tengo": {},
	"soy": {}, "estoy": {}, "hola": {}, "chau": {}, "gracias": {},
	"por": {}, "favor": {}, "muy": {}, "loco": {}, "loca": {},
	"turno": {}, "cita": {}, "cedula": {}, "para": {}, "con": {},
	"buenas": {}, "buenos": {}, "dias": {}, "tardes": {},
}

var namePrefix = regexp.MustCompile(`(?i)^\s*(mi nombre es|me llamo|soy)\s+`)

var titleCaser = cases.Title(language.Spanish)

// ParseName validates a candidate person name and returns its
// normalized form. Validation runs on the raw tokens before any
// normalization: 2 to 4 alphabetic words, each of at least 2 letters,
// at least one capitalized, none a common Spanish word.
func ParseName(text string) (string, error) {
	text = namePrefix.ReplaceAllString(strings.TrimSpace(text), "")
	tokens := strings.Fields(text)
	if len(tokens) < 2 || len(tokens) > 4 {
		return "", ErrNameTokenCount
	}
	hasCapital := false
	for _, tok := range tokens {
		runes := []rune(tok)
		if len(runes) < 2 {
			return "", ErrNameShortToken
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) {
				return "", ErrNameNotAlpha
			}
		}
		if unicode.IsUpper(runes[0]) {
			hasCapital = true
		}
		if _, stop := nameStopWords[nlp.Fold(tok)]; stop {
			return "", ErrNameStopWord
		}
	}
	if !hasCapital {
		return "", ErrNameNoCapital
	}
	return titleCaser.String(strings.Join(tokens, " ")), nil
}
