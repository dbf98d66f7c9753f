package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a two-letter ISO 639-1 code, normalized to lowercase.
// The zero value is not a valid language.
type Language struct {
	code string
}

// NewLanguage trims and lowercases code and accepts it only if exactly two
// ASCII letters remain.
func NewLanguage(code string) (Language, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	if len(c) != 2 || !isASCIILetter(c[0]) || !isASCIILetter(c[1]) {
		return Language{}, fmt.Errorf("%w: %q must be a 2-char ISO 639-1 code", ErrInvalidLanguageCode, code)
	}
	return Language{code: c}, nil
}

// MustLanguage is NewLanguage for constants; it panics on invalid input.
func MustLanguage(code string) Language {
	l, err := NewLanguage(code)
	if err != nil {
		panic(err)
	}
	return l
}

func isASCIILetter(b byte) bool { return b >= 'a' && b <= 'z' }

// Code returns the normalized code.
func (l Language) Code() string { return l.code }

func (l Language) String() string { return l.code }

// IsZero reports whether l was never constructed.
func (l Language) IsZero() bool { return l.code == "" }

// DisplayName returns the English name of the language ("French" for "fr"),
// or the code itself when x/text does not know it.
func (l Language) DisplayName() string {
	tag, err := language.Parse(l.code)
	if err != nil {
		return l.code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return l.code
}
