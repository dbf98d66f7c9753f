package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CreativityLevel tunes how freely the teacher writes, from Strict (0) to
// Expressive (3).
type CreativityLevel int

const (
	CreativityStrict CreativityLevel = iota
	CreativityControlled
	CreativityModerate
	CreativityExpressive
)

var creativityNames = [...]string{"strict", "controlled", "moderate", "expressive"}

// ParseCreativityLevel accepts either the level name or its digit.
func ParseCreativityLevel(s string) (CreativityLevel, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(v); err == nil {
		c := CreativityLevel(n)
		if c.Valid() {
			return c, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidCreativity, s)
	}
	for i, name := range creativityNames {
		if name == v {
			return CreativityLevel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCreativity, s)
}

func (c CreativityLevel) Valid() bool { return c >= CreativityStrict && c <= CreativityExpressive }

func (c CreativityLevel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CreativityLevel(%d)", int(c))
	}
	return creativityNames[c]
}

// GenerationStyle selects the pedagogical approach of the teacher.
type GenerationStyle string

const (
	StylePractice       GenerationStyle = "practice"
	StyleExplanatory    GenerationStyle = "explanatory"
	StyleCorrective     GenerationStyle = "corrective"
	StyleConversational GenerationStyle = "conversational"
)

func ParseGenerationStyle(s string) (GenerationStyle, error) {
	g := GenerationStyle(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
	}
	return g, nil
}

func (g GenerationStyle) Valid() bool {
	switch g {
	case StylePractice, StyleExplanatory, StyleCorrective, StyleConversational:
		return true
	}
	return false
}

func (g GenerationStyle) String() string { return string(g) }

// TeacherProfile is handed to the response generator as is; the domain only
// checks that both members are known values.
type TeacherProfile struct {
	Creativity CreativityLevel
	Style      GenerationStyle
}

func NewTeacherProfile(creativity CreativityLevel, style GenerationStyle) (TeacherProfile, error) {
	if !creativity.Valid() {
		return TeacherProfile{}, fmt.Errorf("%w: %d", ErrInvalidCreativity, int(creativity))
	}
	if !style.Valid() {
		return TeacherProfile{}, fmt.Errorf("%w: %q", ErrInvalidStyle, string(style))
	}
	return TeacherProfile{Creativity: creativity, Style: style}, nil
}

// DefaultTeacherProfile is a moderate, conversational teacher.
func DefaultTeacherProfile() TeacherProfile {
	return TeacherProfile{Creativity: CreativityModerate, Style: StyleConversational}
}
