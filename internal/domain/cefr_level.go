package domain

import (
	"fmt"
	"strings"
)

// CEFRLevel is a proficiency level on the Common European Framework scale.
// Its numeric value is the rank, A1=1 through C2=6; the zero value is invalid.
type CEFRLevel int

const (
	A1 CEFRLevel = iota + 1
	A2
	B1
	B2
	C1
	C2
)

var cefrNames = [...]string{"", "A1", "A2", "B1", "B2", "C1", "C2"}

var cefrDescriptions = [...]string{
	"",
	"Beginner",
	"Elementary",
	"Intermediate",
	"Upper Intermediate",
	"Advanced",
	"Proficient",
}

// ParseCEFRLevel accepts "a1".."c2" in any case, surrounding spaces ignored.
func ParseCEFRLevel(s string) (CEFRLevel, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i := A1; i <= C2; i++ {
		if cefrNames[i] == up {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// CEFRLevelFromRank maps 1..6 to A1..C2.
func CEFRLevelFromRank(rank int) (CEFRLevel, error) {
	l := CEFRLevel(rank)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: rank %d", ErrInvalidLevel, rank)
	}
	return l, nil
}

func (l CEFRLevel) Valid() bool { return l >= A1 && l <= C2 }

func (l CEFRLevel) Rank() int { return int(l) }

func (l CEFRLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("CEFRLevel(%d)", int(l))
	}
	return cefrNames[l]
}

// Description is the human label of the level, e.g. "Upper Intermediate".
func (l CEFRLevel) Description() string {
	if !l.Valid() {
		return ""
	}
	return cefrDescriptions[l]
}

func (l CEFRLevel) IsBeginner() bool     { return l == A1 || l == A2 }
func (l CEFRLevel) IsIntermediate() bool { return l == B1 || l == B2 }
func (l CEFRLevel) IsAdvanced() bool     { return l == C1 || l == C2 }

// IsAdjacentTo reports whether the ranks differ by exactly one.
func (l CEFRLevel) IsAdjacentTo(other CEFRLevel) bool {
	d := l.Rank() - other.Rank()
	return d == 1 || d == -1
}

// Compare returns -1, 0 or +1 as l ranks below, equal to or above other.
func (l CEFRLevel) Compare(other CEFRLevel) int {
	switch {
	case l < other:
		return -1
	case l > other:
		return 1
	}
	return 0
}

func (l CEFRLevel) Less(other CEFRLevel) bool    { return l < other }
func (l CEFRLevel) Greater(other CEFRLevel) bool { return l > other }
