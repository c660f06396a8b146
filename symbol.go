package texthuff

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unit is the atomic symbol of the code: a string of 1 to 3 characters.
// Units are never empty.
type Unit string

// MaxUnitRunes is the number of characters in the longest possible Unit.
const MaxUnitRunes = 3

// Runes returns the number of characters in this Unit.
func (u Unit) Runes() int {
	return utf8.RuneCountInString(string(u))
}

// Valid reports whether this Unit is well-formed UTF-8 of 1 to MaxUnitRunes
// characters.
func (u Unit) Valid() bool {
	if !utf8.ValidString(string(u)) {
		return false
	}
	n := u.Runes()
	return n >= 1 && n <= MaxUnitRunes
}

// Level selects the compression effort.  Any integer is accepted; see Tier.
type Level int

// The named levels.
const (
	LevelFast     Level = 1
	LevelBalanced Level = 6
	LevelMax      Level = 9

	DefaultLevel = LevelBalanced
)

// Tier is the effort bucket that a Level falls into.
type Tier byte

const (
	// Fast encodes single characters only.
	Fast Tier = iota

	// Balanced adds frequent bigrams.
	Balanced

	// Max adds frequent bigrams and trigrams.
	Max
)

// Tier buckets this Level: Fast for <= 1, Balanced for 2 .. 6, Max for >= 7.
func (level Level) Tier() Tier {
	switch {
	case level <= 1:
		return Fast
	case level <= 6:
		return Balanced
	default:
		return Max
	}
}

// String returns the string representation of this Level.
func (level Level) String() string {
	return strconv.Itoa(int(level))
}

// ParseLevel parses either a level name ("fast", "balanced", "max") or a
// decimal integer.
func ParseLevel(str string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "fast":
		return LevelFast, nil
	case "balanced", "":
		return LevelBalanced, nil
	case "max":
		return LevelMax, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, str)
	}
	return Level(n), nil
}

var tierNames = [...]string{
	Fast:     "fast",
	Balanced: "balanced",
	Max:      "max",
}

// String returns the name of this Tier.
func (tier Tier) String() string {
	if int(tier) < len(tierNames) {
		return tierNames[tier]
	}
	return "Tier(" + strconv.Itoa(int(tier)) + ")"
}

var (
	_ fmt.Stringer = Level(0)
	_ fmt.Stringer = Tier(0)
)
