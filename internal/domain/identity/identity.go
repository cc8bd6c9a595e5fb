// Package identity turns free-text player names into canonical matching keys.
//
// A canonical identity is the first name#digits token of a display name,
// case-folded. The empty identity means "unresolvable" and never matches
// anything, not even another unresolvable name.
package identity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Identity is a canonical matching key. The zero value is unresolvable.
type Identity string

// tagPattern is the structured tag shape: word characters, '#', digits.
var tagPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_]+#\p{Nd}+$`)

// Canonicalize derives the canonical identity of displayName, or "" when the
// name holds no structured tag. It is pure and idempotent.
func Canonicalize(displayName string) Identity {
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || r == '#' {
			return r
		}
		return ' '
	}, displayName)

	for _, token := range strings.Fields(cleaned) {
		if tagPattern.MatchString(token) {
			return Identity(Fold(token))
		}
	}
	return ""
}

// Key returns the lookup key for a roster name: its canonical identity, or
// the folded raw name when no tag can be derived. Blank names yield "".
func Key(displayName string) Identity {
	if id := Canonicalize(displayName); id != "" {
		return id
	}
	return Identity(Fold(strings.TrimSpace(displayName)))
}

// Fold applies Unicode full case folding.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	// A Caser is stateful; build one per call so Fold is safe for concurrent use.
	return cases.Fold().String(s)
}

// IsResolvable reports whether id can be used as a lookup key.
func (id Identity) IsResolvable() bool {
	return id != ""
}

func (id Identity) String() string {
	return string(id)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r) || r == '_'
}
