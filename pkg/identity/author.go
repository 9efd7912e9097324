// Package identity models commit authors and the fuzzy equivalence used to
// merge the different spellings of one person into a single identity.
package identity

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrParse is returned when an author string cannot be parsed.
var ErrParse = errors.New("failed to parse author")

// authorPattern matches an optional (optionally quoted) display name followed by
// whitespace, then an optional email with optional angle brackets.
var authorPattern = regexp.MustCompile(`^(?:"?([^"]*)"?\s)?(?:<?(.+@[^>]+)?>?)$`)

const (
	nameGroup  = 1
	emailGroup = 2
)

// Author identifies the person that authored a commit.
// An empty Email means the email is absent.
type Author struct {
	Name  string `json:"name"            yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// New returns an Author with only a name.
func New(name string) Author {
	return Author{Name: name}
}

// NewWithEmail returns an Author with a name and an email.
func NewWithEmail(name, email string) Author {
	return Author{Name: name, Email: email}
}

// Parse reads a free-form "Name <email>" string.
// The display name may be quoted and the email may lack its angle brackets.
// "Name <>" yields an author without email.
func Parse(s string) (Author, error) {
	match := authorPattern.FindStringSubmatchIndex(s)
	if match == nil {
		return Author{}, fmt.Errorf("%w: %q does not match", ErrParse, s)
	}

	nameStart, nameEnd := match[2*nameGroup], match[2*nameGroup+1]
	if nameStart < 0 {
		return Author{}, fmt.Errorf("%w: %q has no author name", ErrParse, s)
	}

	author := Author{Name: s[nameStart:nameEnd]}

	if emailStart := match[2*emailGroup]; emailStart >= 0 {
		author.Email = s[emailStart:match[2*emailGroup+1]]
	}

	return author, nil
}

// HasEmail reports whether the email is present.
func (a Author) HasEmail() bool {
	return a.Email != ""
}

// Equal reports whether a and b denote the same person: names equal ignoring
// ASCII case, or both emails present and equal ignoring ASCII case.
// The relation is reflexive and symmetric but not transitive.
func (a Author) Equal(b Author) bool {
	if equalFoldASCII(a.Name, b.Name) {
		return true
	}

	return a.HasEmail() && b.HasEmail() && equalFoldASCII(a.Email, b.Email)
}

// String renders the author as "Name <email>".
func (a Author) String() string {
	return a.Name + " <" + a.Email + ">"
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range len(a) {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}

	return true
}

// foldASCII lowercases ASCII letters and leaves every other byte untouched,
// so that foldASCII(a) == foldASCII(b) exactly when equalFoldASCII(a, b).
func foldASCII(s string) string {
	buf := []byte(s)
	for i, c := range buf {
		buf[i] = lowerASCII(c)
	}

	return string(buf)
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}
