// Package validation holds the credential policies applied before any
// account is created. All functions are pure and never panic.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

// passwordSymbols is the fixed punctuation set a password must draw from.
const passwordSymbols = "@$!%*?&"

const (
	minPasswordLength = 8
	// bcrypt only accepts up to 72 bytes.
	maxPasswordLength = 72
	maxUsernameLength = 64
)

// ValidateEmail reports whether s looks like local@domain.tld.
func ValidateEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidatePassword reports whether s satisfies the password policy: 8 to 72
// characters from [A-Za-z0-9@$!%*?&] with at least one upper case letter,
// one lower case letter, one digit and one symbol.
func ValidatePassword(s string) bool {
	if len(s) < minPasswordLength || len(s) > maxPasswordLength {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}

	return upper && lower && digit && symbol
}

// ValidateUsername reports whether s is usable as a username: non-empty,
// at most 64 characters, no whitespace or control characters.
func ValidateUsername(s string) bool {
	if s == "" || len([]rune(s)) > maxUsernameLength {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
