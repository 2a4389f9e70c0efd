package validation

import (
	"regexp"
	"unicode"
)

// Principals are wallet-style identifiers: addresses, contract ids, or handles.
var principalRe = regexp.MustCompile(`^[A-Za-z0-9._:\-]{3,128}$`)

// Display names: letters, spaces, hyphens, apostrophes only.
var displayNameRe = regexp.MustCompile(`^[A-Za-z\s\-']{1,128}$`)

func IsValidPrincipal(principal string) bool {
	return principalRe.MatchString(principal)
}

// IsValidPassword requires:
// - at least 8 characters
// - at least one letter
// - at least one number
// - at least one special character
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// IsValidDisplayName accepts an empty name; display names are optional.
func IsValidDisplayName(name string) bool {
	return name == "" || displayNameRe.MatchString(name)
}
