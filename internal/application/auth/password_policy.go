package auth

import (
	"strings"
	"unicode"

	"github.com/vlehub/user-service/internal/domain"
)

const minPasswordLength = 8

// commonPasswords is a small denylist of passwords seen constantly in
// breach corpora. Checked case-insensitively after trimming.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"letmein1":    {},
	"admin123":    {},
	"welcome1":    {},
	"sunshine":    {},
	"football":    {},
	"baseball":    {},
	"superman":    {},
	"trustno1":    {},
	"dragon123":   {},
	"monkey123":   {},
	"abc12345":    {},
}

// CheckPasswordPolicy validates a candidate password:
//   - at least 8 characters
//   - not purely numeric
//   - not in the common-password denylist
//   - not trivially similar to the user's email or name attributes
func CheckPasswordPolicy(password string, attrs ...string) error {
	if len(password) < minPasswordLength {
		return domain.ErrWeakPassword("must be at least 8 characters")
	}

	if isNumeric(password) {
		return domain.ErrWeakPassword("must not be entirely numeric")
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		return domain.ErrWeakPassword("too common")
	}

	lower := strings.ToLower(password)
	for _, attr := range attrs {
		for _, part := range attrParts(attr) {
			if len(part) >= 4 && strings.Contains(lower, part) {
				return domain.ErrWeakPassword("too similar to account details")
			}
		}
	}

	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// attrParts splits an attribute into comparable fragments: the whole
// value plus, for emails, the local part and its dot/underscore pieces.
func attrParts(attr string) []string {
	attr = strings.ToLower(strings.TrimSpace(attr))
	if attr == "" {
		return nil
	}
	parts := []string{attr}
	if at := strings.IndexByte(attr, '@'); at > 0 {
		local := attr[:at]
		parts = append(parts, local)
		parts = append(parts, strings.FieldsFunc(local, func(r rune) bool {
			return r == '.' || r == '_' || r == '-' || r == '+'
		})...)
	}
	return parts
}
