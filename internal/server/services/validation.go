package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/planboard/internal/common"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	reservedUsernames = map[string]bool{
		"root": true, "system": true, "administrator": true,
		"guest": true, "null": true, "undefined": true,
	}

	weakPasswords = map[string]bool{
		"password": true, "12345678": true, "qwerty123": true,
		"admin123": true, "password123": true,
	}
)

// ValidateUsername applies the account naming rules. "admin" in any case
// stays allowed so the bootstrap account can be recreated.
func ValidateUsername(username string) error {
	switch {
	case utf8.RuneCountInString(strings.TrimSpace(username)) < 3:
		return common.NewValidationError("username", "min_length", "username must be at least 3 characters")
	case utf8.RuneCountInString(username) > 50:
		return common.NewValidationError("username", "max_length", "username must be at most 50 characters")
	case !usernamePattern.MatchString(username):
		return common.NewValidationError("username", "charset", "username may contain only letters, digits, _ and -")
	case reservedUsernames[strings.ToLower(username)]:
		return common.NewValidationError("username", "reserved", "username is reserved")
	}
	return nil
}

// ValidatePassword applies the password strength rules.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	switch {
	case n < 8:
		return common.NewValidationError("password", "min_length", "password must be at least 8 characters")
	case n > 128:
		return common.NewValidationError("password", "max_length", "password must be at most 128 characters")
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return common.NewValidationError("password", "complexity", "password needs upper and lower case letters and a digit")
	}
	if weakPasswords[strings.ToLower(password)] {
		return common.NewValidationError("password", "weak", "password is too common")
	}
	return nil
}
