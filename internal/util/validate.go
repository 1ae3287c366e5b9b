package util

import (
	"net/mail"
	"regexp"
	"unicode"

	"github.com/google/uuid"
)

const (
	usernameMinLen = 5
	usernameMaxLen = 30
	nameMaxLen     = 30
	passwordMinLen = 8
	passwordMaxLen = 25
)

var passwordCharset = regexp.MustCompile(`^[a-zA-Z\d]+$`)

// ValidateUsername checks the 5-30 character rule.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return NewValidationError("username must be %d to %d characters", usernameMinLen, usernameMaxLen)
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewValidationError("email is not valid")
	}
	return nil
}

// ValidatePassword enforces the password policy: 8-25 characters, letters
// and digits only, with at least one lowercase letter, one uppercase letter
// and one digit.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen || !passwordCharset.MatchString(password) {
		return NewValidationError("password must be %d to %d letters and digits", passwordMinLen, passwordMaxLen)
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return NewValidationError("password must contain a lowercase letter, an uppercase letter and a digit")
	}
	return nil
}

func ValidateName(name string) error {
	if len(name) > nameMaxLen {
		return NewValidationError("name must be at most %d characters", nameMaxLen)
	}
	return nil
}

// ValidateID checks that id is a well-formed entity id (uuid).
func ValidateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NewValidationError("%s is not a valid id", field)
	}
	return nil
}
