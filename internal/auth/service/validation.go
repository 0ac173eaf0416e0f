package service

import (
	"net/mail"
	"regexp"
	"unicode"

	"github.com/glimmer-social/backend/internal/common/constants"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]+$`)

func validateUsername(username string) error {
	if len(username) < constants.UsernameMinLength || len(username) > constants.UsernameMaxLength {
		return commonerrors.ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return commonerrors.ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > constants.EmailMaxLength {
		return commonerrors.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return commonerrors.ErrInvalidEmail
	}
	return nil
}

// validateRegistrationPassword only requires length; the stricter policy
// applies when a password is reset.
func validateRegistrationPassword(password string) error {
	if len(password) < constants.PasswordMinLength || len(password) > constants.PasswordMaxLength {
		return commonerrors.ErrWeakPassword
	}
	return nil
}

// validateResetPassword requires length plus at least one uppercase letter
// and one symbol.
func validateResetPassword(password string) error {
	if err := validateRegistrationPassword(password); err != nil {
		return err
	}

	var hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if !hasUpper || !hasSymbol {
		return commonerrors.ErrWeakPassword
	}
	return nil
}
