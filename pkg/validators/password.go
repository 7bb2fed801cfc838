package validators

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrPasswordEmpty    = errors.New("no password provided")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordInvalid  = errors.New("password contains invalid characters")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if utf8.RuneCountInString(p) < 8 {
		return ErrPasswordTooShort
	}

	// argon2 doesn't care, but nobody needs a longer one
	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	if !utf8.ValidString(p) || strings.ContainsFunc(p, unicode.IsControl) {
		return ErrPasswordInvalid
	}

	return nil
}
