// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if err := validate.Var(e, "email"); err != nil {
		return ErrEmailInvalid
	}

	// Display names slip past the tag above, reject anything that isn't a bare address
	if addr, err := mail.ParseAddress(e); err != nil || addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}
