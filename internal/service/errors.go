package service

import "errors"

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrAccountNotFound    = errors.New("user not found")
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code expired")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrNotVerified        = errors.New("please verify your account before signing in")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResendCooldown     = errors.New("a code was sent recently, please wait before requesting another")
	ErrNotAccepting       = errors.New("user is not accepting messages")
	ErrMessageNotFound    = errors.New("message not found")

	// Both of these are reported to callers without their wrapped detail
	ErrMailDelivery = errors.New("failed to send verification email")
	ErrUpstream     = errors.New("upstream service failed")
)

// ValidationError marks malformed caller input. Its message is safe to return
// to the caller verbatim.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
