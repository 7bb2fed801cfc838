package security

import (
	"crypto/subtle"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	codeDigits = "0123456789"
	CodeLength = 6
)

// NewVerificationCode returns a numeric one-time code for email verification
func NewVerificationCode() (string, error) {
	return gonanoid.Generate(codeDigits, CodeLength)
}

// CodesMatch is an exact comparison that doesn't leak how many leading
// characters were right
func CodesMatch(stored, submitted string) bool {
	if stored == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
