package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrMessageEmpty    = errors.New("message can't be empty")
	ErrMessageTooShort = errors.New("message must be at least 10 characters long")
	ErrMessageTooLong  = errors.New("message must be at most 300 characters long")
)

// MessageValidator checks inbound message content and returns it trimmed
func MessageValidator(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrMessageEmpty
	}

	n := utf8.RuneCountInString(content)
	if n < 10 {
		return "", ErrMessageTooShort
	}

	if n > 300 {
		return "", ErrMessageTooLong
	}

	return content, nil
}
