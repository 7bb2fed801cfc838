package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)

		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', code)
		}
	}
}

func TestCodesMatch(t *testing.T) {
	assert.True(t, CodesMatch("123456", "123456"))
	assert.False(t, CodesMatch("123456", "123457"))
	assert.False(t, CodesMatch("123456", "12345"))
	assert.False(t, CodesMatch("123456", ""))

	// A cleared code never matches, not even an empty submission
	assert.False(t, CodesMatch("", ""))
}
