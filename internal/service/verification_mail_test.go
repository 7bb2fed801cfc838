package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVerificationMail(t *testing.T) {
	m := buildVerificationMail("noreply@example.com", "alice@example.com", "<alice>", "123456")

	assert.Equal(t, []string{"alice@example.com"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	body := buf.String()
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "&lt;alice&gt;")
}

func TestSMTPMailerRejectsSender(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 2525, Username: "noreply@example.com"})

	err := m.SendVerificationCode(context.Background(), "NoReply@example.com", "alice", "123456")
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{}.SendVerificationCode(context.Background(), "alice@example.com", "alice", "123456"))
}
