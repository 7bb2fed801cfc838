package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// SMTPMailer sends verification codes through a plain SMTP relay
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Sender == "" {
		cfg.Sender = cfg.Username
	}

	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, username, code string) error {
	if strings.EqualFold(to, m.cfg.Sender) {
		return errors.New("invalid email address")
	}

	msg := buildVerificationMail(m.cfg.Sender, to, username, code)

	// gomail has no context support, at least don't start when the request is gone
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp delivery to %s failed, %w", to, err)
	}

	return nil
}

func buildVerificationMail(from, to, username, code string) *gomail.Message {
	m := gomail.NewMessage()

	m.SetAddressHeader("From", from, "WhisperLink")
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your WhisperLink verification code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour verification code is: %s\n\nIf you did not request this code, please ignore this email.",
		username, code))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<p>Hello <strong>%s</strong>,</p><p>Your verification code is:</p><h2>%s</h2><p>If you did not request this code, please ignore this email.</p>",
		html.EscapeString(username), code))

	return m
}

// LogMailer writes codes to the log instead of sending them. Only meant for
// local development with mail.enabled = false.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(_ context.Context, to, username, code string) error {
	zap.L().Info("Verification code issued",
		zap.String("to", to),
		zap.String("username", username),
		zap.String("code", code),
	)

	return nil
}
