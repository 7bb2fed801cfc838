package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/internal/model"
	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/Abhishek5chawan/WhisperLink/pkg/security"
	"github.com/Abhishek5chawan/WhisperLink/pkg/validators"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Mailer delivers verification codes to the address being registered
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, username, code string) error
}

type AccountOpts struct {
	// CodeTTL is how long a freshly issued verification code stays valid
	CodeTTL time.Duration
	// ResendCooldown is the minimum gap between two issued codes
	ResendCooldown time.Duration
}

// AccountService drives an account from registration to verified
type AccountService struct {
	store  store.Store
	argon  *security.ArgonHash
	mailer Mailer
	opts   AccountOpts

	// Overridden in tests
	now func() time.Time
}

func NewAccountService(s store.Store, a *security.ArgonHash, m Mailer, o AccountOpts) *AccountService {
	return &AccountService{
		store:  s,
		argon:  a,
		mailer: m,
		opts:   o,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an unverified account, or restarts verification for an
// unverified account that already holds the email, then mails the code.
//
// When mailing fails the account is kept and the returned error wraps
// ErrMailDelivery; the caller can ask for a new code later.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validators.UsernameValidator(username); err != nil {
		return nil, invalid("username", err)
	}

	if err := validators.EmailValidator(email); err != nil {
		return nil, invalid("email", err)
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, invalid("password", err)
	}

	byUsername, err := s.lookup(ctx, s.store.FindByUsername, username)
	if err != nil {
		return nil, err
	}

	if byUsername != nil && byUsername.Verified {
		return nil, ErrUsernameTaken
	}

	byEmail, err := s.lookup(ctx, s.store.FindByEmail, email)
	if err != nil {
		return nil, err
	}

	if byEmail != nil && byEmail.Verified {
		return nil, ErrEmailTaken
	}

	// Someone else started registering with this username and never finished.
	// Verified accounts are the only ones that own a name.
	if byUsername != nil && (byEmail == nil || byEmail.ID != byUsername.ID) {
		if err := s.store.DeleteUser(ctx, byUsername.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to reclaim pending username, %w", err)
		}

		zap.L().Debug("Reclaimed username from pending account", zap.String("userID", byUsername.ID))
	}

	hash, err := s.argon.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	code, err := security.NewVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code, %w", err)
	}

	now := s.now()
	expiry := now.Add(s.opts.CodeTTL)

	var user *model.User

	if byEmail != nil {
		err = s.store.UpdatePending(ctx, byEmail.ID, store.PendingUpdate{
			Username:     username,
			PasswordHash: hash,
			Code:         code,
			Expiry:       expiry,
			IssuedAt:     now,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil, ErrEmailTaken
			}

			return nil, fmt.Errorf("failed to update pending account, %w", err)
		}

		user = byEmail
		user.Username = username
		user.PasswordHash = hash
		user.VerifyCode = code
		user.VerifyCodeExpiry = expiry
		user.VerifyCodeIssuedAt = now
	} else {
		id, err := gonanoid.Generate(idCharset, 16)
		if err != nil {
			return nil, fmt.Errorf("failed to generate user ID, %w", err)
		}

		user = &model.User{
			ID:                 id,
			Username:           username,
			Email:              email,
			PasswordHash:       hash,
			VerifyCode:         code,
			VerifyCodeExpiry:   expiry,
			VerifyCodeIssuedAt: now,
			Verified:           false,
			AcceptingMessages:  true,
			CreatedAt:          now,
		}

		if err := s.store.CreateUser(ctx, user); err != nil {
			// Lost a race against another registration for the same name or email
			if errors.Is(err, store.ErrConflict) {
				if taken, _ := s.lookup(ctx, s.store.FindByEmail, email); taken != nil {
					return nil, ErrEmailTaken
				}

				return nil, ErrUsernameTaken
			}

			return nil, fmt.Errorf("failed to create user, %w", err)
		}
	}

	if err := s.mailer.SendVerificationCode(ctx, email, username, code); err != nil {
		return user, fmt.Errorf("%w, %w", ErrMailDelivery, err)
	}

	return user, nil
}

// Verify checks a submitted code. The code is compared as sent, without
// trimming. Verifying an already verified account again with its code
// succeeds without changing anything.
func (s *AccountService) Verify(ctx context.Context, rawUsername, code string) (*model.User, error) {
	username, err := url.PathUnescape(rawUsername)
	if err != nil {
		return nil, invalid("username", validators.ErrUsernameInvalid)
	}

	if username == "" {
		return nil, invalid("username", validators.ErrUsernameEmpty)
	}

	if code == "" {
		return nil, invalid("code", errors.New("no verification code provided"))
	}

	user, err := s.lookup(ctx, s.store.FindByUsername, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrAccountNotFound
	}

	if user.Verified {
		return s.reverified(user, code)
	}

	now := s.now()

	if !security.CodesMatch(user.VerifyCode, code) {
		return nil, ErrInvalidCode
	}

	if user.CodeExpired(now) {
		return nil, ErrCodeExpired
	}

	ok, err := s.store.MarkVerified(ctx, user.ID, code, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark user verified, %w", err)
	}

	if !ok {
		// The row changed under us, look again to report the right outcome
		fresh, err := s.lookup(ctx, s.store.FindByID, user.ID)
		if err != nil {
			return nil, err
		}

		switch {
		case fresh == nil:
			return nil, ErrAccountNotFound
		case fresh.Verified:
			return s.reverified(fresh, code)
		case fresh.CodeExpired(now):
			return nil, ErrCodeExpired
		default:
			return nil, ErrInvalidCode
		}
	}

	user.Verified = true

	return user, nil
}

// reverified answers a repeat verification. The code is kept after success
// so only the code that verified the account passes again.
func (s *AccountService) reverified(user *model.User, code string) (*model.User, error) {
	if !security.CodesMatch(user.VerifyCode, code) {
		return nil, ErrInvalidCode
	}

	return user, nil
}

// ResendCode issues a fresh code for an account that is still unverified
func (s *AccountService) ResendCode(ctx context.Context, rawUsername string) error {
	username, err := url.PathUnescape(strings.TrimSpace(rawUsername))
	if err != nil || username == "" {
		return invalid("username", validators.ErrUsernameEmpty)
	}

	user, err := s.lookup(ctx, s.store.FindByUsername, username)
	if err != nil {
		return err
	}

	if user == nil {
		return ErrAccountNotFound
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	now := s.now()
	if now.Sub(user.VerifyCodeIssuedAt) < s.opts.ResendCooldown {
		return ErrResendCooldown
	}

	code, err := security.NewVerificationCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code, %w", err)
	}

	err = s.store.UpdatePending(ctx, user.ID, store.PendingUpdate{
		Code:     code,
		Expiry:   now.Add(s.opts.CodeTTL),
		IssuedAt: now,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrAlreadyVerified
		}

		return fmt.Errorf("failed to store new code, %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, user.Username, code); err != nil {
		return fmt.Errorf("%w, %w", ErrMailDelivery, err)
	}

	return nil
}

// Authenticate resolves an email or username plus password to a verified account
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, invalid("identifier", errors.New("email or username can't be empty"))
	}

	if password == "" {
		return nil, invalid("password", validators.ErrPasswordEmpty)
	}

	find := s.store.FindByUsername
	if strings.Contains(identifier, "@") {
		find = s.store.FindByEmail
		identifier = strings.ToLower(identifier)
	}

	user, err := s.lookup(ctx, find, identifier)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, ErrNotVerified
	}

	return user, nil
}

// CheckUsername reports whether a username is well formed and not owned by a
// verified account
func (s *AccountService) CheckUsername(ctx context.Context, username string) error {
	if err := validators.UsernameValidator(username); err != nil {
		return invalid("username", err)
	}

	user, err := s.lookup(ctx, s.store.FindByUsername, username)
	if err != nil {
		return err
	}

	if user != nil && user.Verified {
		return ErrUsernameTaken
	}

	return nil
}

func (s *AccountService) Fetch(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.lookup(ctx, s.store.FindByID, userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrAccountNotFound
	}

	return user, nil
}

// lookup turns store.ErrNotFound into a nil user so callers only deal with
// real failures in err
func (s *AccountService) lookup(ctx context.Context, find func(context.Context, string) (*model.User, error), key string) (*model.User, error) {
	user, err := find(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	return user, nil
}
