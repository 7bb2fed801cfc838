// Package store persists accounts and their inboxes. Every mutation that the
// account lifecycle depends on is a single conditional update, so concurrent
// requests against the same account can't interleave a read and a write.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record already exists")
	ErrNotAccepting = errors.New("user is not accepting messages")
)

// PendingUpdate carries the fields rewritten when an unverified account
// re-registers or asks for a new code. Empty Username or PasswordHash are left
// untouched.
type PendingUpdate struct {
	Username     string
	PasswordHash string
	Code         string
	Expiry       time.Time
	IssuedAt     time.Time
}

type Store interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	CreateUser(ctx context.Context, u *model.User) error
	// UpdatePending only touches the account while it is still unverified.
	// Returns ErrConflict if the account got verified in the meantime.
	UpdatePending(ctx context.Context, id string, p PendingUpdate) error
	DeleteUser(ctx context.Context, id string) error

	// MarkVerified flips verified to true only if the stored code matches and
	// hasn't expired at now. The code is kept so a repeat verification can be
	// checked against it. Reports whether a row was changed.
	MarkVerified(ctx context.Context, id, code string, now time.Time) (bool, error)
	SetAccepting(ctx context.Context, id string, accepting bool) error

	// AppendMessage adds msg to the inbox of username only while the account
	// accepts messages. Returns ErrNotFound or ErrNotAccepting otherwise.
	AppendMessage(ctx context.Context, username string, msg *model.Message) error
	// ListMessages returns the inbox newest first.
	ListMessages(ctx context.Context, userID string) ([]model.Message, error)
	DeleteMessage(ctx context.Context, userID, messageID string) error

	// DeleteStaleUnverified removes unverified accounts whose code expired
	// before the cutoff, inbox included.
	DeleteStaleUnverified(ctx context.Context, cutoff time.Time) (int64, error)

	Close(ctx context.Context) error
}
