package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/internal/model"
	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/Abhishek5chawan/WhisperLink/pkg/validators"
	"github.com/google/uuid"
)

// InboxService takes anonymous messages in and hands them to their owner
type InboxService struct {
	store store.Store
	now   func() time.Time
}

func NewInboxService(s store.Store) *InboxService {
	return &InboxService{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Send appends a message to the inbox of username. The accepting flag is
// checked by the same write that appends, see store.AppendMessage.
func (s *InboxService) Send(ctx context.Context, username, content string) (*model.Message, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", validators.ErrUsernameEmpty)
	}

	content, err := validators.MessageValidator(content)
	if err != nil {
		return nil, invalid("content", err)
	}

	msg := &model.Message{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: s.now(),
	}

	err = s.store.AppendMessage(ctx, username, msg)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrAccountNotFound
	case errors.Is(err, store.ErrNotAccepting):
		return nil, ErrNotAccepting
	case err != nil:
		return nil, fmt.Errorf("failed to append message, %w", err)
	}

	return msg, nil
}

// List returns the owner's inbox newest first
func (s *InboxService) List(ctx context.Context, userID string) ([]model.Message, error) {
	if _, err := s.owner(ctx, userID); err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, fmt.Errorf("failed to list messages, %w", err)
	}

	return messages, nil
}

func (s *InboxService) Delete(ctx context.Context, userID, messageID string) error {
	if messageID == "" {
		return invalid("messageId", errors.New("no message ID provided"))
	}

	err := s.store.DeleteMessage(ctx, userID, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMessageNotFound
		}

		return fmt.Errorf("failed to delete message, %w", err)
	}

	return nil
}

func (s *InboxService) Accepting(ctx context.Context, userID string) (bool, error) {
	user, err := s.owner(ctx, userID)
	if err != nil {
		return false, err
	}

	return user.AcceptingMessages, nil
}

func (s *InboxService) SetAccepting(ctx context.Context, userID string, accepting bool) error {
	err := s.store.SetAccepting(ctx, userID, accepting)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}

		return fmt.Errorf("failed to update accepting flag, %w", err)
	}

	return nil
}

func (s *InboxService) owner(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	return user, nil
}
