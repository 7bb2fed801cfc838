package store

import (
	"context"
	"errors"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/internal/model"
	"gorm.io/gorm"
)

// GormStore backs the lifecycle with SQLite or Postgres
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) findBy(ctx context.Context, column, value string) (*model.User, error) {
	var user model.User

	err := s.DB.WithContext(ctx).
		Where(column+" = ?", value).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.findBy(ctx, "id", id)
}

func (s *GormStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findBy(ctx, "username", username)
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findBy(ctx, "email", email)
}

func (s *GormStore) CreateUser(ctx context.Context, u *model.User) error {
	err := s.DB.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}

	return err
}

func (s *GormStore) UpdatePending(ctx context.Context, id string, p PendingUpdate) error {
	updates := map[string]any{
		"verify_code":           p.Code,
		"verify_code_expiry":    p.Expiry,
		"verify_code_issued_at": p.IssuedAt,
		"updated_at":            time.Now(),
	}

	if p.Username != "" {
		updates["username"] = p.Username
	}

	if p.PasswordHash != "" {
		updates["password_hash"] = p.PasswordHash
	}

	r := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND verified = ?", id, false).
		Updates(updates)
	if r.Error != nil {
		if errors.Is(r.Error, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}

		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrConflict
	}

	return nil
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}

		r := tx.Where("id = ?", id).Delete(&model.User{})
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

func (s *GormStore) MarkVerified(ctx context.Context, id, code string, now time.Time) (bool, error) {
	r := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND verified = ? AND verify_code = ? AND verify_code_expiry >= ?", id, false, code, now).
		Updates(map[string]any{
			"verified":   true,
			"updated_at": now,
		})
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

func (s *GormStore) SetAccepting(ctx context.Context, id string, accepting bool) error {
	r := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"accepting_messages": accepting,
			"updated_at":         time.Now(),
		})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendMessage bumps the owner row under the accepting condition first. That
// write locks the row until commit, so a concurrent toggle can't slip between
// the check and the insert.
func (s *GormStore) AppendMessage(ctx context.Context, username string, msg *model.Message) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.User

		err := tx.Select("id").
			Where("username = ?", username).
			First(&owner).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return err
		}

		r := tx.Model(&model.User{}).
			Where("id = ? AND accepting_messages = ?", owner.ID, true).
			Update("updated_at", time.Now())
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return ErrNotAccepting
		}

		msg.UserID = owner.ID
		return tx.Create(msg).Error
	})
}

func (s *GormStore) ListMessages(ctx context.Context, userID string) ([]model.Message, error) {
	messages := []model.Message{}

	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&messages).
		Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (s *GormStore) DeleteMessage(ctx context.Context, userID, messageID string) error {
	r := s.DB.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, messageID).
		Delete(&model.Message{})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *GormStore) DeleteStaleUnverified(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&model.User{}).
			Select("id").
			Where("verified = ? AND verify_code_expiry < ?", false, cutoff)

		if err := tx.Where("user_id IN (?)", stale).Delete(&model.Message{}).Error; err != nil {
			return err
		}

		r := tx.Where("verified = ? AND verify_code_expiry < ?", false, cutoff).Delete(&model.User{})
		if r.Error != nil {
			return r.Error
		}

		deleted = r.RowsAffected
		return nil
	})

	return deleted, err
}

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
