package service

import (
	"context"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AccountCleanup deletes accounts that never finished verification. An
// account is only touched once its code has been expired for longer than
// grace, so a user still has time to ask for a new code.
type AccountCleanup struct {
	store store.Store
	grace time.Duration
	cron  *cron.Cron
	now   func() time.Time
}

func NewAccountCleanup(s store.Store, grace time.Duration) *AccountCleanup {
	return &AccountCleanup{
		store: s,
		grace: grace,
		cron:  cron.New(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep, schedule uses cron syntax or descriptors like "@every 24h"
func (a *AccountCleanup) Start(schedule string) error {
	_, err := a.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := a.Run(ctx); err != nil {
			zap.L().Error("Failed to clean up unverified accounts", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	a.cron.Start()
	zap.L().Debug("Account cleanup attached", zap.String("schedule", schedule), zap.Duration("grace", a.grace))

	return nil
}

// Stop waits for a running sweep to finish
func (a *AccountCleanup) Stop() {
	<-a.cron.Stop().Done()
}

func (a *AccountCleanup) Run(ctx context.Context) (int64, error) {
	n, err := a.store.DeleteStaleUnverified(ctx, a.now().Add(-a.grace))
	if err != nil {
		return 0, err
	}

	if n > 0 {
		zap.L().Info("Account cleanup finished", zap.Int64("deleted", n))
	}

	return n, nil
}
