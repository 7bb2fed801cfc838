package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountCleanupRun(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	pending, err := f.accounts.Register(ctx, RegisterInput{"pending", "pending@example.com", "password123"})
	require.NoError(t, err)

	done := f.verified(t, "done")

	c := NewAccountCleanup(f.store, 24*time.Hour)
	c.now = f.clock.now

	// Code still valid
	n, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Expired, but still within grace
	f.clock.advance(2 * time.Hour)
	n, err = c.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.advance(24 * time.Hour)
	n, err = c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.accounts.Fetch(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = f.accounts.Fetch(ctx, done)
	assert.NoError(t, err)
}

func TestAccountCleanupSchedule(t *testing.T) {
	f := setup(t)

	c := NewAccountCleanup(f.store, time.Hour)

	assert.Error(t, c.Start("not a schedule"))

	require.NoError(t, c.Start("@every 1h"))
	c.Stop()
}
