package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/db"
	"github.com/Abhishek5chawan/WhisperLink/internal/model"
	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/Abhishek5chawan/WhisperLink/pkg/security"
	"github.com/stretchr/testify/require"
)

type sentCode struct {
	to, username, code string
}

// fakeMailer records codes instead of sending them
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, username, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, sentCode{to: to, username: username, code: code})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentCode {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.sent, "no mail was sent")
	return m.sent[len(m.sent)-1]
}

// raceStore runs beforeCreate right before the insert, standing in for a
// concurrent registration
type raceStore struct {
	*store.GormStore
	beforeCreate func()
}

func (r *raceStore) CreateUser(ctx context.Context, u *model.User) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}

	return r.GormStore.CreateUser(ctx, u)
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}

	return "000000"
}

var errSMTPDown = errors.New("smtp: connection refused")

func testArgon() *security.ArgonHash {
	return &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func setupStore(t *testing.T) *store.GormStore {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	s := store.NewGormStore(gdb)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s
}

// clock is a settable time source shared by the services under test
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Now().UTC().Truncate(time.Second)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

type fixture struct {
	store    *store.GormStore
	mailer   *fakeMailer
	clock    *clock
	accounts *AccountService
	inbox    *InboxService
}

func setup(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  setupStore(t),
		mailer: &fakeMailer{},
		clock:  newClock(),
	}

	f.accounts = NewAccountService(f.store, testArgon(), f.mailer, AccountOpts{
		CodeTTL:        time.Hour,
		ResendCooldown: time.Minute,
	})
	f.accounts.now = f.clock.now

	f.inbox = NewInboxService(f.store)
	f.inbox.now = f.clock.now

	return f
}

// verified registers and verifies an account in one go
func (f *fixture) verified(t *testing.T, username string) string {
	t.Helper()

	ctx := context.Background()

	u, err := f.accounts.Register(ctx, RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = f.accounts.Verify(ctx, username, f.mailer.last(t).code)
	require.NoError(t, err)

	return u.ID
}
