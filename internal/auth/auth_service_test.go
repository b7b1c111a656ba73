package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhqtran/campushare/internal/audit"
	"github.com/vhqtran/campushare/internal/common"
	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserStore struct {
	user *model.User
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *fakeUserStore) UpdateLockout(ctx context.Context, userID uint, failCount int, lockedUntil *time.Time) error {
	s.user.FailedLoginCount = failCount
	s.user.LockedUntil = lockedUntil
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type captureAuditRepo struct {
	events []*model.AuditEvent
}

func (r *captureAuditRepo) RecordEvent(ctx context.Context, event *model.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *captureAuditRepo) ListEvents(ctx context.Context, filter audit.ListFilter) ([]*model.AuditEvent, error) {
	return r.events, nil
}

func (r *captureAuditRepo) last() *model.AuditEvent {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func newTestService(t *testing.T, password string) (*AuthService, *fakeUserStore, *fakeClock, *captureAuditRepo) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	store := &fakeUserStore{
		user: &model.User{
			ID:       42,
			Username: "alice",
			Password: string(hashed),
			Role:     model.RoleTeacher,
		},
	}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	repo := &captureAuditRepo{}
	return NewAuthService(store, audit.NewRecorder(repo), clock), store, clock, repo
}

var testClient = common.ClientInfo{IP: "198.51.100.7", UserAgent: "test"}

func TestAuthenticate_Success(t *testing.T) {
	svc, store, _, repo := newTestService(t, "s3cret")

	user, err := svc.Authenticate(context.Background(), "alice", "s3cret", testClient)
	require.NoError(t, err)
	assert.Equal(t, uint(42), user.ID)
	assert.Equal(t, 0, user.FailedLoginCount)
	assert.Nil(t, user.LockedUntil)
	assert.Equal(t, 0, store.user.FailedLoginCount)

	require.Len(t, repo.events, 1)
	assert.Equal(t, audit.ActionLoginSuccess, repo.last().Action)
	assert.Equal(t, "alice", repo.last().Username)
}

func TestAuthenticate_UnknownUsername(t *testing.T) {
	svc, _, _, repo := newTestService(t, "s3cret")

	_, err := svc.Authenticate(context.Background(), "mallory", "s3cret", testClient)
	assert.ErrorIs(t, err, ErrWrongCredentials)

	require.Len(t, repo.events, 1)
	assert.Equal(t, audit.ActionLoginFailed, repo.last().Action)
	assert.Contains(t, repo.last().Detail, "mallory")
	assert.Zero(t, repo.last().UserID)
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	svc, store, _, repo := newTestService(t, "s3cret")
	store.user.Disabled = true

	_, err := svc.Authenticate(context.Background(), "alice", "s3cret", testClient)
	assert.ErrorIs(t, err, ErrAccountDisabled)

	require.Len(t, repo.events, 1)
	assert.Equal(t, audit.ActionLoginBlocked, repo.last().Action)
}

func TestAuthenticate_LocksAtThreshold(t *testing.T) {
	svc, store, clock, repo := newTestService(t, "s3cret")
	ctx := context.Background()

	for i := 1; i < params.LoginFailThreshold; i++ {
		_, err := svc.Authenticate(ctx, "alice", "wrong", testClient)
		assert.ErrorIs(t, err, ErrWrongCredentials)
		assert.Equal(t, i, store.user.FailedLoginCount)
	}

	_, err := svc.Authenticate(ctx, "alice", "wrong", testClient)
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, params.LoginLockDuration, locked.RetryAfter)
	require.NotNil(t, store.user.LockedUntil)
	assert.Equal(t, clock.now.Add(params.LoginLockDuration), *store.user.LockedUntil)

	// each attempt recorded exactly one event
	assert.Len(t, repo.events, params.LoginFailThreshold)
}

func TestAuthenticate_LockedRejectsCorrectPassword(t *testing.T) {
	svc, store, clock, repo := newTestService(t, "s3cret")
	ctx := context.Background()
	until := clock.now.Add(2 * time.Minute)
	store.user.FailedLoginCount = params.LoginFailThreshold
	store.user.LockedUntil = &until

	_, err := svc.Authenticate(ctx, "alice", "s3cret", testClient)
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 2*time.Minute, locked.RetryAfter)

	// the blocked attempt consumes no failure credit
	assert.Equal(t, params.LoginFailThreshold, store.user.FailedLoginCount)
	require.Len(t, repo.events, 1)
	assert.Equal(t, audit.ActionLoginBlocked, repo.last().Action)
}

func TestAuthenticate_ExpiredLockAllowsLogin(t *testing.T) {
	svc, store, clock, _ := newTestService(t, "s3cret")
	ctx := context.Background()
	until := clock.now.Add(params.LoginLockDuration)
	store.user.FailedLoginCount = params.LoginFailThreshold
	store.user.LockedUntil = &until

	clock.now = until.Add(time.Second)

	user, err := svc.Authenticate(ctx, "alice", "s3cret", testClient)
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedLoginCount)
	assert.Nil(t, user.LockedUntil)
	assert.Nil(t, store.user.LockedUntil)
}

func TestAuthenticate_ExpiredLockRestartsCounter(t *testing.T) {
	svc, store, clock, _ := newTestService(t, "s3cret")
	ctx := context.Background()
	until := clock.now.Add(params.LoginLockDuration)
	store.user.FailedLoginCount = params.LoginFailThreshold
	store.user.LockedUntil = &until

	clock.now = until.Add(time.Second)

	_, err := svc.Authenticate(ctx, "alice", "wrong", testClient)
	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Equal(t, 1, store.user.FailedLoginCount)
	assert.Nil(t, store.user.LockedUntil)
}

func TestLockedError_Message(t *testing.T) {
	err := &LockedError{RetryAfter: 2*time.Minute + 30*time.Second}
	assert.Contains(t, err.Error(), "2m 30s")
	assert.False(t, errors.Is(err, ErrWrongCredentials))
}
