package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vhqtran/campushare/internal/audit"
	"github.com/vhqtran/campushare/internal/common"
	"github.com/vhqtran/campushare/internal/lockout"
	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore is the slice of the credential store the authenticator needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateLockout(ctx context.Context, userID uint, failCount int, lockedUntil *time.Time) error
}

// AuthService runs the login state machine: disabled check, lockout gate,
// credential verification, counter transitions. Every call records exactly
// one audit event regardless of outcome.
type AuthService struct {
	userStore UserStore
	recorder  *audit.Recorder
	clock     common.Clock
}

// Authenticate validates the credentials of the named account. On success
// the lockout counters are reset and the user is returned. Failures are
// typed: ErrWrongCredentials, ErrAccountDisabled or *LockedError.
func (s *AuthService) Authenticate(ctx context.Context, username, password string, client common.ClientInfo) (*model.User, error) {
	now := s.clock.Now()

	user, err := s.userStore.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// unknown username: the response is indistinguishable from a wrong
		// password, but the privileged audit log keeps the attempted name
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionLoginFailed,
			Outcome:   audit.OutcomeFailed,
			Detail:    map[string]any{"reason": "unknown username", "username": username},
			IP:        client.IP,
			UserAgent: client.UserAgent,
		})
		return nil, ErrWrongCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.Disabled {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionLoginBlocked,
			Outcome:   audit.OutcomeBlocked,
			Actor:     user,
			Detail:    map[string]any{"reason": "account deactivated"},
			IP:        client.IP,
			UserAgent: client.UserAgent,
		})
		return nil, ErrAccountDisabled
	}

	if state, remaining := lockout.Check(user, now); state == lockout.StateLocked {
		// no failure credit consumed and the password is never checked
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionLoginBlocked,
			Outcome:   audit.OutcomeBlocked,
			Actor:     user,
			Detail:    map[string]any{"reason": "account locked", "retry_after": remaining.Round(time.Second).String()},
			IP:        client.IP,
			UserAgent: client.UserAgent,
		})
		return nil, &LockedError{RetryAfter: remaining}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		failCount, lockedUntil := lockout.RecordFailure(user, now)
		if err := s.userStore.UpdateLockout(ctx, user.ID, failCount, lockedUntil); err != nil {
			return nil, err
		}
		s.recorder.Record(ctx, audit.Event{
			Action:  audit.ActionLoginFailed,
			Outcome: audit.OutcomeFailed,
			Actor:   user,
			Detail: map[string]any{
				"reason":   "wrong password",
				"attempts": fmt.Sprintf("%d/%d", failCount, params.LoginFailThreshold),
			},
			IP:        client.IP,
			UserAgent: client.UserAgent,
		})
		if lockedUntil != nil {
			return nil, &LockedError{RetryAfter: lockedUntil.Sub(now)}
		}
		return nil, ErrWrongCredentials
	}

	failCount, lockedUntil := lockout.RecordSuccess()
	if err := s.userStore.UpdateLockout(ctx, user.ID, failCount, lockedUntil); err != nil {
		return nil, err
	}
	user.FailedLoginCount = failCount
	user.LockedUntil = lockedUntil

	s.recorder.Record(ctx, audit.Event{
		Action:  audit.ActionLoginSuccess,
		Outcome: audit.OutcomeSuccess,
		Actor:   user,
		Detail: map[string]any{
			"role":             user.Role,
			"password_expired": user.PasswordExpired,
		},
		IP:        client.IP,
		UserAgent: client.UserAgent,
	})
	return user, nil
}

func NewAuthService(userStore UserStore, recorder *audit.Recorder, clock common.Clock) *AuthService {
	return &AuthService{
		userStore: userStore,
		recorder:  recorder,
		clock:     clock,
	}
}
