// Package lockout implements the per-account brute-force lockout state
// machine. It is pure: callers pass the current time and persist the
// resulting counter mutations themselves. Lock expiry is lazy - there is no
// background sweeper, a lock is over the instant it is observed expired.
package lockout

import (
	"time"

	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
)

type State int

const (
	StateOpen State = iota
	StateLocked
)

// Check returns the lockout state of the account at the given instant and,
// when locked, the remaining lock duration.
func Check(user *model.User, now time.Time) (State, time.Duration) {
	if user.LockedUntil == nil {
		return StateOpen, 0
	}
	if remaining := user.LockedUntil.Sub(now); remaining > 0 {
		return StateLocked, remaining
	}
	return StateOpen, 0
}

// RecordFailure increments the failure counter and arms the lock once the
// threshold is reached. Returns the updated counter and lock deadline for
// the caller to persist atomically.
func RecordFailure(user *model.User, now time.Time) (failCount int, lockedUntil *time.Time) {
	failCount = user.FailedLoginCount + 1
	lockedUntil = user.LockedUntil
	if state, _ := Check(user, now); state == StateOpen && user.LockedUntil != nil {
		// expired lock observed: the window restarts from scratch
		failCount = 1
		lockedUntil = nil
	}
	if failCount >= params.LoginFailThreshold {
		until := now.Add(params.LoginLockDuration)
		lockedUntil = &until
	}
	return failCount, lockedUntil
}

// RecordSuccess resets both fields after a verified login. Only reachable
// from the open state since locked accounts never get their password checked.
func RecordSuccess() (failCount int, lockedUntil *time.Time) {
	return 0, nil
}

// Remaining returns how many failure credits are left before the lock arms.
func Remaining(failCount int) int {
	if failCount >= params.LoginFailThreshold {
		return 0
	}
	return params.LoginFailThreshold - failCount
}
