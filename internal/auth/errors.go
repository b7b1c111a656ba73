package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrWrongCredentials covers both unknown usernames and wrong passwords
	// so callers cannot enumerate accounts.
	ErrWrongCredentials = errors.New("invalid username or password")
	ErrAccountDisabled  = errors.New("account is deactivated")
)

// LockedError rejects an authentication attempt against a locked account.
// It reveals only the remaining lock duration, never whether the supplied
// password was correct.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	remaining := e.RetryAfter.Round(time.Second)
	minutes := int(remaining.Minutes())
	seconds := int(remaining.Seconds()) % 60
	return fmt.Sprintf("account locked, retry in %dm %ds", minutes, seconds)
}
