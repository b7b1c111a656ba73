package lockout

import (
	"testing"
	"time"

	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
)

func TestCheck_OpenByDefault(t *testing.T) {
	now := time.Now()
	user := &model.User{}
	if state, _ := Check(user, now); state != StateOpen {
		t.Fatalf("expected open state for fresh account, got %v", state)
	}
}

func TestCheck_LockedUntilDeadline(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Minute)
	user := &model.User{FailedLoginCount: params.LoginFailThreshold, LockedUntil: &until}

	state, remaining := Check(user, now)
	if state != StateLocked {
		t.Fatalf("expected locked state, got %v", state)
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Fatalf("unexpected remaining duration %v", remaining)
	}

	// lock expiry is lazy: the same record reads open once the deadline passed
	if state, _ := Check(user, until.Add(time.Second)); state != StateOpen {
		t.Fatalf("expected open state after deadline, got %v", state)
	}
}

func TestRecordFailure_ArmsLockAtThreshold(t *testing.T) {
	now := time.Now()
	user := &model.User{}

	for i := 1; i < params.LoginFailThreshold; i++ {
		failCount, lockedUntil := RecordFailure(user, now)
		if failCount != i {
			t.Fatalf("attempt %d: expected fail count %d, got %d", i, i, failCount)
		}
		if lockedUntil != nil {
			t.Fatalf("attempt %d: lock armed before threshold", i)
		}
		user.FailedLoginCount = failCount
		user.LockedUntil = lockedUntil
	}

	failCount, lockedUntil := RecordFailure(user, now)
	if failCount != params.LoginFailThreshold {
		t.Fatalf("expected fail count %d, got %d", params.LoginFailThreshold, failCount)
	}
	if lockedUntil == nil {
		t.Fatal("expected lock to arm at threshold")
	}
	if got, want := *lockedUntil, now.Add(params.LoginLockDuration); !got.Equal(want) {
		t.Fatalf("expected lock until %v, got %v", want, got)
	}
}

func TestRecordFailure_ExpiredLockRestartsWindow(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Second)
	user := &model.User{FailedLoginCount: params.LoginFailThreshold, LockedUntil: &expired}

	failCount, lockedUntil := RecordFailure(user, now)
	if failCount != 1 {
		t.Fatalf("expected counter to restart at 1, got %d", failCount)
	}
	if lockedUntil != nil {
		t.Fatal("expected no lock after the window restarted")
	}
}

func TestRecordSuccess(t *testing.T) {
	failCount, lockedUntil := RecordSuccess()
	if failCount != 0 || lockedUntil != nil {
		t.Fatalf("expected zeroed fields, got (%d, %v)", failCount, lockedUntil)
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining(0); got != params.LoginFailThreshold {
		t.Fatalf("expected %d credits, got %d", params.LoginFailThreshold, got)
	}
	if got := Remaining(params.LoginFailThreshold); got != 0 {
		t.Fatalf("expected 0 credits at threshold, got %d", got)
	}
	if got := Remaining(params.LoginFailThreshold + 5); got != 0 {
		t.Fatalf("expected 0 credits above threshold, got %d", got)
	}
}
