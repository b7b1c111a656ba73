package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/vhqtran/campushare/internal/store"
)

// SessionData is the per-session state machine: logged out (zero UserID),
// authenticated pending password change (PasswordExpired set), or fully
// authenticated.
type SessionData struct {
	IP              string    `json:"ip,omitempty"               redis:"ip"`               // client ip address
	UserID          uint      `json:"user_id,omitempty"          redis:"user_id"`          // user id
	Username        string    `json:"username,omitempty"         redis:"username"`         // username snapshot
	Role            string    `json:"role,omitempty"             redis:"role"`             // role snapshot
	PasswordExpired bool      `json:"password_expired,omitempty" redis:"password_expired"` // must change password before anything else
	LoginTime       time.Time `json:"login_time,omitempty"       redis:"login_time"`       // last login time
	LastSeen        time.Time `json:"last_seen,omitempty"        redis:"last_seen"`        // last request time
	ExpireTime      time.Time `json:"expire_time,omitempty"      redis:"expire_time"`      // session expire time
}

func (s *SessionData) IsLoggedIn() bool {
	return s.UserID != 0
}

// IsPendingPasswordChange reports the forced first-login change state.
func (s *SessionData) IsPendingPasswordChange() bool {
	return s.UserID != 0 && s.PasswordExpired
}

func (s *SessionData) IsAuthenticated() bool {
	return s.UserID != 0 && !s.PasswordExpired
}

type Session struct {
	SessionData               // basic session info
	id          string        // session id
	storage     store.Storage // storage backend
	fresh       bool          // is session newly created
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Could not generate session id", "error", err)
		return ""
	}
	return hex.EncodeToString(b)
}

func newSession(storage store.Storage) *Session {
	return &Session{
		id:      generateSessionID(),
		storage: storage,
		fresh:   true,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) IsFresh() bool {
	return s.fresh
}

func (s *Session) Save(ctx context.Context) error {
	return s.storage.Save(ctx, s.id, s.SessionData)
}
