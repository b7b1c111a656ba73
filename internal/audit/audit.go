package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vhqtran/campushare/model"
)

// Actions recorded by the gateway and services.
const (
	ActionLoginSuccess    = "login_success"
	ActionLoginFailed     = "login_failed"
	ActionLoginBlocked    = "login_blocked"
	ActionLogout          = "logout"
	ActionPasswordChange  = "password_change"
	ActionUserCreated     = "user_created"
	ActionUserActivated   = "user_activated"
	ActionUserDeactivated = "user_deactivated"
	ActionPasswordReset   = "password_reset"
	ActionFileUpload      = "file_upload"
	ActionFileDownload    = "file_download"
	ActionIntegrityFailed = "file_integrity_failed"
)

// Outcomes of a recorded action.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeBlocked = "blocked"
)

// Event is a single security-relevant decision to be recorded. Actor is nil
// for unauthenticated attempts.
type Event struct {
	Action    string
	Outcome   string
	Actor     *model.User
	Detail    map[string]any
	IP        string
	UserAgent string
}

// Recorder writes audit events in their own transaction, decoupled from the
// primary operation. Recording is best-effort: a failed write is logged to
// the operational log and swallowed, never surfaced to the caller.
type Recorder struct {
	repo AuditEventRepository
}

func (r *Recorder) Record(ctx context.Context, event Event) {
	row := &model.AuditEvent{
		Action:    event.Action,
		Outcome:   event.Outcome,
		Detail:    encodeDetail(event.Detail),
		IP:        event.IP,
		UserAgent: event.UserAgent,
	}
	if event.Actor != nil {
		row.UserID = event.Actor.ID
		row.Username = event.Actor.Username
	}
	if err := r.repo.RecordEvent(ctx, row); err != nil {
		slog.Error("Failed to record audit event", "action", event.Action, "error", err)
	}
}

// encodeDetail serializes the detail map to a stable text form. Map keys are
// emitted in sorted order by encoding/json.
func encodeDetail(detail map[string]any) string {
	if len(detail) == 0 {
		return ""
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		slog.Error("Failed to encode audit detail", "error", err)
		return ""
	}
	return string(raw)
}

func NewRecorder(repo AuditEventRepository) *Recorder {
	return &Recorder{repo: repo}
}
