package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhqtran/campushare/model"
)

type stubAuditRepo struct {
	events []*model.AuditEvent
	err    error
}

func (r *stubAuditRepo) RecordEvent(ctx context.Context, event *model.AuditEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *stubAuditRepo) ListEvents(ctx context.Context, filter ListFilter) ([]*model.AuditEvent, error) {
	return r.events, nil
}

func TestRecord(t *testing.T) {
	repo := &stubAuditRepo{}
	recorder := NewRecorder(repo)

	recorder.Record(context.Background(), Event{
		Action:  ActionLoginSuccess,
		Outcome: OutcomeSuccess,
		Actor:   &model.User{ID: 42, Username: "alice"},
		Detail: map[string]any{
			"role":     model.RoleTeacher,
			"attempts": "0/3",
		},
		IP:        "198.51.100.7",
		UserAgent: "test",
	})

	require.Len(t, repo.events, 1)
	row := repo.events[0]
	assert.Equal(t, ActionLoginSuccess, row.Action)
	assert.Equal(t, uint(42), row.UserID)
	assert.Equal(t, "alice", row.Username)
	assert.Equal(t, "198.51.100.7", row.IP)
	// detail keys serialize in sorted order
	assert.Equal(t, `{"attempts":"0/3","role":"teacher"}`, row.Detail)
}

func TestRecord_AnonymousActor(t *testing.T) {
	repo := &stubAuditRepo{}
	recorder := NewRecorder(repo)

	recorder.Record(context.Background(), Event{
		Action:  ActionLoginFailed,
		Outcome: OutcomeFailed,
	})

	require.Len(t, repo.events, 1)
	assert.Zero(t, repo.events[0].UserID)
	assert.Empty(t, repo.events[0].Username)
	assert.Empty(t, repo.events[0].Detail)
}

func TestRecord_SwallowsWriteErrors(t *testing.T) {
	repo := &stubAuditRepo{err: errors.New("db gone")}
	recorder := NewRecorder(repo)

	// must not panic or surface the failure
	recorder.Record(context.Background(), Event{
		Action:  ActionFileUpload,
		Outcome: OutcomeSuccess,
	})
	assert.Empty(t, repo.events)
}
