package audit

import (
	"context"

	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
	"gorm.io/gorm"
)

// ListFilter narrows an audit listing. Zero values match everything.
type ListFilter struct {
	Action   string
	Username string
	Limit    int
	Offset   int
}

type AuditEventRepository interface {
	RecordEvent(ctx context.Context, event *model.AuditEvent) error
	ListEvents(ctx context.Context, filter ListFilter) ([]*model.AuditEvent, error)
}

type auditEventRepository struct {
	db *gorm.DB
}

func (r *auditEventRepository) RecordEvent(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditEventRepository) ListEvents(ctx context.Context, filter ListFilter) ([]*model.AuditEvent, error) {
	limit := filter.Limit
	if limit <= 0 || limit > params.AuditPageSize {
		limit = params.AuditPageSize
	}
	query := r.db.WithContext(ctx).Model(&model.AuditEvent{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Username != "" {
		query = query.Where("username = ?", filter.Username)
	}
	var events []*model.AuditEvent
	err := query.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&events).Error
	return events, err
}

func NewAuditEventRepository(db *gorm.DB) AuditEventRepository {
	return &auditEventRepository{db: db}
}
