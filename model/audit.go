package model

import "time"

// AuditEvent is an append-only record of a security-relevant decision.
// Rows are never updated or deleted in normal operation.
type AuditEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"index"`                  // 0 for unauthenticated attempts
	Username  string    `gorm:"size:64;index"`          // snapshot of username at event time
	Action    string    `gorm:"size:64;not null;index"` // login_success, file_upload...
	Outcome   string    `gorm:"size:20;not null"`       // success, failed, blocked
	Detail    string    `gorm:"size:1024"`              // structured detail, stable JSON
	IP        string    `gorm:"size:45;not null"`       // IPv4/IPv6
	UserAgent string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (AuditEvent) TableName() string {
	return "audit"
}
