package models

import (
	"time"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

// AuditRecord rows are insert-only. No update or delete path exists outside
// the reaper, which removes them together with their expired parent entity.
type AuditRecord struct {
	ID        int64       `gorm:"primaryKey;autoIncrement"`
	Entity    string      `gorm:"type:varchar(20);not null;index:idx_audit_entity,priority:1"`
	EntityID  int64       `gorm:"not null;index:idx_audit_entity,priority:2"`
	ActorID   int64       `gorm:"not null"`
	Event     string      `gorm:"type:varchar(50);not null"`
	Changes   domain.Diff `gorm:"type:jsonb;serializer:json"`
	ChangedAt time.Time   `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index:idx_audit_entity,priority:3,sort:desc"`
}
