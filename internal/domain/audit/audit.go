package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is one recorded action against an engine entity. Writes are
// fire-and-forget; a failed insert never affects the primary flow.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action     string         `gorm:"column:action;not null;index" json:"action"`
	TargetType string         `gorm:"column:target_type;not null" json:"target_type"`
	TargetID   uuid.UUID      `gorm:"type:uuid;index" json:"target_id"`
	Meta       datatypes.JSON `gorm:"column:meta;type:jsonb" json:"meta"`
	Success    bool           `gorm:"column:success;not null;default:true" json:"success"`
	ErrorMsg   string         `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }
