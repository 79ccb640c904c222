package models

import (
	"time"

	"github.com/angelmondragon/simpos-backend/pkg/enums"
)

// AuditEntry is an append-only record of a committed mutation.
type AuditEntry struct {
	ID          int64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64             `gorm:"column:user_id;not null" json:"user_id"`
	Action      enums.AuditAction `gorm:"column:action;not null" json:"action"`
	Description string            `gorm:"column:description;not null" json:"description"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}
