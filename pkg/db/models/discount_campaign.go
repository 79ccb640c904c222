package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/simpos-backend/pkg/enums"
)

// DiscountCampaign is maintained by the back office; the sale ledger only
// reads it.
type DiscountCampaign struct {
	ID       int64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name     string             `gorm:"column:name;not null" json:"name"`
	Kind     enums.DiscountKind `gorm:"column:kind;not null" json:"kind"`
	Value    decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null" json:"value"`
	Active   bool               `gorm:"column:active;not null;default:true" json:"active"`
	StartsAt *time.Time         `gorm:"column:starts_at" json:"starts_at,omitempty"`
	EndsAt   *time.Time         `gorm:"column:ends_at" json:"ends_at,omitempty"`
}
