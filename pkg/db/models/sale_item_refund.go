package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/simpos-backend/pkg/enums"
)

// SaleItemRefund records one partial settlement against a sale item.
type SaleItemRefund struct {
	ID         int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SaleItemID int64            `gorm:"column:sale_item_id;not null;index" json:"sale_item_id"`
	UserID     int64            `gorm:"column:user_id;not null" json:"user_id"`
	Quantity   int              `gorm:"column:quantity;not null" json:"quantity"`
	RefundType enums.RefundType `gorm:"column:refund_type;not null" json:"refund_type"`
	Note       *string          `gorm:"column:note" json:"note,omitempty"`
	Amount     decimal.Decimal  `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
