package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/simpos-backend/pkg/enums"
)

// Sale is the header row of a till transaction. Rows are never deleted;
// only cancellation and refunds mutate them after creation.
type Sale struct {
	ID                 int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID             int64               `gorm:"column:user_id;not null" json:"user_id"`
	CustomerName       *string             `gorm:"column:customer_name" json:"customer_name,omitempty"`
	Total              decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	VAT                decimal.Decimal     `gorm:"column:vat;type:numeric(5,2);not null" json:"vat"`
	Discount           decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0" json:"discount"`
	DiscountCampaignID *int64              `gorm:"column:discount_campaign_id" json:"discount_campaign_id,omitempty"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;not null" json:"payment_method"`
	Status             enums.SaleStatus    `gorm:"column:status;not null;default:'completed'" json:"status"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	CancelledAt        *time.Time          `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationNote   *string             `gorm:"column:cancellation_note" json:"cancellation_note,omitempty"`
	RefundedAt         *time.Time          `gorm:"column:refunded_at" json:"refunded_at,omitempty"`
	RefundNote         *string             `gorm:"column:refund_note" json:"refund_note,omitempty"`
	RefundedAmount     decimal.Decimal     `gorm:"column:refunded_amount;type:numeric(12,2);not null;default:0" json:"refunded_amount"`
	CreditedAmount     decimal.Decimal     `gorm:"column:credited_amount;type:numeric(12,2);not null;default:0" json:"credited_amount"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}
