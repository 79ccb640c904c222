package models

import (
	"github.com/shopspring/decimal"
)

// SaleItem is an immutable line of a sale. Only RefundedQuantity moves, and
// only upwards.
type SaleItem struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SaleID           int64           `gorm:"column:sale_id;not null;index" json:"sale_id"`
	ICCIDID          *int64          `gorm:"column:iccid_id" json:"iccid_id,omitempty"`
	Description      *string         `gorm:"column:description" json:"description,omitempty"`
	Quantity         int             `gorm:"column:quantity;not null" json:"quantity"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	RefundedQuantity int             `gorm:"column:refunded_quantity;not null;default:0" json:"refunded_quantity"`

	Refunds []SaleItemRefund `gorm:"foreignKey:SaleItemID" json:"refunds,omitempty"`
}

// Available returns the quantity that can still be refunded.
func (i SaleItem) Available() int {
	return i.Quantity - i.RefundedQuantity
}

// LineTotal returns price × quantity.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
