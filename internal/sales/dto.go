package sales

import (
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ItemInput is one line of a new sale. An item may reference a SIM card by
// stock id, by ICCID code, or both; when both are given they must agree.
type ItemInput struct {
	Description *string
	Price       decimal.Decimal
	Quantity    int
	ICCIDID     *int64
	ICCIDCode   *string
}

// CreateSaleInput carries a till transaction. DiscountCampaignID, when set,
// takes precedence over Discount.
type CreateSaleInput struct {
	UserID             int64
	CustomerName       *string
	PaymentMethod      enums.PaymentMethod
	Discount           decimal.Decimal
	DiscountCampaignID *int64
	Items              []ItemInput
}

// CancelSaleInput identifies the sale to cancel and who cancels it.
type CancelSaleInput struct {
	SaleID int64
	UserID int64
	Reason *string
}

// RefundLine requests a settlement against one sale item. An empty Type
// defaults to a refund.
type RefundLine struct {
	SaleItemID int64
	Quantity   int
	Type       enums.RefundType
	Note       *string
}

// RefundSaleInput settles part or all of a sale. No lines means every item's
// remaining quantity is refunded.
type RefundSaleInput struct {
	SaleID int64
	UserID int64
	Lines  []RefundLine
	Note   *string
}

// RefundResult summarizes a committed refund.
type RefundResult struct {
	SaleID         int64            `json:"sale_id"`
	Status         enums.SaleStatus `json:"status"`
	Refunded       decimal.Decimal  `json:"refunded"`
	Credited       decimal.Decimal  `json:"credited"`
	ProcessedLines int              `json:"processed_lines"`
}
