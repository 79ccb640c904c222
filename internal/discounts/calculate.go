package discounts

import (
	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateDiscount returns the amount campaign takes off subtotal, clamped
// into [0, subtotal] and rounded to cents.
func CalculateDiscount(campaign *models.DiscountCampaign, subtotal decimal.Decimal) decimal.Decimal {
	if campaign == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch campaign.Kind {
	case enums.DiscountKindPercent:
		amount = subtotal.Mul(campaign.Value).Div(hundred)
	case enums.DiscountKindFixed:
		amount = campaign.Value
	default:
		return decimal.Zero
	}
	return Clamp(amount, subtotal)
}

// Clamp rounds a discount to cents and bounds it into [0, subtotal].
func Clamp(amount, subtotal decimal.Decimal) decimal.Decimal {
	amount = amount.Round(2)
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
