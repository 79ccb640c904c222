package sales

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/simpos-backend/api/validators"
	internalsales "github.com/angelmondragon/simpos-backend/internal/sales"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
)

const (
	maxNameLength = 120
	maxTextLength = 500
)

type createSaleRequest struct {
	CustomerName       *string           `json:"customer_name" validate:"omitempty,max=120"`
	PaymentMethod      string            `json:"payment_method" validate:"required,oneof=cash card transfer other"`
	Discount           *decimal.Decimal  `json:"discount"`
	DiscountCampaignID *int64            `json:"discount_campaign_id" validate:"omitempty,gt=0"`
	Items              []saleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type saleItemRequest struct {
	Description *string         `json:"description" validate:"omitempty,max=255"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"min=1"`
	ICCIDID     *int64          `json:"iccid_id" validate:"omitempty,gt=0"`
	ICCID       *string         `json:"iccid" validate:"omitempty,max=32"`
}

// toInput drops lines whose price is not positive, matching what the till
// form has always done with blank rows.
func (r createSaleRequest) toInput(userID int64) internalsales.CreateSaleInput {
	input := internalsales.CreateSaleInput{
		UserID:             userID,
		CustomerName:       validators.SanitizeOptional(r.CustomerName, maxNameLength),
		PaymentMethod:      enums.PaymentMethod(r.PaymentMethod),
		DiscountCampaignID: r.DiscountCampaignID,
	}
	if r.Discount != nil {
		input.Discount = *r.Discount
	}
	for _, item := range r.Items {
		if !item.Price.IsPositive() {
			continue
		}
		input.Items = append(input.Items, internalsales.ItemInput{
			Description: validators.SanitizeOptional(item.Description, 255),
			Price:       item.Price,
			Quantity:    item.Quantity,
			ICCIDID:     item.ICCIDID,
			ICCIDCode:   validators.SanitizeOptional(item.ICCID, 32),
		})
	}
	return input
}

type cancelSaleRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type refundSaleRequest struct {
	Lines []refundLineRequest `json:"lines" validate:"omitempty,dive"`
	Note  *string             `json:"note" validate:"omitempty,max=500"`
}

type refundLineRequest struct {
	SaleItemID int64   `json:"sale_item_id" validate:"required,gt=0"`
	Quantity   int     `json:"quantity"`
	Type       string  `json:"type" validate:"required,oneof=refund credit"`
	Note       *string `json:"note" validate:"omitempty,max=500"`
}

func (r refundSaleRequest) toInput(saleID, userID int64) internalsales.RefundSaleInput {
	input := internalsales.RefundSaleInput{
		SaleID: saleID,
		UserID: userID,
		Note:   validators.SanitizeOptional(r.Note, maxTextLength),
	}
	for _, line := range r.Lines {
		input.Lines = append(input.Lines, internalsales.RefundLine{
			SaleItemID: line.SaleItemID,
			Quantity:   line.Quantity,
			Type:       enums.RefundType(line.Type),
			Note:       validators.SanitizeOptional(line.Note, maxTextLength),
		})
	}
	return input
}
