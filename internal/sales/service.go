package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/simpos-backend/internal/audit"
	"github.com/angelmondragon/simpos-backend/internal/discounts"
	"github.com/angelmondragon/simpos-backend/internal/inventory"
	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
	"github.com/angelmondragon/simpos-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service records sales and settles them through cancellation or refunds.
type Service interface {
	CreateSale(ctx context.Context, input CreateSaleInput) (int64, error)
	CancelSale(ctx context.Context, input CancelSaleInput) error
	RefundSale(ctx context.Context, input RefundSaleInput) (*RefundResult, error)
	GetSale(ctx context.Context, saleID int64) (*models.Sale, error)
}

// ServiceParams groups dependencies for the sales service.
type ServiceParams struct {
	Repo              Repository
	TransactionRunner txRunner
	Stock             inventory.Store
	Audit             auditRecorder
	Discounts         discounts.Resolver
	Metrics           *metrics.SalesMetrics
	Logger            *logger.Logger
	// VATRate is stamped on every new sale. It does not change the total.
	VATRate decimal.Decimal
	// CreditRestocks makes credit settlements return the ICCID to stock.
	CreditRestocks bool
}

type service struct {
	repo           Repository
	tx             txRunner
	stock          inventory.Store
	audit          auditRecorder
	discounts      discounts.Resolver
	metrics        *metrics.SalesMetrics
	logg           *logger.Logger
	vatRate        decimal.Decimal
	creditRestocks bool
	now            func() time.Time
}

// NewService builds a sales service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock store required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount resolver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.VATRate.IsNegative() {
		return nil, fmt.Errorf("vat rate must not be negative")
	}
	return &service{
		repo:           params.Repo,
		tx:             params.TransactionRunner,
		stock:          params.Stock,
		audit:          params.Audit,
		discounts:      params.Discounts,
		metrics:        params.Metrics,
		logg:           params.Logger,
		vatRate:        params.VATRate,
		creditRestocks: params.CreditRestocks,
		now:            time.Now,
	}, nil
}

func (s *service) CreateSale(ctx context.Context, input CreateSaleInput) (saleID int64, err error) {
	started := s.now()
	defer func() { s.metrics.Observe(metrics.OperationCreate, s.now().Sub(started), err) }()

	if err := validateCreateInput(input); err != nil {
		return 0, err
	}

	subtotal := decimal.Zero
	for _, item := range input.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discount := discounts.Clamp(input.Discount, subtotal)
	var campaignID *int64
	if input.DiscountCampaignID != nil {
		campaign, err := s.discounts.FindActive(ctx, *input.DiscountCampaignID)
		if err != nil {
			return 0, err
		}
		if campaign == nil {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "discount campaign not found").
				WithDetails(map[string]any{"discount_campaign_id": *input.DiscountCampaignID})
		}
		discount = discounts.CalculateDiscount(campaign, subtotal)
		campaignID = &campaign.ID
	}
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock := s.stock.WithTx(tx)

		sale := &models.Sale{
			UserID:             input.UserID,
			CustomerName:       trimmed(input.CustomerName),
			Total:              total,
			VAT:                s.vatRate,
			Discount:           discount,
			DiscountCampaignID: campaignID,
			PaymentMethod:      input.PaymentMethod,
			Status:             enums.SaleStatusCompleted,
			RefundedAmount:     decimal.Zero,
			CreditedAmount:     decimal.Zero,
		}
		if err := repo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.WrapDB(err, "create sale")
		}

		items := make([]models.SaleItem, 0, len(input.Items))
		for idx, in := range input.Items {
			stockID, err := s.claimStock(ctx, stock, idx, in)
			if err != nil {
				return err
			}
			items = append(items, models.SaleItem{
				SaleID:      sale.ID,
				ICCIDID:     stockID,
				Description: trimmed(in.Description),
				Quantity:    in.Quantity,
				Price:       in.Price,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.WrapDB(err, "create sale items")
		}

		if _, err := s.audit.Record(ctx, tx, audit.RecordInput{
			UserID:      input.UserID,
			Action:      enums.AuditActionSaleCreated,
			Description: fmt.Sprintf("sale %d created: %d items, total %s", sale.ID, len(items), total.StringFixed(2)),
		}); err != nil {
			return err
		}

		saleID = sale.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	logCtx := s.logg.WithSaleID(s.logg.WithUserID(ctx, input.UserID), saleID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event": "sale.created",
		"total": total.StringFixed(2),
		"items": len(input.Items),
	})
	s.logg.Info(logCtx, "sale created")
	return saleID, nil
}

// claimStock resolves the stock record an item references and flips it to
// sold. It returns nil for items that carry no ICCID.
func (s *service) claimStock(ctx context.Context, stock inventory.Store, idx int, in ItemInput) (*int64, error) {
	code := ""
	if in.ICCIDCode != nil {
		code = strings.TrimSpace(*in.ICCIDCode)
	}
	if in.ICCIDID == nil && code == "" {
		return nil, nil
	}

	var (
		record *models.StockRecord
		err    error
	)
	if in.ICCIDID != nil {
		record, err = stock.FindByID(ctx, *in.ICCIDID)
		if err != nil {
			return nil, err
		}
		if code != "" && record.ICCID != code {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "iccid code does not match stock record").
				WithDetails(map[string]any{"item": idx, "iccid_id": record.ID})
		}
	} else {
		record, err = stock.FindByICCID(ctx, code)
		if err != nil {
			return nil, err
		}
	}

	ok, err := stock.MarkSold(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "already sold").
			WithDetails(map[string]any{"item": idx, "iccid_id": record.ID})
	}
	return &record.ID, nil
}

func (s *service) CancelSale(ctx context.Context, input CancelSaleInput) (err error) {
	started := s.now()
	defer func() { s.metrics.Observe(metrics.OperationCancel, s.now().Sub(started), err) }()

	if input.SaleID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if input.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock := s.stock.WithTx(tx)

		sale, err := s.lockSale(ctx, repo, input.SaleID)
		if err != nil {
			return err
		}
		if sale.Status != enums.SaleStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sale is %s", sale.Status)).
				WithDetails(map[string]any{"sale_id": sale.ID, "status": sale.Status})
		}

		items, err := repo.FindItemsForUpdate(ctx, sale.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale items")
		}
		for _, item := range items {
			if item.ICCIDID == nil || s.stockReleased(item) {
				continue
			}
			if err := stock.Release(ctx, *item.ICCIDID); err != nil {
				return err
			}
		}

		updates := map[string]any{
			"status":       enums.SaleStatusCancelled,
			"cancelled_at": s.now().UTC(),
		}
		if reason := trimmed(input.Reason); reason != nil {
			updates["cancellation_note"] = *reason
		}
		if err := repo.UpdateSale(ctx, sale.ID, updates); err != nil {
			return pkgerrors.WrapDB(err, "cancel sale")
		}

		description := fmt.Sprintf("sale %d cancelled", sale.ID)
		if reason := trimmed(input.Reason); reason != nil {
			description += ": " + *reason
		}
		_, err = s.audit.Record(ctx, tx, audit.RecordInput{
			UserID:      input.UserID,
			Action:      enums.AuditActionSaleCancelled,
			Description: description,
		})
		return err
	})
	if err != nil {
		return err
	}

	logCtx := s.logg.WithSaleID(s.logg.WithUserID(ctx, input.UserID), input.SaleID)
	s.logg.Info(s.logg.WithField(logCtx, "event", "sale.cancelled"), "sale cancelled")
	return nil
}

func (s *service) RefundSale(ctx context.Context, input RefundSaleInput) (result *RefundResult, err error) {
	started := s.now()
	defer func() { s.metrics.Observe(metrics.OperationRefund, s.now().Sub(started), err) }()

	if input.SaleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	for _, line := range input.Lines {
		if line.Type != "" && !line.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid refund type %q", line.Type))
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock := s.stock.WithTx(tx)

		sale, err := s.lockSale(ctx, repo, input.SaleID)
		if err != nil {
			return err
		}
		if sale.Status == enums.SaleStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeConflict, "sale is cancelled").
				WithDetails(map[string]any{"sale_id": sale.ID})
		}

		items, err := repo.FindItemsForUpdate(ctx, sale.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale items")
		}
		byID := make(map[int64]*models.SaleItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		lines := input.Lines
		if len(lines) == 0 {
			lines = fullRefundLines(items)
		}

		refunded := decimal.Zero
		credited := decimal.Zero
		processed := 0
		for _, line := range lines {
			if line.Quantity <= 0 {
				continue
			}
			item, ok := byID[line.SaleItemID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale item not found").
					WithDetails(map[string]any{"sale_id": sale.ID, "sale_item_id": line.SaleItemID})
			}
			available := item.Available()
			if available <= 0 || line.Quantity > available {
				return pkgerrors.New(pkgerrors.CodeConflict, "refund quantity exceeds available").
					WithDetails(map[string]any{"sale_item_id": item.ID, "available": available, "requested": line.Quantity})
			}

			refundType := line.Type
			if refundType == "" {
				refundType = enums.RefundTypeRefund
			}
			amount := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			refund := models.SaleItemRefund{
				SaleItemID: item.ID,
				UserID:     input.UserID,
				Quantity:   line.Quantity,
				RefundType: refundType,
				Note:       trimmed(line.Note),
				Amount:     amount,
			}
			if err := repo.CreateRefunds(ctx, []models.SaleItemRefund{refund}); err != nil {
				return pkgerrors.WrapDB(err, "record refund")
			}
			ok, err := repo.AddRefundedQuantity(ctx, item.ID, line.Quantity)
			if err != nil {
				return pkgerrors.WrapDB(err, "update refunded quantity")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "refund quantity exceeds available").
					WithDetails(map[string]any{"sale_item_id": item.ID})
			}

			if item.ICCIDID != nil && !s.stockReleased(*item) && s.restocks(refundType) {
				if err := stock.Release(ctx, *item.ICCIDID); err != nil {
					return err
				}
			}

			item.RefundedQuantity += line.Quantity
			item.Refunds = append(item.Refunds, refund)
			if refundType == enums.RefundTypeCredit {
				credited = credited.Add(amount)
			} else {
				refunded = refunded.Add(amount)
			}
			processed++
		}
		if processed == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "nothing to refund")
		}

		totalQty, refundedQty := 0, 0
		for _, item := range items {
			totalQty += item.Quantity
			refundedQty += item.RefundedQuantity
		}
		status := enums.SaleStatusCompleted
		if totalQty > 0 && refundedQty >= totalQty {
			status = enums.SaleStatusRefunded
		}

		updates := map[string]any{
			"status":          status,
			"refunded_amount": sale.RefundedAmount.Add(refunded),
			"credited_amount": sale.CreditedAmount.Add(credited),
			"refunded_at":     s.now().UTC(),
		}
		if note := trimmed(input.Note); note != nil {
			updates["refund_note"] = *note
		}
		if err := repo.UpdateSale(ctx, sale.ID, updates); err != nil {
			return pkgerrors.WrapDB(err, "update sale refund totals")
		}

		if _, err := s.audit.Record(ctx, tx, audit.RecordInput{
			UserID:      input.UserID,
			Action:      enums.AuditActionSaleRefunded,
			Description: fmt.Sprintf("sale %d: %d lines settled, refunded %s, credited %s", sale.ID, processed, refunded.StringFixed(2), credited.StringFixed(2)),
		}); err != nil {
			return err
		}

		result = &RefundResult{
			SaleID:         sale.ID,
			Status:         status,
			Refunded:       refunded,
			Credited:       credited,
			ProcessedLines: processed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithSaleID(s.logg.WithUserID(ctx, input.UserID), input.SaleID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event":    "sale.refunded",
		"status":   result.Status,
		"refunded": result.Refunded.StringFixed(2),
		"credited": result.Credited.StringFixed(2),
	})
	s.logg.Info(logCtx, "sale refunded")
	return result, nil
}

func (s *service) GetSale(ctx context.Context, saleID int64) (*models.Sale, error) {
	if saleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	sale, err := s.repo.FindSaleDetail(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func (s *service) lockSale(ctx context.Context, repo Repository, saleID int64) (*models.Sale, error) {
	sale, err := repo.FindSaleForUpdate(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found").
				WithDetails(map[string]any{"sale_id": saleID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock sale")
	}
	return sale, nil
}

func (s *service) restocks(refundType enums.RefundType) bool {
	return refundType == enums.RefundTypeRefund || s.creditRestocks
}

// stockReleased reports whether an earlier settlement already returned the
// item's ICCID to stock. Once released the record may belong to a newer sale.
func (s *service) stockReleased(item models.SaleItem) bool {
	for _, refund := range item.Refunds {
		if s.restocks(refund.RefundType) {
			return true
		}
	}
	return false
}

func validateCreateInput(input CreateSaleInput) error {
	if input.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for idx, item := range input.Items {
		if !item.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price must be greater than zero").
				WithDetails(map[string]any{"item": idx})
		}
		if !item.Price.Equal(item.Price.Round(2)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price must have at most 2 decimal places").
				WithDetails(map[string]any{"item": idx})
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1").
				WithDetails(map[string]any{"item": idx})
		}
		if hasICCID(item) && item.Quantity != 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "iccid items must have quantity 1").
				WithDetails(map[string]any{"item": idx})
		}
	}
	return nil
}

func hasICCID(item ItemInput) bool {
	return item.ICCIDID != nil || (item.ICCIDCode != nil && strings.TrimSpace(*item.ICCIDCode) != "")
}

func fullRefundLines(items []models.SaleItem) []RefundLine {
	lines := make([]RefundLine, 0, len(items))
	for _, item := range items {
		if item.Available() <= 0 {
			continue
		}
		lines = append(lines, RefundLine{
			SaleItemID: item.ID,
			Quantity:   item.Available(),
			Type:       enums.RefundTypeRefund,
		})
	}
	return lines
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
