package sales

import (
	"context"

	"github.com/angelmondragon/simpos-backend/internal/audit"
	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the sale tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) error
	CreateItems(ctx context.Context, items []models.SaleItem) error
	CreateRefunds(ctx context.Context, refunds []models.SaleItemRefund) error
	// FindSaleForUpdate loads the sale header holding a row lock until the
	// surrounding transaction ends.
	FindSaleForUpdate(ctx context.Context, saleID int64) (*models.Sale, error)
	// FindItemsForUpdate locks and returns the sale's items with their
	// refund history.
	FindItemsForUpdate(ctx context.Context, saleID int64) ([]models.SaleItem, error)
	// AddRefundedQuantity raises refunded_quantity by qty, reporting false when
	// the result would exceed the item quantity.
	AddRefundedQuantity(ctx context.Context, itemID int64, qty int) (bool, error)
	UpdateSale(ctx context.Context, saleID int64, updates map[string]any) error
	FindSaleDetail(ctx context.Context, saleID int64) (*models.Sale, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input audit.RecordInput) (*models.AuditEntry, error)
}
