package sales

import (
	"context"

	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) CreateRefunds(ctx context.Context, refunds []models.SaleItemRefund) error {
	if len(refunds) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&refunds).Error
}

func (r *repository) FindSaleForUpdate(ctx context.Context, saleID int64) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", saleID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindItemsForUpdate(ctx context.Context, saleID int64) ([]models.SaleItem, error) {
	var items []models.SaleItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Refunds", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("sale_id = ?", saleID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) AddRefundedQuantity(ctx context.Context, itemID int64, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SaleItem{}).
		Where("id = ? AND refunded_quantity + ? <= quantity", itemID, qty).
		UpdateColumn("refunded_quantity", gorm.Expr("refunded_quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateSale(ctx context.Context, saleID int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", saleID).
		Updates(updates).Error
}

func (r *repository) FindSaleDetail(ctx context.Context, saleID int64) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Items.Refunds", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ?", saleID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
