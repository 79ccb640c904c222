package audit

import (
	"context"

	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"github.com/angelmondragon/simpos-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository manages persistence for audit entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.AuditEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.AuditEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var entries []models.AuditEntry
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
