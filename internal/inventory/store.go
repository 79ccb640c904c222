package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Store persists the InStock/Sold state of each ICCID.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindByID(ctx context.Context, id int64) (*models.StockRecord, error)
	FindByICCID(ctx context.Context, iccid string) (*models.StockRecord, error)
	// MarkSold flips InStock to Sold in one conditional write. It reports
	// false when the record was already sold (or does not exist).
	MarkSold(ctx context.Context, id int64) (bool, error)
	// Release returns a record to InStock. Callers must hold the lock on the
	// sale that owns the record.
	Release(ctx context.Context, id int64) error
}

type store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore returns a stock store bound to the provided database.
func NewStore(db *gorm.DB) Store {
	return &store{db: db, now: time.Now}
}

func (s *store) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return s
	}
	return &store{db: tx, now: s.now}
}

func (s *store) FindByID(ctx context.Context, id int64) (*models.StockRecord, error) {
	var record models.StockRecord
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "iccid not found").WithDetails(map[string]any{"iccid_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	return &record, nil
}

func (s *store) FindByICCID(ctx context.Context, iccid string) (*models.StockRecord, error) {
	code := strings.TrimSpace(iccid)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "iccid code required")
	}
	var record models.StockRecord
	err := s.db.WithContext(ctx).
		Where("iccid = ?", code).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "iccid not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	return &record, nil
}

func (s *store) MarkSold(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("id = ? AND status <> ?", id, enums.StockStatusSold).
		Updates(map[string]any{
			"status":     enums.StockStatusSold,
			"updated_at": s.now(),
		})
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "mark iccid sold")
	}
	return res.RowsAffected > 0, nil
}

func (s *store) Release(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.StockStatusInStock,
			"updated_at": s.now(),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release iccid")
	}
	return nil
}
