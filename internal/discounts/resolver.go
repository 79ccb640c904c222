package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Resolver looks up discount campaigns maintained by the back office.
type Resolver interface {
	// FindActive returns the campaign when it is active and inside its
	// optional date window, or nil when no such campaign exists.
	FindActive(ctx context.Context, id int64) (*models.DiscountCampaign, error)
}

type resolver struct {
	db  *gorm.DB
	now func() time.Time
}

// NewResolver returns a campaign resolver reading from db.
func NewResolver(db *gorm.DB) Resolver {
	return &resolver{db: db, now: time.Now}
}

func (r *resolver) FindActive(ctx context.Context, id int64) (*models.DiscountCampaign, error) {
	if id <= 0 {
		return nil, nil
	}
	now := r.now().UTC()
	var campaign models.DiscountCampaign
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount campaign")
	}
	return &campaign, nil
}
