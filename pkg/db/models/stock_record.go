package models

import (
	"time"

	"github.com/angelmondragon/simpos-backend/pkg/enums"
)

// StockRecord tracks a single physical SIM card by ICCID.
type StockRecord struct {
	ID         int64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ICCID      string            `gorm:"column:iccid;not null;uniqueIndex" json:"iccid"`
	ProviderID int64             `gorm:"column:provider_id;not null" json:"provider_id"`
	Status     enums.StockStatus `gorm:"column:status;not null;default:'in_stock'" json:"status"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Notes      *string           `gorm:"column:notes" json:"notes,omitempty"`
}

// TableName pins the legacy table name.
func (StockRecord) TableName() string {
	return "iccid_stock"
}
