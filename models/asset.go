package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset rows are point-in-time snapshots: the calculator picks, per asset name,
// the most recent row with as_of_date <= the target date (latest-value-wins).
type Asset struct {
	ID                      int             `gorm:"primary_key" json:"id"`
	TenantId                string          `gorm:"index;not null" json:"tenant_id" binding:"required"`
	Name                    string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Category                AssetCategory   `gorm:"type:enum('cash','accounts_receivable','inventory','equipment','buildings','land','vehicles');not null" json:"category"`
	AsOfDate                time.Time       `gorm:"index;not null" json:"as_of_date" binding:"required"`
	Value                   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value"`
	AccumulatedDepreciation decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"accumulated_depreciation"`
	Notes                   string          `gorm:"type:text" json:"notes"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj Asset) GetId() int {
	return obj.ID
}
