package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Liability rows follow the same snapshot semantics as Asset: latest row per
// name with as_of_date <= the target date wins.
type Liability struct {
	ID        int               `gorm:"primary_key" json:"id"`
	TenantId  string            `gorm:"index;not null" json:"tenant_id" binding:"required"`
	Name      string            `gorm:"size:255;not null" json:"name" binding:"required"`
	Category  LiabilityCategory `gorm:"type:enum('accounts_payable','accrued_expenses','loans','mortgages');not null" json:"category"`
	AsOfDate  time.Time         `gorm:"index;not null" json:"as_of_date" binding:"required"`
	Amount    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Notes     string            `gorm:"type:text" json:"notes"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj Liability) GetId() int {
	return obj.ID
}
