package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillingAdjustment struct {
	ID             int              `gorm:"primary_key" json:"id"`
	TenantId       string           `gorm:"index;not null" json:"tenant_id" binding:"required"`
	InvoiceId      int              `gorm:"index" json:"invoice_id"`
	DepartmentId   int              `gorm:"index" json:"department_id"`
	AdjustmentType AdjustmentType   `gorm:"type:enum('refund','write_off','discount');not null" json:"adjustment_type"`
	Status         AdjustmentStatus `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"status"`
	AdjustmentDate time.Time        `gorm:"index;not null" json:"adjustment_date" binding:"required"`
	Amount         decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Reason         string           `gorm:"type:text" json:"reason"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj BillingAdjustment) GetId() int {
	return obj.ID
}
