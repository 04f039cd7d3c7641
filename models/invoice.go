package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID            int                `gorm:"primary_key" json:"id"`
	TenantId      string             `gorm:"index;not null" json:"tenant_id" binding:"required"`
	PatientId     int                `gorm:"index" json:"patient_id"`
	DepartmentId  int                `gorm:"index" json:"department_id"`
	InvoiceNumber string             `gorm:"size:255;not null" json:"invoice_number" binding:"required"`
	InvoiceDate   time.Time          `gorm:"index;not null" json:"invoice_date" binding:"required"`
	Status        InvoiceStatus      `gorm:"type:enum('draft','pending','paid','void');default:'draft'" json:"status"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	PaidAt        *time.Time         `json:"paid_at"`
	Notes         string             `gorm:"type:text" json:"notes"`
	LineItems     []*InvoiceLineItem `gorm:"foreignKey:InvoiceId" json:"line_items"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceLineItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	TenantId    string          `gorm:"index;not null" json:"tenant_id" binding:"required"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id" binding:"required"`
	Description string          `gorm:"size:500" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,4);default:1" json:"quantity"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (obj Invoice) GetId() int {
	return obj.ID
}

func (obj InvoiceLineItem) GetId() int {
	return obj.ID
}
