package models

import (
	"github.com/mmdatafocus/clinic_backend/config"
	"gorm.io/gorm"
)

// Any change to billing/asset/liability data makes previously derived reports
// stale for that tenant. These hooks drop every cached report for the owning
// tenant; the next generation repopulates the cache.
//
// Cache failures are soft: a missed invalidation only shortens to the TTL,
// while failing the write would block the business operation.

func invalidateTenantReports(tx *gorm.DB, tenantId string) {
	if tenantId == "" {
		return
	}
	ctx := tx.Statement.Context
	pattern := ReportCacheTenantPattern(tenantId)
	if _, err := config.RemoveRedisKeysByPattern(ctx, pattern); err != nil {
		config.LogError(config.GetLogger(), "models", "invalidateTenantReports", "cache invalidation", tenantId, err)
	}
}

func (i *Invoice) AfterCreate(tx *gorm.DB) error {
	invalidateTenantReports(tx, i.TenantId)
	return nil
}

func (i *Invoice) AfterUpdate(tx *gorm.DB) error {
	invalidateTenantReports(tx, i.TenantId)
	return nil
}

func (i *Invoice) AfterDelete(tx *gorm.DB) error {
	invalidateTenantReports(tx, i.TenantId)
	return nil
}

func (li *InvoiceLineItem) AfterCreate(tx *gorm.DB) error {
	invalidateTenantReports(tx, li.TenantId)
	return nil
}

func (li *InvoiceLineItem) AfterUpdate(tx *gorm.DB) error {
	invalidateTenantReports(tx, li.TenantId)
	return nil
}

func (li *InvoiceLineItem) AfterDelete(tx *gorm.DB) error {
	invalidateTenantReports(tx, li.TenantId)
	return nil
}

func (a *Asset) AfterCreate(tx *gorm.DB) error {
	invalidateTenantReports(tx, a.TenantId)
	return nil
}

func (a *Asset) AfterUpdate(tx *gorm.DB) error {
	invalidateTenantReports(tx, a.TenantId)
	return nil
}

func (a *Asset) AfterDelete(tx *gorm.DB) error {
	invalidateTenantReports(tx, a.TenantId)
	return nil
}

func (l *Liability) AfterCreate(tx *gorm.DB) error {
	invalidateTenantReports(tx, l.TenantId)
	return nil
}

func (l *Liability) AfterUpdate(tx *gorm.DB) error {
	invalidateTenantReports(tx, l.TenantId)
	return nil
}

func (l *Liability) AfterDelete(tx *gorm.DB) error {
	invalidateTenantReports(tx, l.TenantId)
	return nil
}

func (b *BillingAdjustment) AfterCreate(tx *gorm.DB) error {
	invalidateTenantReports(tx, b.TenantId)
	return nil
}

func (b *BillingAdjustment) AfterUpdate(tx *gorm.DB) error {
	invalidateTenantReports(tx, b.TenantId)
	return nil
}

func (b *BillingAdjustment) AfterDelete(tx *gorm.DB) error {
	invalidateTenantReports(tx, b.TenantId)
	return nil
}
