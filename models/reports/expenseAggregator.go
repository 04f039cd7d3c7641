package reports

import (
	"context"

	"github.com/mmdatafocus/clinic_backend/config"
	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetExpenseBreakdown assembles the expense side of a period.
//
// Only "other" is backed by stored records: approved refund and write-off
// adjustments. The operational categories (salaries/supplies/utilities/
// maintenance) are ESTIMATED as fixed percentages of paid revenue in the same
// period because no dedicated expense ledger exists yet. Callers must treat
// those four fields as estimates, not bookkeeping facts.
func GetExpenseBreakdown(ctx context.Context, db *gorm.DB, dateRange DateRange, departmentId *int) (*ExpenseBreakdown, int, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, 0, utils.ErrorTenantIdRequired
	}
	if dateRange.Start.IsZero() || dateRange.End.IsZero() {
		return nil, 0, utils.NewValidationError("start_date and end_date are required")
	}

	paidRevenue, revenueRows, err := paidRevenueTotal(ctx, db, dateRange, departmentId)
	if err != nil {
		return nil, 0, err
	}

	query := `
        SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS rows_counted
        FROM billing_adjustments
        WHERE tenant_id = ?
            AND status = 'approved'
            AND adjustment_type IN ('refund','write_off')
            AND adjustment_date >= ?
            AND adjustment_date <= ?
    `
	args := []interface{}{tenantId, dateRange.Start, utils.EndOfDay(dateRange.End)}
	if departmentId != nil && *departmentId > 0 {
		query += " AND department_id = ?"
		args = append(args, *departmentId)
	}

	var adjustments struct {
		Total       decimal.Decimal
		RowsCounted int
	}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&adjustments).Error; err != nil {
		return nil, 0, err
	}

	salariesRate, suppliesRate, utilitiesRate, maintenanceRate := config.ExpenseEstimateRates()

	breakdown := &ExpenseBreakdown{
		Salaries:    paidRevenue.Mul(salariesRate),
		Supplies:    paidRevenue.Mul(suppliesRate),
		Utilities:   paidRevenue.Mul(utilitiesRate),
		Maintenance: paidRevenue.Mul(maintenanceRate),
		Other:       adjustments.Total,
	}
	breakdown.Total = breakdown.Salaries.
		Add(breakdown.Supplies).
		Add(breakdown.Utilities).
		Add(breakdown.Maintenance).
		Add(breakdown.Other)

	return breakdown, revenueRows + adjustments.RowsCounted, nil
}
