package reports

import (
	"context"
	"database/sql"

	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetRevenueBreakdown aggregates paid and pending invoices over an inclusive
// date range into the five revenue buckets. Line items are categorized by
// keyword scan of their free-text description; an invoice without line items
// contributes its total amount to "other". Negative line amounts (discounts,
// insurance write-downs) are excluded from revenue.
//
// Zero matching rows produce an all-zero breakdown, never an error.
func GetRevenueBreakdown(ctx context.Context, db *gorm.DB, dateRange DateRange, departmentId *int) (*RevenueBreakdown, int, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, 0, utils.ErrorTenantIdRequired
	}
	if dateRange.Start.IsZero() || dateRange.End.IsZero() {
		return nil, 0, utils.NewValidationError("start_date and end_date are required")
	}

	query := `
        SELECT
            inv.id AS invoice_id,
            inv.total_amount AS invoice_total,
            li.id AS line_item_id,
            li.description AS description,
            li.amount AS line_amount
        FROM
            invoices AS inv
        LEFT JOIN
            invoice_line_items AS li
            ON li.invoice_id = inv.id AND li.tenant_id = inv.tenant_id
        WHERE
            inv.tenant_id = ?
            AND inv.status IN ('paid','pending')
            AND inv.invoice_date >= ?
            AND inv.invoice_date <= ?
    `
	args := []interface{}{tenantId, dateRange.Start, utils.EndOfDay(dateRange.End)}
	if departmentId != nil && *departmentId > 0 {
		query += " AND inv.department_id = ?"
		args = append(args, *departmentId)
	}
	query += " ORDER BY inv.id"

	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	breakdown := &RevenueBreakdown{}
	var rowCount int

	for rows.Next() {
		var invoiceID int
		var invoiceTotalStr string
		var lineItemID sql.NullInt64
		var description sql.NullString
		var lineAmountStr sql.NullString

		if err := rows.Scan(&invoiceID, &invoiceTotalStr, &lineItemID, &description, &lineAmountStr); err != nil {
			return nil, 0, err
		}
		rowCount++

		// No line items: the LEFT JOIN yields exactly one NULL row per such
		// invoice, so its total lands in "other" once.
		if !lineItemID.Valid {
			invoiceTotal, err := decimal.NewFromString(invoiceTotalStr)
			if err != nil {
				return nil, 0, err
			}
			if invoiceTotal.IsPositive() {
				breakdown.Other = breakdown.Other.Add(invoiceTotal)
			}
			continue
		}

		var lineAmount decimal.Decimal
		if lineAmountStr.Valid {
			lineAmount, err = decimal.NewFromString(lineAmountStr.String)
			if err != nil {
				return nil, 0, err
			}
		}
		if lineAmount.IsNegative() {
			continue
		}

		switch CategorizeLineItem(description.String) {
		case RevenueCategoryConsultations:
			breakdown.Consultations = breakdown.Consultations.Add(lineAmount)
		case RevenueCategoryProcedures:
			breakdown.Procedures = breakdown.Procedures.Add(lineAmount)
		case RevenueCategoryMedications:
			breakdown.Medications = breakdown.Medications.Add(lineAmount)
		case RevenueCategoryLabTests:
			breakdown.LabTests = breakdown.LabTests.Add(lineAmount)
		default:
			breakdown.Other = breakdown.Other.Add(lineAmount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	breakdown.Total = breakdown.Consultations.
		Add(breakdown.Procedures).
		Add(breakdown.Medications).
		Add(breakdown.LabTests).
		Add(breakdown.Other)

	return breakdown, rowCount, nil
}

// paidRevenueTotal sums paid invoices in the range. It backs both the expense
// estimation and the cash-flow operating inflow.
func paidRevenueTotal(ctx context.Context, db *gorm.DB, dateRange DateRange, departmentId *int) (decimal.Decimal, int, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return decimal.Zero, 0, utils.ErrorTenantIdRequired
	}

	query := `
        SELECT COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS rows_counted
        FROM invoices
        WHERE tenant_id = ?
            AND status = 'paid'
            AND invoice_date >= ?
            AND invoice_date <= ?
    `
	args := []interface{}{tenantId, dateRange.Start, utils.EndOfDay(dateRange.End)}
	if departmentId != nil && *departmentId > 0 {
		query += " AND department_id = ?"
		args = append(args, *departmentId)
	}

	var result struct {
		Total       decimal.Decimal
		RowsCounted int
	}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&result).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return result.Total, result.RowsCounted, nil
}
