package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetLiabilityBreakdown mirrors the asset calculator's latest-value-wins
// snapshot semantics for the liability side. An empty snapshot table yields an
// all-zero breakdown; there is no invoice-derived fallback for liabilities.
func GetLiabilityBreakdown(ctx context.Context, db *gorm.DB, asOfDate time.Time) (*LiabilityBreakdown, int, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, 0, utils.ErrorTenantIdRequired
	}
	if asOfDate.IsZero() {
		return nil, 0, utils.NewValidationError("as_of_date is required")
	}

	rows, err := db.WithContext(ctx).Raw(`
        WITH LastRows AS (
            SELECT
                l.category AS category,
                l.amount AS amount,
                ROW_NUMBER() OVER (PARTITION BY l.name ORDER BY l.as_of_date DESC, l.id DESC) AS row_num
            FROM
                liabilities AS l
            WHERE
                l.tenant_id = ?
                AND l.as_of_date <= ?
        )
        SELECT
            category,
            COALESCE(SUM(amount), 0) AS amount,
            COUNT(*) AS rows_counted
        FROM
            LastRows
        WHERE
            row_num = 1
        GROUP BY
            category
    `, tenantId, utils.EndOfDay(asOfDate)).Rows()
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	breakdown := &LiabilityBreakdown{}
	var rowCount int

	for rows.Next() {
		var category string
		var amountStr string
		var counted int
		if err := rows.Scan(&category, &amountStr, &counted); err != nil {
			return nil, 0, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, 0, err
		}
		rowCount += counted

		switch models.LiabilityCategory(category) {
		case models.LiabilityCategoryAccountsPayable:
			breakdown.Current.AccountsPayable = breakdown.Current.AccountsPayable.Add(amount)
		case models.LiabilityCategoryAccruedExpenses:
			breakdown.Current.AccruedExpenses = breakdown.Current.AccruedExpenses.Add(amount)
		case models.LiabilityCategoryLoans:
			breakdown.LongTerm.Loans = breakdown.LongTerm.Loans.Add(amount)
		case models.LiabilityCategoryMortgages:
			breakdown.LongTerm.Mortgages = breakdown.LongTerm.Mortgages.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	breakdown.Current.Total = breakdown.Current.AccountsPayable.
		Add(breakdown.Current.AccruedExpenses)
	breakdown.LongTerm.Total = breakdown.LongTerm.Loans.
		Add(breakdown.LongTerm.Mortgages)
	breakdown.Total = breakdown.Current.Total.Add(breakdown.LongTerm.Total)

	return breakdown, rowCount, nil
}
