package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetAssetBreakdown values every asset as of the target date. Asset rows are
// snapshots: per asset name, the most recent row with as_of_date <= the target
// wins (latest-value-wins), valued net of accumulated depreciation.
//
// When the snapshot table holds nothing for the tenant, cash and receivables
// are derived directly from invoices so the balance sheet still reflects the
// billing reality instead of reading all-zero.
func GetAssetBreakdown(ctx context.Context, db *gorm.DB, asOfDate time.Time) (*AssetBreakdown, int, error) {
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
                a.category AS category,
                a.value - a.accumulated_depreciation AS net_value,
                ROW_NUMBER() OVER (PARTITION BY a.name ORDER BY a.as_of_date DESC, a.id DESC) AS row_num
            FROM
                assets AS a
            WHERE
                a.tenant_id = ?
                AND a.as_of_date <= ?
        )
        SELECT
            category,
            COALESCE(SUM(net_value), 0) AS amount,
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

	breakdown := &AssetBreakdown{}
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

		switch models.AssetCategory(category) {
		case models.AssetCategoryCash:
			breakdown.Current.Cash = breakdown.Current.Cash.Add(amount)
		case models.AssetCategoryAccountsReceivable:
			breakdown.Current.AccountsReceivable = breakdown.Current.AccountsReceivable.Add(amount)
		case models.AssetCategoryInventory:
			breakdown.Current.Inventory = breakdown.Current.Inventory.Add(amount)
		case models.AssetCategoryEquipment:
			breakdown.Fixed.Equipment = breakdown.Fixed.Equipment.Add(amount)
		case models.AssetCategoryBuildings:
			breakdown.Fixed.Buildings = breakdown.Fixed.Buildings.Add(amount)
		case models.AssetCategoryLand:
			breakdown.Fixed.Land = breakdown.Fixed.Land.Add(amount)
		case models.AssetCategoryVehicles:
			breakdown.Fixed.Vehicles = breakdown.Fixed.Vehicles.Add(amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if rowCount == 0 {
		derived, derivedRows, err := deriveCurrentAssetsFromInvoices(ctx, db, tenantId, asOfDate)
		if err != nil {
			return nil, 0, err
		}
		breakdown.Current = *derived
		rowCount = derivedRows
	}

	breakdown.Current.Total = breakdown.Current.Cash.
		Add(breakdown.Current.AccountsReceivable).
		Add(breakdown.Current.Inventory)
	breakdown.Fixed.Total = breakdown.Fixed.Equipment.
		Add(breakdown.Fixed.Buildings).
		Add(breakdown.Fixed.Land).
		Add(breakdown.Fixed.Vehicles)
	breakdown.Total = breakdown.Current.Total.Add(breakdown.Fixed.Total)

	return breakdown, rowCount, nil
}

// deriveCurrentAssetsFromInvoices is the snapshot-table-empty fallback:
// cash from amounts collected on paid invoices, receivables from the unpaid
// remainder of outstanding ones, both as of the target date.
func deriveCurrentAssetsFromInvoices(ctx context.Context, db *gorm.DB, tenantId string, asOfDate time.Time) (*CurrentAssets, int, error) {
	var result struct {
		Cash        decimal.Decimal
		Receivables decimal.Decimal
		RowsCounted int
	}
	err := db.WithContext(ctx).Raw(`
        SELECT
            COALESCE(SUM(CASE WHEN status = 'paid' THEN paid_amount ELSE 0 END), 0) AS cash,
            COALESCE(SUM(CASE WHEN status = 'pending' THEN total_amount - paid_amount ELSE 0 END), 0) AS receivables,
            COUNT(*) AS rows_counted
        FROM invoices
        WHERE tenant_id = ?
            AND status IN ('paid','pending')
            AND invoice_date <= ?
    `, tenantId, utils.EndOfDay(asOfDate)).Scan(&result).Error
	if err != nil {
		return nil, 0, err
	}
	return &CurrentAssets{
		Cash:               result.Cash,
		AccountsReceivable: result.Receivables,
	}, result.RowsCounted, nil
}
