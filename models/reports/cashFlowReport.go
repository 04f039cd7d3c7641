package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/clinic_backend/config"
	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// GenerateCashFlowReport produces the Cash Flow statement for a period using
// the indirect method over the same aggregators the other statements use:
//
//	operating  = cash collected on invoices vs operating expenses
//	investing  = movement in fixed assets across the period
//	financing  = movement in long-term liabilities across the period
//
// BeginningCash is the cash position the day before the period opens, and
// EndingCash is always BeginningCash + NetCashFlow.
func GenerateCashFlowReport(ctx context.Context, db *gorm.DB, cache *ReportCache, params *PeriodReportParams) (*CashFlowReport, error) {
	started := time.Now()

	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorTenantIdRequired
	}

	dateRange, err := params.Validate()
	if err != nil {
		return nil, err
	}
	resolveDepartment(ctx, params)

	ctx, span := tracer.Start(ctx, "report.cash_flow")
	defer span.End()
	defer logSlowReport(ctx, "cash_flow_report", started, map[string]any{
		"start_date": params.StartDate,
		"end_date":   params.EndDate,
	})

	key := GenerateKey(models.ReportTypeCashFlow, tenantId, params.cacheParams())

	var report *CashFlowReport
	var recordCount int
	var cacheHit bool

	var cached CashFlowReport
	if hit, cerr := cache.Get(ctx, key, &cached); cerr != nil {
		config.LogError(config.GetLogger(), "reports", "GenerateCashFlowReport", "cache get", key, cerr)
	} else if hit {
		report = &cached
		cacheHit = true
	}

	if report == nil {
		err = cache.withComputeLock(ctx, key, func() error {
			var again CashFlowReport
			if hit, _ := cache.Get(ctx, key, &again); hit {
				report = &again
				cacheHit = true
				return nil
			}

			built, rows, err := buildCashFlowReport(ctx, db, dateRange, params.DepartmentId)
			if err != nil {
				return err
			}
			recordCount = rows

			if params.EnableComparison {
				comparisonRange := ComparisonPeriod(dateRange, params.ComparisonType)
				previous, prevRows, err := buildCashFlowReport(ctx, db, comparisonRange, params.DepartmentId)
				if err != nil {
					return err
				}
				recordCount += prevRows
				built.Comparison = &CashFlowComparison{
					Period:      periodOf(comparisonRange),
					Type:        params.ComparisonType,
					NetCashFlow: Compare(built.NetCashFlow, previous.NetCashFlow),
				}
			}

			cache.Set(ctx, key, built)
			report = built
			return nil
		})
		if err != nil {
			if params.SaveToAudit {
				writeFailureAudit(ctx, db, models.ReportTypeCashFlow, params.auditParams(), started, err)
			}
			return nil, err
		}
	}

	report.GeneratedBy = params.GeneratedBy

	if params.SaveToAudit {
		auditParams := markCacheHit(params.auditParams(), cacheHit)
		if err := writeAudit(ctx, db, models.ReportTypeCashFlow, auditParams, started, recordCount); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func buildCashFlowReport(ctx context.Context, db *gorm.DB, dateRange DateRange, departmentId *int) (*CashFlowReport, int, error) {
	aggCtx, cancel := context.WithTimeout(ctx, config.AggregatorDeadline())
	defer cancel()

	dayBeforeStart := dateRange.Start.AddDate(0, 0, -1)

	g, gctx := errgroup.WithContext(aggCtx)

	var (
		collected      decimal.Decimal
		collectedRows  int
		expenses       *ExpenseBreakdown
		expenseRows    int
		openingAssets  *AssetBreakdown
		closingAssets  *AssetBreakdown
		openingLiabs   *LiabilityBreakdown
		closingLiabs   *LiabilityBreakdown
		assetRows      int
		liabilityRows  int
		revenueWarning string
		expenseWarning string
		assetWarning   string
		liabWarning    string
	)

	g.Go(func() error {
		var err error
		collected, collectedRows, err = paidRevenueTotal(gctx, db, dateRange, departmentId)
		if err != nil && utils.IsMissingTableError(err) {
			revenueWarning = "billing data unavailable; operating inflows reported as zero"
			return nil
		}
		return err
	})

	g.Go(func() error {
		var err error
		expenses, expenseRows, err = GetExpenseBreakdown(gctx, db, dateRange, departmentId)
		if err != nil && utils.IsMissingTableError(err) {
			expenses = &ExpenseBreakdown{}
			expenseWarning = "expense data unavailable; operating outflows reported as zero"
			return nil
		}
		return err
	})

	g.Go(func() error {
		opening, openingRows, err := GetAssetBreakdown(gctx, db, dayBeforeStart)
		if err != nil {
			if utils.IsMissingTableError(err) {
				openingAssets, closingAssets = &AssetBreakdown{}, &AssetBreakdown{}
				assetWarning = "asset data unavailable; investing activity reported as zero"
				return nil
			}
			return err
		}
		closing, closingRows, err := GetAssetBreakdown(gctx, db, dateRange.End)
		if err != nil {
			return err
		}
		openingAssets, closingAssets = opening, closing
		assetRows = openingRows + closingRows
		return nil
	})

	g.Go(func() error {
		opening, openingRows, err := GetLiabilityBreakdown(gctx, db, dayBeforeStart)
		if err != nil {
			if utils.IsMissingTableError(err) {
				openingLiabs, closingLiabs = &LiabilityBreakdown{}, &LiabilityBreakdown{}
				liabWarning = "liability data unavailable; financing activity reported as zero"
				return nil
			}
			return err
		}
		closing, closingRows, err := GetLiabilityBreakdown(gctx, db, dateRange.End)
		if err != nil {
			return err
		}
		openingLiabs, closingLiabs = opening, closing
		liabilityRows = openingRows + closingRows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	operating := CashFlowActivity{}
	if collected.IsPositive() {
		operating.Inflows.Lines = append(operating.Inflows.Lines, ActivityLine{
			Label:  "Cash collected from patient billing",
			Amount: collected,
		})
	}
	operating.Inflows.Total = collected
	if expenses.Total.IsPositive() {
		operating.Outflows.Lines = append(operating.Outflows.Lines, ActivityLine{
			Label:  "Operating expenses paid",
			Amount: expenses.Total,
		})
	}
	operating.Outflows.Total = expenses.Total
	operating.Net = operating.Inflows.Total.Sub(operating.Outflows.Total)

	fixedDelta := closingAssets.Fixed.Total.Sub(openingAssets.Fixed.Total)
	investing := CashFlowActivity{}
	switch {
	case fixedDelta.IsPositive():
		investing.Outflows.Lines = append(investing.Outflows.Lines, ActivityLine{
			Label:  "Purchases of fixed assets",
			Amount: fixedDelta,
		})
		investing.Outflows.Total = fixedDelta
	case fixedDelta.IsNegative():
		investing.Inflows.Lines = append(investing.Inflows.Lines, ActivityLine{
			Label:  "Proceeds from disposal of fixed assets",
			Amount: fixedDelta.Neg(),
		})
		investing.Inflows.Total = fixedDelta.Neg()
	}
	investing.Net = investing.Inflows.Total.Sub(investing.Outflows.Total)

	longTermDelta := closingLiabs.LongTerm.Total.Sub(openingLiabs.LongTerm.Total)
	financing := CashFlowActivity{}
	switch {
	case longTermDelta.IsPositive():
		financing.Inflows.Lines = append(financing.Inflows.Lines, ActivityLine{
			Label:  "Proceeds from long-term borrowings",
			Amount: longTermDelta,
		})
		financing.Inflows.Total = longTermDelta
	case longTermDelta.IsNegative():
		financing.Outflows.Lines = append(financing.Outflows.Lines, ActivityLine{
			Label:  "Repayments of long-term borrowings",
			Amount: longTermDelta.Neg(),
		})
		financing.Outflows.Total = longTermDelta.Neg()
	}
	financing.Net = financing.Inflows.Total.Sub(financing.Outflows.Total)

	netCashFlow := operating.Net.Add(investing.Net).Add(financing.Net)
	beginningCash := openingAssets.Current.Cash

	report := &CashFlowReport{
		Period:              periodOf(dateRange),
		OperatingActivities: operating,
		InvestingActivities: investing,
		FinancingActivities: financing,
		NetCashFlow:         netCashFlow,
		BeginningCash:       beginningCash,
		EndingCash:          beginningCash.Add(netCashFlow),
		GeneratedAt:         time.Now().UTC(),
	}
	for _, w := range []string{revenueWarning, expenseWarning, assetWarning, liabWarning} {
		if w != "" {
			report.Warnings = append(report.Warnings, w)
		}
	}

	return report, collectedRows + expenseRows + assetRows + liabilityRows, nil
}
