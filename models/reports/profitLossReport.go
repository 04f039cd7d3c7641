package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/clinic_backend/config"
	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// GenerateProfitLossReport produces the Profit & Loss statement for a period.
//
// Flow: validate, consult the cache, otherwise aggregate revenue and expenses
// concurrently, attach the comparison period when requested, cache the fully
// assembled report, and (fail-closed) write the audit entry.
func GenerateProfitLossReport(ctx context.Context, db *gorm.DB, cache *ReportCache, params *PeriodReportParams) (*ProfitLossReport, error) {
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

	ctx, span := tracer.Start(ctx, "report.profit_loss")
	defer span.End()
	defer logSlowReport(ctx, "profit_loss_report", started, map[string]any{
		"start_date": params.StartDate,
		"end_date":   params.EndDate,
	})

	key := GenerateKey(models.ReportTypeProfitLoss, tenantId, params.cacheParams())

	var report *ProfitLossReport
	var recordCount int
	var cacheHit bool

	var cached ProfitLossReport
	if hit, cerr := cache.Get(ctx, key, &cached); cerr != nil {
		config.LogError(config.GetLogger(), "reports", "GenerateProfitLossReport", "cache get", key, cerr)
	} else if hit {
		report = &cached
		cacheHit = true
	}

	if report == nil {
		err = cache.withComputeLock(ctx, key, func() error {
			// Another request may have filled the cache while we held the lock.
			var again ProfitLossReport
			if hit, _ := cache.Get(ctx, key, &again); hit {
				report = &again
				cacheHit = true
				return nil
			}

			built, rows, err := buildProfitLossReport(ctx, db, dateRange, params.DepartmentId)
			if err != nil {
				return err
			}
			recordCount = rows

			if params.EnableComparison {
				comparisonRange := ComparisonPeriod(dateRange, params.ComparisonType)
				previous, prevRows, err := buildProfitLossReport(ctx, db, comparisonRange, params.DepartmentId)
				if err != nil {
					return err
				}
				recordCount += prevRows
				built.Comparison = &ProfitLossComparison{
					Period:        periodOf(comparisonRange),
					Type:          params.ComparisonType,
					Revenue:       Compare(built.Revenue.Total, previous.Revenue.Total),
					Expenses:      Compare(built.Expenses.Total, previous.Expenses.Total),
					NetProfitLoss: Compare(built.NetProfitLoss, previous.NetProfitLoss),
				}
			}

			cache.Set(ctx, key, built)
			report = built
			return nil
		})
		if err != nil {
			if params.SaveToAudit {
				writeFailureAudit(ctx, db, models.ReportTypeProfitLoss, params.auditParams(), started, err)
			}
			return nil, err
		}
	}

	report.GeneratedBy = params.GeneratedBy

	if params.SaveToAudit {
		auditParams := markCacheHit(params.auditParams(), cacheHit)
		if err := writeAudit(ctx, db, models.ReportTypeProfitLoss, auditParams, started, recordCount); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// buildProfitLossReport assembles one period without comparison, cache or
// audit concerns; the exported entrypoint composes it for both the current
// and the comparison period.
func buildProfitLossReport(ctx context.Context, db *gorm.DB, dateRange DateRange, departmentId *int) (*ProfitLossReport, int, error) {
	aggCtx, cancel := context.WithTimeout(ctx, config.AggregatorDeadline())
	defer cancel()

	g, gctx := errgroup.WithContext(aggCtx)

	var (
		revenue        *RevenueBreakdown
		expenses       *ExpenseBreakdown
		revenueRows    int
		expenseRows    int
		revenueWarning string
		expenseWarning string
	)

	g.Go(func() error {
		var err error
		revenue, revenueRows, err = GetRevenueBreakdown(gctx, db, dateRange, departmentId)
		if err != nil && utils.IsMissingTableError(err) {
			revenue = &RevenueBreakdown{}
			revenueWarning = "revenue data unavailable; reported as zero"
			return nil
		}
		return err
	})

	g.Go(func() error {
		var err error
		expenses, expenseRows, err = GetExpenseBreakdown(gctx, db, dateRange, departmentId)
		if err != nil && utils.IsMissingTableError(err) {
			expenses = &ExpenseBreakdown{}
			expenseWarning = "expense data unavailable; reported as zero"
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	report := &ProfitLossReport{
		Period:        periodOf(dateRange),
		Revenue:       *revenue,
		Expenses:      *expenses,
		NetProfitLoss: revenue.Total.Sub(expenses.Total),
		GeneratedAt:   time.Now().UTC(),
	}
	if revenueWarning != "" {
		report.Warnings = append(report.Warnings, revenueWarning)
	}
	if expenseWarning != "" {
		report.Warnings = append(report.Warnings, expenseWarning)
	}

	return report, revenueRows + expenseRows, nil
}
