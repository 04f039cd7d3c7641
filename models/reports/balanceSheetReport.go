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

// GenerateBalanceSheetReport produces the Balance Sheet as of a date.
// Equity is derived, not stored: equity = assets - liabilities, attributed to
// retained earnings. AccountingEquationBalanced reflects an actual tolerance
// check of assets == liabilities + equity, never an assumption.
func GenerateBalanceSheetReport(ctx context.Context, db *gorm.DB, cache *ReportCache, params *BalanceSheetParams) (*BalanceSheetReport, error) {
	started := time.Now()

	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorTenantIdRequired
	}

	asOfDate, comparisonDate, err := params.Validate()
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "report.balance_sheet")
	defer span.End()
	defer logSlowReport(ctx, "balance_sheet_report", started, map[string]any{
		"as_of_date": params.AsOfDate,
	})

	key := GenerateKey(models.ReportTypeBalanceSheet, tenantId, params.cacheParams())

	var report *BalanceSheetReport
	var recordCount int
	var cacheHit bool

	var cached BalanceSheetReport
	if hit, cerr := cache.Get(ctx, key, &cached); cerr != nil {
		config.LogError(config.GetLogger(), "reports", "GenerateBalanceSheetReport", "cache get", key, cerr)
	} else if hit {
		report = &cached
		cacheHit = true
	}

	if report == nil {
		err = cache.withComputeLock(ctx, key, func() error {
			var again BalanceSheetReport
			if hit, _ := cache.Get(ctx, key, &again); hit {
				report = &again
				cacheHit = true
				return nil
			}

			built, rows, err := buildBalanceSheetReport(ctx, db, asOfDate)
			if err != nil {
				return err
			}
			recordCount = rows

			if comparisonDate != nil {
				previous, prevRows, err := buildBalanceSheetReport(ctx, db, *comparisonDate)
				if err != nil {
					return err
				}
				recordCount += prevRows
				built.Comparison = &BalanceSheetComparison{
					AsOfDate:    utils.FormatISODate(*comparisonDate),
					Assets:      Compare(built.Assets.Total, previous.Assets.Total),
					Liabilities: Compare(built.Liabilities.Total, previous.Liabilities.Total),
					Equity:      Compare(built.Equity.Total, previous.Equity.Total),
				}
			}

			cache.Set(ctx, key, built)
			report = built
			return nil
		})
		if err != nil {
			if params.SaveToAudit {
				writeFailureAudit(ctx, db, models.ReportTypeBalanceSheet, params.auditParams(), started, err)
			}
			return nil, err
		}
	}

	report.GeneratedBy = params.GeneratedBy

	if params.SaveToAudit {
		auditParams := markCacheHit(params.auditParams(), cacheHit)
		if err := writeAudit(ctx, db, models.ReportTypeBalanceSheet, auditParams, started, recordCount); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func buildBalanceSheetReport(ctx context.Context, db *gorm.DB, asOfDate time.Time) (*BalanceSheetReport, int, error) {
	aggCtx, cancel := context.WithTimeout(ctx, config.AggregatorDeadline())
	defer cancel()

	g, gctx := errgroup.WithContext(aggCtx)

	var (
		assets           *AssetBreakdown
		liabilities      *LiabilityBreakdown
		assetRows        int
		liabilityRows    int
		assetWarning     string
		liabilityWarning string
	)

	g.Go(func() error {
		var err error
		assets, assetRows, err = GetAssetBreakdown(gctx, db, asOfDate)
		if err != nil && utils.IsMissingTableError(err) {
			assets = &AssetBreakdown{}
			assetWarning = "asset data unavailable; reported as zero"
			return nil
		}
		return err
	})

	g.Go(func() error {
		var err error
		liabilities, liabilityRows, err = GetLiabilityBreakdown(gctx, db, asOfDate)
		if err != nil && utils.IsMissingTableError(err) {
			liabilities = &LiabilityBreakdown{}
			liabilityWarning = "liability data unavailable; reported as zero"
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	equity := EquityBreakdown{
		RetainedEarnings: assets.Total.Sub(liabilities.Total),
		Total:            assets.Total.Sub(liabilities.Total),
	}

	report := &BalanceSheetReport{
		AsOfDate:                   utils.FormatISODate(asOfDate),
		Assets:                     *assets,
		Liabilities:                *liabilities,
		Equity:                     equity,
		AccountingEquationBalanced: withinTolerance(assets.Total, liabilities.Total.Add(equity.Total)),
		GeneratedAt:                time.Now().UTC(),
	}
	if assetWarning != "" {
		report.Warnings = append(report.Warnings, assetWarning)
	}
	if liabilityWarning != "" {
		report.Warnings = append(report.Warnings, liabilityWarning)
	}

	return report, assetRows + liabilityRows, nil
}
