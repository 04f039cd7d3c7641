package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mmdatafocus/clinic_backend/config"
	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/models/reports"
	"github.com/mmdatafocus/clinic_backend/utils"
)

// report-smoke generates all three financial statements for one tenant and
// prints them as JSON. Useful after migrations or data imports to confirm the
// reporting pipeline end to end, including cache and audit writes.
func main() {
	tenantID := flag.String("tenant-id", "", "Tenant to report on (required)")
	from := flag.String("from", "", "Period start (YYYY-MM-DD). Defaults to the first day of the current month.")
	to := flag.String("to", "", "Period end (YYYY-MM-DD). Defaults to today.")
	departmentID := flag.Int("department-id", 0, "Optional department filter for period reports")
	comparison := flag.Bool("comparison", false, "Attach a previous-period comparison to the period reports")
	audit := flag.Bool("audit", false, "Record the generations in the audit trail")
	migrate := flag.Bool("migrate", false, "Run schema migration before generating")
	flag.Parse()

	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "-tenant-id is required")
		os.Exit(1)
	}

	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	if *migrate {
		models.MigrateTable()
	}

	now := time.Now()
	startDate := *from
	if startDate == "" {
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	}
	endDate := *to
	if endDate == "" {
		endDate = now.Format("2006-01-02")
	}

	ctx := context.Background()
	ctx = utils.SetTenantIdInContext(ctx, *tenantID)
	ctx = utils.SetUserNameInContext(ctx, "ReportSmoke")
	ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())

	cache := reports.DefaultReportCache()

	periodParams := &reports.PeriodReportParams{
		StartDate:        startDate,
		EndDate:          endDate,
		EnableComparison: *comparison,
		GeneratedBy:      "report-smoke",
		SaveToAudit:      *audit,
	}
	if *comparison {
		periodParams.ComparisonType = reports.ComparisonTypePreviousPeriod
	}
	if *departmentID > 0 {
		periodParams.DepartmentId = departmentID
	}

	pl, err := reports.GenerateProfitLossReport(ctx, db, cache, periodParams)
	if err != nil {
		fmt.Fprintf(os.Stderr, "profit & loss failed: %v\n", err)
		os.Exit(1)
	}
	printJSON("profit_loss", pl)

	bs, err := reports.GenerateBalanceSheetReport(ctx, db, cache, &reports.BalanceSheetParams{
		AsOfDate:    endDate,
		GeneratedBy: "report-smoke",
		SaveToAudit: *audit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "balance sheet failed: %v\n", err)
		os.Exit(1)
	}
	printJSON("balance_sheet", bs)

	cf, err := reports.GenerateCashFlowReport(ctx, db, cache, periodParams)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cash flow failed: %v\n", err)
		os.Exit(1)
	}
	printJSON("cash_flow", cf)

	if !bs.AccountingEquationBalanced {
		fmt.Fprintln(os.Stderr, "warning: balance sheet does not balance")
	}
}

func printJSON(name string, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: marshal failed: %v\n", name, err)
		os.Exit(1)
	}
	fmt.Printf("== %s ==\n%s\n", name, out)
}
