package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReportCacheEnabled gates the Redis-backed report cache.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

// ReportCacheTTL is the lifetime of a cached report.
//
// Env: REPORT_CACHE_TTL_SECONDS (default 300s)
func ReportCacheTTL() time.Duration {
	ttl := 300
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

// AggregatorDeadline bounds each data-read issued by a report generator.
// A report over an extreme date range must not run unbounded.
//
// Env: REPORT_AGGREGATOR_DEADLINE_SECONDS (default 30s)
func AggregatorDeadline() time.Duration {
	secs := 30
	if v := strings.TrimSpace(os.Getenv("REPORT_AGGREGATOR_DEADLINE_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			secs = n
		}
	}
	return time.Duration(secs) * time.Second
}

// ReportSlowMs is the threshold above which a report generation is logged as slow.
//
// Env: REPORT_SLOW_MS (default 500ms)
func ReportSlowMs() int64 {
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

// Expense estimation rates.
//
// No dedicated expense ledger exists yet; operational expense categories are
// estimated as a percentage of paid revenue in the same period. These are
// approximations, not bookkeeping facts, and are tunable per deployment:
// - EXPENSE_EST_SALARIES_PCT (default 35)
// - EXPENSE_EST_SUPPLIES_PCT (default 15)
// - EXPENSE_EST_UTILITIES_PCT (default 5)
// - EXPENSE_EST_MAINTENANCE_PCT (default 5)
func ExpenseEstimateRates() (salaries, supplies, utilities, maintenance decimal.Decimal) {
	return pctFromEnv("EXPENSE_EST_SALARIES_PCT", 35),
		pctFromEnv("EXPENSE_EST_SUPPLIES_PCT", 15),
		pctFromEnv("EXPENSE_EST_UTILITIES_PCT", 5),
		pctFromEnv("EXPENSE_EST_MAINTENANCE_PCT", 5)
}

func pctFromEnv(key string, def int64) decimal.Decimal {
	pct := decimal.NewFromInt(def)
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			pct = d
		}
	}
	return pct.Div(decimal.NewFromInt(100))
}
