package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// amountTolerance absorbs rounding drift when checking summation invariants.
var amountTolerance = decimal.NewFromFloat(0.01)

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}

// Period is an inclusive calendar date range (YYYY-MM-DD boundaries).
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type RevenueBreakdown struct {
	Consultations decimal.Decimal `json:"consultations"`
	Procedures    decimal.Decimal `json:"procedures"`
	Medications   decimal.Decimal `json:"medications"`
	LabTests      decimal.Decimal `json:"lab_tests"`
	Other         decimal.Decimal `json:"other"`
	Total         decimal.Decimal `json:"total"`
}

// ExpenseBreakdown's salaries/supplies/utilities/maintenance fields are
// estimates derived from paid revenue, not ledger reads. Only Other is backed
// by stored records (approved refunds/write-offs).
type ExpenseBreakdown struct {
	Salaries    decimal.Decimal `json:"salaries"`
	Supplies    decimal.Decimal `json:"supplies"`
	Utilities   decimal.Decimal `json:"utilities"`
	Maintenance decimal.Decimal `json:"maintenance"`
	Other       decimal.Decimal `json:"other"`
	Total       decimal.Decimal `json:"total"`
}

type CurrentAssets struct {
	Cash               decimal.Decimal `json:"cash"`
	AccountsReceivable decimal.Decimal `json:"accounts_receivable"`
	Inventory          decimal.Decimal `json:"inventory"`
	Total              decimal.Decimal `json:"total"`
}

type FixedAssets struct {
	Equipment decimal.Decimal `json:"equipment"`
	Buildings decimal.Decimal `json:"buildings"`
	Land      decimal.Decimal `json:"land"`
	Vehicles  decimal.Decimal `json:"vehicles"`
	Total     decimal.Decimal `json:"total"`
}

type AssetBreakdown struct {
	Current CurrentAssets   `json:"current"`
	Fixed   FixedAssets     `json:"fixed"`
	Total   decimal.Decimal `json:"total"`
}

type CurrentLiabilities struct {
	AccountsPayable decimal.Decimal `json:"accounts_payable"`
	AccruedExpenses decimal.Decimal `json:"accrued_expenses"`
	Total           decimal.Decimal `json:"total"`
}

type LongTermLiabilities struct {
	Loans     decimal.Decimal `json:"loans"`
	Mortgages decimal.Decimal `json:"mortgages"`
	Total     decimal.Decimal `json:"total"`
}

type LiabilityBreakdown struct {
	Current  CurrentLiabilities  `json:"current"`
	LongTerm LongTermLiabilities `json:"long_term"`
	Total    decimal.Decimal     `json:"total"`
}

// EquityBreakdown is derived, never stored: total = assets - liabilities.
type EquityBreakdown struct {
	RetainedEarnings decimal.Decimal `json:"retained_earnings"`
	Total            decimal.Decimal `json:"total"`
}

type ComparisonMetric struct {
	Current         decimal.Decimal `json:"current"`
	Previous        decimal.Decimal `json:"previous"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
}

type ProfitLossComparison struct {
	Period        Period           `json:"period"`
	Type          ComparisonType   `json:"type"`
	Revenue       ComparisonMetric `json:"revenue"`
	Expenses      ComparisonMetric `json:"expenses"`
	NetProfitLoss ComparisonMetric `json:"net_profit_loss"`
}

type ProfitLossReport struct {
	Period        Period                `json:"period"`
	Revenue       RevenueBreakdown      `json:"revenue"`
	Expenses      ExpenseBreakdown      `json:"expenses"`
	NetProfitLoss decimal.Decimal       `json:"net_profit_loss"`
	Comparison    *ProfitLossComparison `json:"comparison,omitempty"`
	GeneratedAt   time.Time             `json:"generated_at"`
	GeneratedBy   string                `json:"generated_by"`
	Warnings      []string              `json:"warnings,omitempty"`
}

type BalanceSheetComparison struct {
	AsOfDate    string           `json:"as_of_date"`
	Assets      ComparisonMetric `json:"assets"`
	Liabilities ComparisonMetric `json:"liabilities"`
	Equity      ComparisonMetric `json:"equity"`
}

type BalanceSheetReport struct {
	AsOfDate                   string                  `json:"as_of_date"`
	Assets                     AssetBreakdown          `json:"assets"`
	Liabilities                LiabilityBreakdown      `json:"liabilities"`
	Equity                     EquityBreakdown         `json:"equity"`
	AccountingEquationBalanced bool                    `json:"accounting_equation_balanced"`
	Comparison                 *BalanceSheetComparison `json:"comparison,omitempty"`
	GeneratedAt                time.Time               `json:"generated_at"`
	GeneratedBy                string                  `json:"generated_by"`
	Warnings                   []string                `json:"warnings,omitempty"`
}

type ActivityLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type ActivityLines struct {
	Lines []ActivityLine  `json:"lines,omitempty"`
	Total decimal.Decimal `json:"total"`
}

type CashFlowActivity struct {
	Inflows  ActivityLines   `json:"inflows"`
	Outflows ActivityLines   `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
}

type CashFlowComparison struct {
	Period      Period           `json:"period"`
	Type        ComparisonType   `json:"type"`
	NetCashFlow ComparisonMetric `json:"net_cash_flow"`
}

type CashFlowReport struct {
	Period              Period              `json:"period"`
	OperatingActivities CashFlowActivity    `json:"operating_activities"`
	InvestingActivities CashFlowActivity    `json:"investing_activities"`
	FinancingActivities CashFlowActivity    `json:"financing_activities"`
	NetCashFlow         decimal.Decimal     `json:"net_cash_flow"`
	BeginningCash       decimal.Decimal     `json:"beginning_cash"`
	EndingCash          decimal.Decimal     `json:"ending_cash"`
	Comparison          *CashFlowComparison `json:"comparison,omitempty"`
	GeneratedAt         time.Time           `json:"generated_at"`
	GeneratedBy         string              `json:"generated_by"`
	Warnings            []string            `json:"warnings,omitempty"`
}
