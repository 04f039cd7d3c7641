package models

// ReportType identifies one of the three canonical financial statements.
type ReportType string

const (
	ReportTypeProfitLoss   ReportType = "profit-loss"
	ReportTypeBalanceSheet ReportType = "balance-sheet"
	ReportTypeCashFlow     ReportType = "cash-flow"
)

// AuditAction is folded into the parameters JSON; audit_logs has no dedicated
// action column.
type AuditAction string

const (
	AuditActionGenerate AuditAction = "generate"
	AuditActionView     AuditAction = "view"
	AuditActionExport   AuditAction = "export"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

type AssetCategory string

const (
	AssetCategoryCash               AssetCategory = "cash"
	AssetCategoryAccountsReceivable AssetCategory = "accounts_receivable"
	AssetCategoryInventory          AssetCategory = "inventory"
	AssetCategoryEquipment          AssetCategory = "equipment"
	AssetCategoryBuildings          AssetCategory = "buildings"
	AssetCategoryLand               AssetCategory = "land"
	AssetCategoryVehicles           AssetCategory = "vehicles"
)

type LiabilityCategory string

const (
	LiabilityCategoryAccountsPayable LiabilityCategory = "accounts_payable"
	LiabilityCategoryAccruedExpenses LiabilityCategory = "accrued_expenses"
	LiabilityCategoryLoans           LiabilityCategory = "loans"
	LiabilityCategoryMortgages       LiabilityCategory = "mortgages"
)

type AdjustmentType string

const (
	AdjustmentTypeRefund   AdjustmentType = "refund"
	AdjustmentTypeWriteOff AdjustmentType = "write_off"
	AdjustmentTypeDiscount AdjustmentType = "discount"
)

type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "pending"
	AdjustmentStatusApproved AdjustmentStatus = "approved"
	AdjustmentStatusRejected AdjustmentStatus = "rejected"
)
