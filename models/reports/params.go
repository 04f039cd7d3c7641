package reports

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/clinic_backend/utils"
)

var validate = validator.New()

// PeriodReportParams drives the Profit & Loss and Cash Flow reports.
type PeriodReportParams struct {
	StartDate        string         `json:"start_date" validate:"required"`
	EndDate          string         `json:"end_date" validate:"required"`
	DepartmentId     *int           `json:"department_id" validate:"omitempty,gt=0"`
	EnableComparison bool           `json:"enable_comparison"`
	ComparisonType   ComparisonType `json:"comparison_type" validate:"omitempty,oneof=previous-period year-over-year"`
	GeneratedBy      string         `json:"generated_by"`
	SaveToAudit      bool           `json:"save_to_audit"`
}

// Validate checks formats and ordering and returns the parsed range.
func (p *PeriodReportParams) Validate() (DateRange, error) {
	if err := validate.Struct(p); err != nil {
		return DateRange{}, utils.NewValidationError("invalid report parameters: %v", err)
	}
	start, err := utils.ParseISODate(p.StartDate)
	if err != nil {
		return DateRange{}, err
	}
	end, err := utils.ParseISODate(p.EndDate)
	if err != nil {
		return DateRange{}, err
	}
	if start.After(end) {
		return DateRange{}, utils.NewValidationError("start_date %s must not be after end_date %s", p.StartDate, p.EndDate)
	}
	if p.EnableComparison && p.ComparisonType == "" {
		return DateRange{}, utils.NewValidationError("comparison_type is required when enable_comparison is set")
	}
	return DateRange{Start: start, End: end}, nil
}

// cacheParams lists only the inputs that shape the report content.
// generated_by and save_to_audit never change the numbers, so requests that
// differ only in them share a cache entry.
func (p *PeriodReportParams) cacheParams() map[string]any {
	m := map[string]any{
		"start_date": p.StartDate,
		"end_date":   p.EndDate,
	}
	if p.DepartmentId != nil {
		m["department_id"] = *p.DepartmentId
	}
	if p.EnableComparison {
		m["enable_comparison"] = true
		m["comparison_type"] = string(p.ComparisonType)
	}
	return m
}

// auditParams records the caller's full request for the audit trail.
func (p *PeriodReportParams) auditParams() map[string]any {
	m := map[string]any{
		"start_date":        p.StartDate,
		"end_date":          p.EndDate,
		"enable_comparison": p.EnableComparison,
	}
	if p.DepartmentId != nil {
		m["department_id"] = *p.DepartmentId
	}
	if p.ComparisonType != "" {
		m["comparison_type"] = string(p.ComparisonType)
	}
	if p.GeneratedBy != "" {
		m["generated_by"] = p.GeneratedBy
	}
	return m
}

// BalanceSheetParams drives the Balance Sheet report. Comparison is an
// explicit earlier date rather than a derived period.
type BalanceSheetParams struct {
	AsOfDate       string `json:"as_of_date" validate:"required"`
	ComparisonDate string `json:"comparison_date"`
	DepartmentId   *int   `json:"department_id" validate:"omitempty,gt=0"`
	GeneratedBy    string `json:"generated_by"`
	SaveToAudit    bool   `json:"save_to_audit"`
}

// Validate returns the parsed as-of date and, when requested, the comparison
// date (nil otherwise). The comparison date must be strictly before as_of_date.
func (p *BalanceSheetParams) Validate() (asOf time.Time, comparison *time.Time, err error) {
	if err := validate.Struct(p); err != nil {
		return time.Time{}, nil, utils.NewValidationError("invalid report parameters: %v", err)
	}
	asOf, err = utils.ParseISODate(p.AsOfDate)
	if err != nil {
		return time.Time{}, nil, err
	}
	if p.ComparisonDate == "" {
		return asOf, nil, nil
	}
	compTime, err := utils.ParseISODate(p.ComparisonDate)
	if err != nil {
		return time.Time{}, nil, err
	}
	if !compTime.Before(asOf) {
		return time.Time{}, nil, utils.NewValidationError("comparison_date %s must be strictly before as_of_date %s", p.ComparisonDate, p.AsOfDate)
	}
	return asOf, &compTime, nil
}

func (p *BalanceSheetParams) cacheParams() map[string]any {
	m := map[string]any{
		"as_of_date": p.AsOfDate,
	}
	if p.ComparisonDate != "" {
		m["comparison_date"] = p.ComparisonDate
	}
	if p.DepartmentId != nil {
		m["department_id"] = *p.DepartmentId
	}
	return m
}

func (p *BalanceSheetParams) auditParams() map[string]any {
	m := map[string]any{
		"as_of_date": p.AsOfDate,
	}
	if p.ComparisonDate != "" {
		m["comparison_date"] = p.ComparisonDate
	}
	if p.DepartmentId != nil {
		m["department_id"] = *p.DepartmentId
	}
	if p.GeneratedBy != "" {
		m["generated_by"] = p.GeneratedBy
	}
	return m
}
