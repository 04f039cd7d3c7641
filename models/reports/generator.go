package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer trace.Tracer = otel.Tracer("clinic-reports")

func periodOf(r DateRange) Period {
	return Period{
		StartDate: utils.FormatISODate(r.Start),
		EndDate:   utils.FormatISODate(r.End),
	}
}

// resolveDepartment falls back to the caller's department when the request
// does not name one, so department-scoped users get their own numbers by
// default. Runs before key derivation: the resolved department is part of the
// cache identity.
func resolveDepartment(ctx context.Context, params *PeriodReportParams) {
	if params.DepartmentId != nil {
		return
	}
	if departmentId, ok := utils.GetDepartmentIdFromContext(ctx); ok && departmentId > 0 {
		params.DepartmentId = &departmentId
	}
}

// markCacheHit annotates audit parameters for a generation served from the
// cache. Such rows carry no aggregator record count; the marker keeps them
// distinguishable from a genuinely empty report.
func markCacheHit(params map[string]any, cacheHit bool) map[string]any {
	if cacheHit {
		params["cache_hit"] = true
	}
	return params
}

// writeAudit persists the fail-closed audit entry after a successful
// generation. Its error aborts the whole call: an un-audited report
// generation is a compliance violation.
func writeAudit(ctx context.Context, db *gorm.DB, reportType models.ReportType, params map[string]any, started time.Time, recordCount int) error {
	_, err := models.CreateAuditLog(ctx, db, &models.NewAuditLog{
		ReportType:      reportType,
		Action:          models.AuditActionGenerate,
		Parameters:      params,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		RecordCount:     recordCount,
		Success:         true,
	})
	return err
}

// writeFailureAudit records a failed generation. Best-effort: the original
// error is what the caller needs to see.
func writeFailureAudit(ctx context.Context, db *gorm.DB, reportType models.ReportType, params map[string]any, started time.Time, genErr error) {
	_, _ = models.CreateAuditLog(ctx, db, &models.NewAuditLog{
		ReportType:      reportType,
		Action:          models.AuditActionGenerate,
		Parameters:      params,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		Success:         false,
		ErrorMessage:    genErr.Error(),
	})
}
