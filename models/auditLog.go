package models

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/mmdatafocus/clinic_backend/utils"
	"gorm.io/gorm"
)

// AuditLog is append-only. Rows are written once per report generate/view/export
// and are never updated or deleted through the application; a DB-level trigger
// rejects UPDATE/DELETE (see EnsureAuditLogImmutability).
//
// There is no dedicated action column: the action is folded into the
// parameters JSON under the "action" key.
type AuditLog struct {
	ID              int        `gorm:"primary_key" json:"id"`
	TenantId        string     `gorm:"index;not null" json:"tenant_id" binding:"required"`
	UserId          int        `gorm:"index" json:"user_id"`
	UserName        string     `gorm:"size:255" json:"user_name"`
	UserEmail       string     `gorm:"size:255" json:"user_email"`
	ReportType      ReportType `gorm:"size:50;index;not null" json:"report_type" binding:"required"`
	Parameters      string     `gorm:"type:json" json:"parameters"`
	GeneratedAt     time.Time  `gorm:"index;not null" json:"generated_at"`
	ExecutionTimeMs int64      `json:"execution_time_ms"`
	RecordCount     int        `json:"record_count"`
	Success         bool       `gorm:"not null;default:true" json:"success"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`
	IpAddress       string     `gorm:"size:64" json:"ip_address"`
	UserAgent       string     `gorm:"size:512" json:"user_agent"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (obj AuditLog) GetId() int {
	return obj.ID
}

type NewAuditLog struct {
	ReportType      ReportType     `json:"report_type" binding:"required"`
	Action          AuditAction    `json:"action" binding:"required"`
	Parameters      map[string]any `json:"parameters"`
	ExecutionTimeMs int64          `json:"execution_time_ms"`
	RecordCount     int            `json:"record_count"`
	Success         bool           `json:"success"`
	ErrorMessage    string         `json:"error_message"`
}

type AuditLogFilter struct {
	UserId     *int
	ReportType *ReportType
	Action     *AuditAction
	FromDate   *time.Time
	ToDate     *time.Time
	Page       int
	Limit      int
}

type AuditLogPagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type AuditLogPage struct {
	Logs       []*AuditLog        `json:"logs"`
	Pagination AuditLogPagination `json:"pagination"`
}

type AuditUserCount struct {
	UserId   int    `json:"user_id"`
	UserName string `json:"user_name"`
	Count    int64  `json:"count"`
}

type AuditStatistics struct {
	Total        int64            `json:"total"`
	ByReportType map[string]int64 `json:"by_report_type"`
	ByAction     map[string]int64 `json:"by_action"`
	TopUsers     []AuditUserCount `json:"top_users"`
}

// CreateAuditLog persists one audit entry inside a transaction: begin, insert,
// commit; any failure rolls back and surfaces as an AuditWriteError. User
// identity, ip and user agent come from the request context.
func CreateAuditLog(ctx context.Context, db *gorm.DB, input *NewAuditLog) (*AuditLog, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorTenantIdRequired
	}

	params, err := foldActionIntoParameters(input.Action, input.Parameters)
	if err != nil {
		return nil, &utils.AuditWriteError{Err: err}
	}

	entry := AuditLog{
		TenantId:        tenantId,
		ReportType:      input.ReportType,
		Parameters:      params,
		GeneratedAt:     time.Now().UTC(),
		ExecutionTimeMs: input.ExecutionTimeMs,
		RecordCount:     input.RecordCount,
		Success:         input.Success,
		ErrorMessage:    input.ErrorMessage,
	}
	if userId, ok := utils.GetUserIdFromContext(ctx); ok {
		entry.UserId = userId
	}
	if userName, ok := utils.GetUserNameFromContext(ctx); ok {
		entry.UserName = userName
	}
	if userEmail, ok := utils.GetUserEmailFromContext(ctx); ok {
		entry.UserEmail = userEmail
	}
	if ip, ok := utils.GetIpAddressFromContext(ctx); ok {
		entry.IpAddress = ip
	}
	if ua, ok := utils.GetUserAgentFromContext(ctx); ok {
		entry.UserAgent = ua
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, &utils.AuditWriteError{Err: err}
	}
	return &entry, nil
}

// foldActionIntoParameters serializes the parameters with the action merged in.
// json.Marshal sorts map keys, so the stored JSON is stable for equal inputs.
func foldActionIntoParameters(action AuditAction, params map[string]any) (string, error) {
	merged := make(map[string]any, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged["action"] = string(action)
	return utils.MarshalToJSON(merged)
}

// GetAuditLogs lists a tenant's audit entries, newest first. Tenant id is
// mandatory and always the first predicate.
func GetAuditLogs(ctx context.Context, db *gorm.DB, filter AuditLogFilter) (*AuditLogPage, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorTenantIdRequired
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}

	dbCtx := db.WithContext(ctx).Model(&AuditLog{}).Where("tenant_id = ?", tenantId)
	if filter.UserId != nil && *filter.UserId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", *filter.UserId)
	}
	if filter.ReportType != nil && *filter.ReportType != "" {
		dbCtx = dbCtx.Where("report_type = ?", *filter.ReportType)
	}
	if filter.Action != nil && *filter.Action != "" {
		dbCtx = dbCtx.Where("JSON_UNQUOTE(JSON_EXTRACT(parameters, '$.action')) = ?", string(*filter.Action))
	}
	if filter.FromDate != nil {
		dbCtx = dbCtx.Where("generated_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		dbCtx = dbCtx.Where("generated_at <= ?", *filter.ToDate)
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []*AuditLog
	err := dbCtx.Order("generated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return &AuditLogPage{
		Logs: logs,
		Pagination: AuditLogPagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// GetAuditStatistics returns the tenant's total entry count plus group-by
// counts per report type, per action and per user (top 10).
func GetAuditStatistics(ctx context.Context, db *gorm.DB, fromDate, toDate *time.Time) (*AuditStatistics, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorTenantIdRequired
	}

	base := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&AuditLog{}).Where("tenant_id = ?", tenantId)
		if fromDate != nil {
			q = q.Where("generated_at >= ?", *fromDate)
		}
		if toDate != nil {
			q = q.Where("generated_at <= ?", *toDate)
		}
		return q
	}

	stats := &AuditStatistics{
		ByReportType: map[string]int64{},
		ByAction:     map[string]int64{},
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type keyCount struct {
		Key   string
		Count int64
	}

	var byType []keyCount
	err := base().
		Select("report_type AS `key`, COUNT(*) AS count").
		Group("report_type").
		Scan(&byType).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byType {
		stats.ByReportType[row.Key] = row.Count
	}

	var byAction []keyCount
	err = base().
		Select("JSON_UNQUOTE(JSON_EXTRACT(parameters, '$.action')) AS `key`, COUNT(*) AS count").
		Group("JSON_UNQUOTE(JSON_EXTRACT(parameters, '$.action'))").
		Scan(&byAction).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byAction {
		stats.ByAction[row.Key] = row.Count
	}

	err = base().
		Select("user_id, user_name, COUNT(*) AS count").
		Group("user_id, user_name").
		Order("count DESC").
		Limit(10).
		Scan(&stats.TopUsers).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// VerifyAuditLogImmutability probes the store-level append-only constraint by
// attempting an UPDATE against an existing row. The expected path is a
// constraint rejection from the store (returns nil: not mutated). An UPDATE
// that affects rows means the constraint is NOT enforced and is itself the
// error condition.
func VerifyAuditLogImmutability(ctx context.Context, db *gorm.DB, logId int) error {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return utils.ErrorTenantIdRequired
	}

	var count int64
	err := db.WithContext(ctx).Model(&AuditLog{}).
		Where("tenant_id = ? AND id = ?", tenantId, logId).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return utils.ErrorRecordNotFound
	}

	res := db.WithContext(ctx).Exec(
		"UPDATE audit_logs SET record_count = record_count + 1 WHERE tenant_id = ? AND id = ?",
		tenantId, logId,
	)
	if res.Error != nil {
		if isAppendOnlyRejection(res.Error) {
			return nil
		}
		return res.Error
	}
	if res.RowsAffected > 0 {
		return &utils.ImmutabilityViolationError{LogId: logId}
	}
	return nil
}

// isAppendOnlyRejection matches the SIGNAL raised by the audit_logs trigger.
func isAppendOnlyRejection(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "append-only") || strings.Contains(msg, "45000")
}
