package models_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mmdatafocus/clinic_backend/models"
	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func auditContext() context.Context {
	ctx := utils.SetTenantIdInContext(context.Background(), "tenant-a")
	ctx = utils.SetUserIdInContext(ctx, 7)
	ctx = utils.SetUserNameInContext(ctx, "alice")
	ctx = utils.SetUserEmailInContext(ctx, "alice@example.com")
	ctx = utils.SetIpAddressInContext(ctx, "10.0.0.5")
	ctx = utils.SetUserAgentInContext(ctx, "smoke/1.0")
	return ctx
}

func TestCreateAuditLog(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `audit_logs`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	entry, err := models.CreateAuditLog(ctx, db, &models.NewAuditLog{
		ReportType:      models.ReportTypeProfitLoss,
		Action:          models.AuditActionGenerate,
		Parameters:      map[string]any{"start_date": "2024-01-01", "end_date": "2024-03-31"},
		ExecutionTimeMs: 12,
		RecordCount:     4,
		Success:         true,
	})
	require.NoError(t, err)

	assert.Equal(t, 42, entry.ID)
	assert.Equal(t, "tenant-a", entry.TenantId)
	assert.Equal(t, 7, entry.UserId)
	assert.Equal(t, "alice", entry.UserName)
	assert.Equal(t, "alice@example.com", entry.UserEmail)
	assert.Equal(t, "10.0.0.5", entry.IpAddress)
	assert.Equal(t, "smoke/1.0", entry.UserAgent)
	assert.True(t, entry.Success)

	// The action is folded into the parameters JSON.
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(entry.Parameters), &params))
	assert.Equal(t, "generate", params["action"])
	assert.Equal(t, "2024-01-01", params["start_date"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLog_StableParameterEncoding(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `audit_logs`").
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
		mock.ExpectCommit()
	}

	input := func(params map[string]any) *models.NewAuditLog {
		return &models.NewAuditLog{
			ReportType: models.ReportTypeCashFlow,
			Action:     models.AuditActionView,
			Parameters: params,
			Success:    true,
		}
	}
	a, err := models.CreateAuditLog(ctx, db, input(map[string]any{"start_date": "2024-01-01", "end_date": "2024-03-31"}))
	require.NoError(t, err)
	b, err := models.CreateAuditLog(ctx, db, input(map[string]any{"end_date": "2024-03-31", "start_date": "2024-01-01"}))
	require.NoError(t, err)

	assert.Equal(t, a.Parameters, b.Parameters)
}

func TestCreateAuditLog_RollsBackOnFailure(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `audit_logs`").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	_, err := models.CreateAuditLog(ctx, db, &models.NewAuditLog{
		ReportType: models.ReportTypeProfitLoss,
		Action:     models.AuditActionGenerate,
		Success:    true,
	})
	require.Error(t, err)
	assert.True(t, utils.IsAuditWriteError(err), "expected AuditWriteError, got %T", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLog_RequiresTenant(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := models.CreateAuditLog(context.Background(), db, &models.NewAuditLog{
		ReportType: models.ReportTypeProfitLoss,
		Action:     models.AuditActionGenerate,
	})
	assert.ErrorIs(t, err, utils.ErrorTenantIdRequired)
}

func TestGetAuditLogs_Pagination(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `audit_logs`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))
	mock.ExpectQuery("(?s)SELECT \\* FROM `audit_logs`.+ORDER BY generated_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "report_type", "parameters"}).
			AddRow(2, "tenant-a", "profit-loss", `{"action":"generate"}`).
			AddRow(1, "tenant-a", "cash-flow", `{"action":"view"}`))

	page, err := models.GetAuditLogs(ctx, db, models.AuditLogFilter{Page: 1, Limit: 50})
	require.NoError(t, err)

	assert.Len(t, page.Logs, 2)
	assert.Equal(t, int64(120), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.Pages)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 50, page.Pagination.Limit)
}

func TestGetAuditLogs_ActionFilterUsesParametersJSON(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	mock.ExpectQuery("(?s)SELECT count\\(\\*\\) FROM `audit_logs`.+JSON_EXTRACT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("(?s)SELECT \\* FROM `audit_logs`.+JSON_EXTRACT.+ORDER BY generated_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "report_type", "parameters"}).
			AddRow(5, "tenant-a", "profit-loss", `{"action":"export"}`))

	action := models.AuditActionExport
	page, err := models.GetAuditLogs(ctx, db, models.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	assert.Len(t, page.Logs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAuditStatistics(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `audit_logs`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	mock.ExpectQuery("(?s)report_type AS `key`").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("profit-loss", 5).
			AddRow("balance-sheet", 4))
	mock.ExpectQuery("(?s)JSON_UNQUOTE\\(JSON_EXTRACT\\(parameters").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("generate", 7).
			AddRow("view", 2))
	mock.ExpectQuery("(?s)user_id, user_name, COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_name", "count"}).
			AddRow(7, "alice", 6).
			AddRow(8, "bob", 3))

	stats, err := models.GetAuditStatistics(ctx, db, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(9), stats.Total)
	assert.Equal(t, int64(5), stats.ByReportType["profit-loss"])
	assert.Equal(t, int64(7), stats.ByAction["generate"])
	require.Len(t, stats.TopUsers, 2)
	assert.Equal(t, "alice", stats.TopUsers[0].UserName)
	assert.Equal(t, int64(6), stats.TopUsers[0].Count)
}

func TestGetAuditStatistics_DateWindow(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery("(?s)SELECT count\\(\\*\\) FROM `audit_logs`.+generated_at >=.+generated_at <=").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("(?s)report_type AS `key`").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}))
	mock.ExpectQuery("(?s)JSON_UNQUOTE\\(JSON_EXTRACT\\(parameters").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}))
	mock.ExpectQuery("(?s)user_id, user_name, COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_name", "count"}))

	stats, err := models.GetAuditStatistics(ctx, db, &from, &to)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.TopUsers)
}

func TestVerifyAuditLogImmutability(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	// The expected path: the store rejects the probe UPDATE.
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `audit_logs`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE audit_logs SET record_count").
		WillReturnError(errors.New("Error 1644 (45000): audit_logs is append-only"))

	err := models.VerifyAuditLogImmutability(ctx, db, 42)
	assert.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyAuditLogImmutability_DetectsMutableStore(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `audit_logs`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE audit_logs SET record_count").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := models.VerifyAuditLogImmutability(ctx, db, 42)
	require.Error(t, err)
	assert.True(t, utils.IsImmutabilityViolation(err), "expected ImmutabilityViolationError, got %T", err)
}

func TestVerifyAuditLogImmutability_UnknownLog(t *testing.T) {
	db, mock := newTestDB(t)
	ctx := auditContext()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `audit_logs`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := models.VerifyAuditLogImmutability(ctx, db, 999)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}
