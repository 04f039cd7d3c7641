package config_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mmdatafocus/clinic_backend/config"
	"github.com/mmdatafocus/clinic_backend/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type guardedRow struct {
	ID       int
	TenantId string
	Name     string
}

type unguardedRow struct {
	ID   int
	Name string
}

func newGuardedDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
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
	require.NoError(t, db.Use(config.NewTenantGuardPlugin()))
	return db, mock
}

func TestTenantGuard_InjectsTenantPredicate(t *testing.T) {
	db, mock := newGuardedDB(t)
	ctx := utils.SetTenantIdInContext(context.Background(), "tenant-a")

	mock.ExpectQuery("SELECT \\* FROM `guarded_rows` WHERE `guarded_rows`\\.`tenant_id` = \\?").
		WithArgs("tenant-a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var rows []guardedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantGuard_DoesNotDuplicateExplicitFilter(t *testing.T) {
	db, mock := newGuardedDB(t)
	ctx := utils.SetTenantIdInContext(context.Background(), "tenant-a")

	mock.ExpectQuery("^SELECT \\* FROM `guarded_rows` WHERE tenant_id = \\?$").
		WithArgs("tenant-a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var rows []guardedRow
	require.NoError(t, db.WithContext(ctx).Where("tenant_id = ?", "tenant-a").Find(&rows).Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantGuard_SkipsTablesWithoutTenantColumn(t *testing.T) {
	db, mock := newGuardedDB(t)
	ctx := utils.SetTenantIdInContext(context.Background(), "tenant-a")

	mock.ExpectQuery("^SELECT \\* FROM `unguarded_rows`$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	var rows []unguardedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantGuard_AdminBypass(t *testing.T) {
	db, mock := newGuardedDB(t)
	ctx := utils.SetTenantIdInContext(context.Background(), "tenant-a")
	ctx = utils.SetIsAdminInContext(ctx, true)

	mock.ExpectQuery("^SELECT \\* FROM `guarded_rows`$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var rows []guardedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantGuard_ExplicitSkipBypass(t *testing.T) {
	db, mock := newGuardedDB(t)
	ctx := utils.SetTenantIdInContext(context.Background(), "tenant-a")
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	mock.ExpectQuery("^SELECT \\* FROM `guarded_rows`$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var rows []guardedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantGuard_NoTenantInContextLeavesQueryAlone(t *testing.T) {
	db, mock := newGuardedDB(t)

	mock.ExpectQuery("^SELECT \\* FROM `guarded_rows`$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var rows []guardedRow
	require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)
	require.NoError(t, mock.ExpectationsWereMet())
}
